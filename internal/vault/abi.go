package vault

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Event names supported by the decoder. DepositProcessed comes from the
// deposit-processing contract; Deposit/Withdraw/Transfer from ERC-4626 vaults.
const (
	EventDepositProcessed = "DepositProcessed"
	EventDeposit          = "Deposit"
	EventWithdraw         = "Withdraw"
	EventTransfer         = "Transfer"
)

// DepositProcessed packs amount into the third indexed slot; chainId and
// referral ride in data and are not used downstream.
const eventsABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "asset", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": true, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "chainId", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "referral", "type": "address"}
    ],
    "name": "DepositProcessed",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "caller", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "assets", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "shares", "type": "uint256"}
    ],
    "name": "Deposit",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "caller", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "receiver", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "assets", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "shares", "type": "uint256"}
    ],
    "name": "Withdraw",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "value", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  }
]`

var (
	eventsABI     abi.ABI
	eventsABIOnce sync.Once
	eventsABIErr  error
)

// EventsABI returns the parsed event ABI.
func EventsABI() (abi.ABI, error) {
	eventsABIOnce.Do(func() {
		eventsABI, eventsABIErr = abi.JSON(strings.NewReader(eventsABIJSON))
	})
	return eventsABI, eventsABIErr
}

// Topic0ForEvents returns the signature hashes for the named events, in order.
func Topic0ForEvents(names ...string) ([]common.Hash, error) {
	parsed, err := EventsABI()
	if err != nil {
		return nil, err
	}
	topics := make([]common.Hash, 0, len(names))
	for _, name := range names {
		event, ok := parsed.Events[name]
		if !ok {
			return nil, fmt.Errorf("unknown event: %s", name)
		}
		topics = append(topics, event.ID)
	}
	return topics, nil
}
