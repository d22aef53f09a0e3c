package vault

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"vaultScope/internal/model"
)

// DecoderConfig configures decoder behavior. Events restricts the supported
// shape table; empty means all known events.
type DecoderConfig struct {
	Events []string
}

// Decoder decodes deposit-processing and ERC-4626 vault logs.
type Decoder struct {
	eventsABI   abi.ABI
	topicToName map[string]string
}

// NewDecoder builds a decoder for the configured event set.
func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	parsed, err := EventsABI()
	if err != nil {
		return nil, err
	}

	names := cfg.Events
	if len(names) == 0 {
		names = []string{EventDepositProcessed, EventDeposit, EventWithdraw, EventTransfer}
	}

	topicToName := make(map[string]string, len(names))
	for _, name := range names {
		event, ok := parsed.Events[name]
		if !ok {
			return nil, fmt.Errorf("unsupported event name: %s", name)
		}
		topicToName[strings.ToLower(event.ID.Hex())] = name
	}

	return &Decoder{
		eventsABI:   parsed,
		topicToName: topicToName,
	}, nil
}

// CanDecode checks if the topic0 is in the supported shape table.
func (d *Decoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topicToName[strings.ToLower(topic0)]
	return ok
}

// Decode converts a LogRecord into a per-log outcome. Unknown signatures are
// skipped, malformed logs are errored; neither aborts a batch.
func (d *Decoder) Decode(log model.LogRecord) model.DecodeOutcome {
	topic0 := log.Topic0()
	if topic0 == "" {
		return model.Errored(fmt.Errorf("missing topics"))
	}

	name, ok := d.topicToName[strings.ToLower(topic0)]
	if !ok {
		return model.Skipped()
	}

	switch name {
	case EventDepositProcessed:
		// A signature match with fewer topics is some other contract's event.
		if len(log.Topics) < 4 {
			return model.Skipped()
		}
		decoded, err := d.decodeDepositProcessed(log)
		if err != nil {
			return model.Errored(err)
		}
		return model.Decoded(buildTypedEvent(log, model.KindDepositProcessed, decoded))
	case EventDeposit:
		decoded, err := d.decodeDeposit(log)
		if err != nil {
			return model.Errored(err)
		}
		return model.Decoded(buildTypedEvent(log, model.KindVaultDeposit, decoded))
	case EventWithdraw:
		decoded, err := d.decodeWithdraw(log)
		if err != nil {
			return model.Errored(err)
		}
		return model.Decoded(buildTypedEvent(log, model.KindVaultWithdraw, decoded))
	case EventTransfer:
		decoded, err := d.decodeTransfer(log)
		if err != nil {
			return model.Errored(err)
		}
		return model.Decoded(buildTypedEvent(log, model.KindShareTransfer, decoded))
	default:
		return model.Errored(fmt.Errorf("unsupported event name: %s", name))
	}
}

func (d *Decoder) decodeDepositProcessed(log model.LogRecord) (model.DepositProcessedData, error) {
	asset, err := addressFromTopic(log.Topics[1])
	if err != nil {
		return model.DepositProcessedData{}, err
	}
	user, err := addressFromTopic(log.Topics[2])
	if err != nil {
		return model.DepositProcessedData{}, err
	}
	amount, err := uint256FromTopic(log.Topics[3])
	if err != nil {
		return model.DepositProcessedData{}, err
	}

	// chainId and referral live in data; validate the payload, discard both.
	values, err := unpackNonIndexed(d.eventsABI.Events[EventDepositProcessed], log.Data)
	if err != nil {
		return model.DepositProcessedData{}, err
	}
	if len(values) != 2 {
		return model.DepositProcessedData{}, fmt.Errorf("unexpected deposit values: %d", len(values))
	}
	if _, err := asBigInt(values[0]); err != nil {
		return model.DepositProcessedData{}, err
	}
	if _, err := asAddress(values[1]); err != nil {
		return model.DepositProcessedData{}, err
	}

	return model.DepositProcessedData{
		Asset:  asset,
		User:   user,
		Amount: amount.String(),
	}, nil
}

func (d *Decoder) decodeDeposit(log model.LogRecord) (model.VaultDepositData, error) {
	if len(log.Topics) != 3 {
		return model.VaultDepositData{}, fmt.Errorf("expected 3 topics, got %d", len(log.Topics))
	}
	caller, err := addressFromTopic(log.Topics[1])
	if err != nil {
		return model.VaultDepositData{}, err
	}
	owner, err := addressFromTopic(log.Topics[2])
	if err != nil {
		return model.VaultDepositData{}, err
	}

	assets, shares, err := d.unpackAssetsShares(EventDeposit, log.Data)
	if err != nil {
		return model.VaultDepositData{}, err
	}

	return model.VaultDepositData{
		Caller:   caller,
		Owner:    owner,
		Receiver: owner,
		Assets:   assets.String(),
		Shares:   shares.String(),
	}, nil
}

func (d *Decoder) decodeWithdraw(log model.LogRecord) (model.VaultWithdrawData, error) {
	if len(log.Topics) != 4 {
		return model.VaultWithdrawData{}, fmt.Errorf("expected 4 topics, got %d", len(log.Topics))
	}
	caller, err := addressFromTopic(log.Topics[1])
	if err != nil {
		return model.VaultWithdrawData{}, err
	}
	receiver, err := addressFromTopic(log.Topics[2])
	if err != nil {
		return model.VaultWithdrawData{}, err
	}
	owner, err := addressFromTopic(log.Topics[3])
	if err != nil {
		return model.VaultWithdrawData{}, err
	}

	assets, shares, err := d.unpackAssetsShares(EventWithdraw, log.Data)
	if err != nil {
		return model.VaultWithdrawData{}, err
	}

	return model.VaultWithdrawData{
		Caller:   caller,
		Receiver: receiver,
		Owner:    owner,
		Assets:   assets.String(),
		Shares:   shares.String(),
	}, nil
}

func (d *Decoder) decodeTransfer(log model.LogRecord) (model.ShareTransferData, error) {
	if len(log.Topics) != 3 {
		return model.ShareTransferData{}, fmt.Errorf("expected 3 topics, got %d", len(log.Topics))
	}
	from, err := addressFromTopic(log.Topics[1])
	if err != nil {
		return model.ShareTransferData{}, err
	}
	to, err := addressFromTopic(log.Topics[2])
	if err != nil {
		return model.ShareTransferData{}, err
	}

	values, err := unpackNonIndexed(d.eventsABI.Events[EventTransfer], log.Data)
	if err != nil {
		return model.ShareTransferData{}, err
	}
	if len(values) != 1 {
		return model.ShareTransferData{}, fmt.Errorf("unexpected transfer values: %d", len(values))
	}
	value, err := asBigInt(values[0])
	if err != nil {
		return model.ShareTransferData{}, err
	}

	return model.ShareTransferData{
		From:  from,
		To:    to,
		Value: value.String(),
	}, nil
}

func (d *Decoder) unpackAssetsShares(name, dataHex string) (*big.Int, *big.Int, error) {
	values, err := unpackNonIndexed(d.eventsABI.Events[name], dataHex)
	if err != nil {
		return nil, nil, err
	}
	if len(values) != 2 {
		return nil, nil, fmt.Errorf("unexpected %s values: %d", strings.ToLower(name), len(values))
	}
	assets, err := asBigInt(values[0])
	if err != nil {
		return nil, nil, err
	}
	shares, err := asBigInt(values[1])
	if err != nil {
		return nil, nil, err
	}
	return assets, shares, nil
}

func buildTypedEvent(log model.LogRecord, kind model.EventKind, decoded interface{}) *model.TypedEvent {
	raw := &model.RawLogRef{Topic0: log.Topic0(), Data: log.Data}
	return &model.TypedEvent{
		ChainID:     log.ChainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash,
		TxHash:      log.TxHash,
		LogIndex:    log.LogIndex,
		Address:     log.Address,
		Kind:        kind,
		Decoded:     decoded,
		Raw:         raw,
	}
}

func addressFromTopic(topic string) (string, error) {
	data, err := topicBytes(topic)
	if err != nil {
		return "", err
	}
	// Addresses occupy the low-order 20 bytes of the 32-byte topic word.
	return common.BytesToAddress(data[12:]).Hex(), nil
}

func uint256FromTopic(topic string) (*big.Int, error) {
	data, err := topicBytes(topic)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}

func topicBytes(topic string) ([]byte, error) {
	data, err := hexutil.Decode(topic)
	if err != nil {
		return nil, fmt.Errorf("invalid topic: %w", err)
	}
	if len(data) != 32 {
		return nil, fmt.Errorf("topic length %d", len(data))
	}
	return data, nil
}

func unpackNonIndexed(event abi.Event, dataHex string) ([]interface{}, error) {
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	parsed, ok := value.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected *big.Int, got %T", value)
	}
	return parsed, nil
}

func asAddress(value interface{}) (common.Address, error) {
	parsed, ok := value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("expected address, got %T", value)
	}
	return parsed, nil
}
