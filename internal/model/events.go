package model

// EventKind names a decoded event variant.
type EventKind string

const (
	KindDepositProcessed EventKind = "DepositProcessed"
	KindVaultDeposit     EventKind = "VaultDeposit"
	KindVaultWithdraw    EventKind = "VaultWithdraw"
	KindShareTransfer    EventKind = "ShareTransfer"
)

// DepositProcessedData is the decoded DepositProcessed event payload.
// Amount is packed into the third indexed topic on chain, not into data.
type DepositProcessedData struct {
	Asset  string `json:"asset"`
	User   string `json:"user"`
	Amount string `json:"amount"`
}

// VaultDepositData is the decoded ERC-4626 Deposit event payload.
// Receiver always equals Owner; Deposit carries no separate receiver slot.
type VaultDepositData struct {
	Caller   string `json:"caller"`
	Owner    string `json:"owner"`
	Receiver string `json:"receiver"`
	Assets   string `json:"assets"`
	Shares   string `json:"shares"`
}

// VaultWithdrawData is the decoded ERC-4626 Withdraw event payload.
type VaultWithdrawData struct {
	Caller   string `json:"caller"`
	Receiver string `json:"receiver"`
	Owner    string `json:"owner"`
	Assets   string `json:"assets"`
	Shares   string `json:"shares"`
}

// ShareTransferData is a decoded ERC-20 Transfer of vault shares.
// Share movement has no underlying-asset effect on net balances.
type ShareTransferData struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}
