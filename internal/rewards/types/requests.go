package types

// CreateTransactionRequest is the ingestion entry point payload. Events
// arrive already validated on-chain; the ledger still validates shape.
type CreateTransactionRequest struct {
	UserAddress string          `json:"user_address"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	TxHash      string          `json:"tx_hash,omitempty"`
	Trade       *TradeMeta      `json:"trade,omitempty"`
	Chain       *ChainMeta      `json:"chain,omitempty"`
}

type UpdateProfileIdentityRequest struct {
	UserAddress string `json:"user_address"`
	FID         int64  `json:"fid,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}
