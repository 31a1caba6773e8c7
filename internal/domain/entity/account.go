package entity

import "github.com/shopspring/decimal"

// AccountSnapshot is a read-only projection of a ledger account.
type AccountSnapshot struct {
	PublicKey     string          `json:"publicKey"`
	NativeBalance decimal.Decimal `json:"balance"`
	Sequence      int64           `json:"sequence"`
	Live          bool            `json:"isConnected"`
}
