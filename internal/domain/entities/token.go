package entities

// TokenSupply is the total supply of a mint as reported by the ledger
type TokenSupply struct {
	Amount   string  `json:"amount"` // raw base units
	Decimals int     `json:"decimals"`
	UIAmount float64 `json:"ui_amount"` // human readable supply, 0 when unknown
}
