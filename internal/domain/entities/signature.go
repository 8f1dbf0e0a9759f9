package entities

// SignatureRecord is one entry of a wallet's signature history
type SignatureRecord struct {
	Signature string `json:"signature"`
	BlockTime *int64 `json:"block_time,omitempty"` // seconds since epoch, nil when unknown
}

// BlockTimeOrZero returns the block time, treating an unknown time as 0
func (s SignatureRecord) BlockTimeOrZero() int64 {
	if s.BlockTime == nil {
		return 0
	}
	return *s.BlockTime
}

// SignatureQuery holds paging options for a signature history lookup
type SignatureQuery struct {
	Limit  int
	Before string // empty means start from the newest signature
}
