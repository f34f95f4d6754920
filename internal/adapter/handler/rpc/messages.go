package rpc

type SetRequest struct {
	Key   string  `json:"key"`
	Total *uint64 `json:"total"`
}

type KeyRequest struct {
	Key string `json:"key"`
}

// DeductRequest leaves Count nil to deduct the default of one.
type DeductRequest struct {
	Key   string  `json:"key"`
	Count *uint64 `json:"count,omitempty"`
}

type IncreaseRequest struct {
	Key string  `json:"key"`
	By  *uint64 `json:"by"`
}

type ReturnRequest struct {
	Key    string  `json:"key"`
	Amount *uint64 `json:"amount"`
}

type Empty struct{}

type InventoryReply struct {
	Found   bool   `json:"found"`
	Total   uint32 `json:"total"`
	Current uint32 `json:"current"`
}

type CurrentReply struct {
	Found   bool   `json:"found"`
	Current uint32 `json:"current"`
}

type MemoryUsageReply struct {
	Found bool  `json:"found"`
	Bytes int64 `json:"bytes"`
}
