package models

// QuotaInfo is the derived storage-quota view for one (user, tenant) pair.
// It has no independent lifecycle; it is recomputed on demand from active
// file sizes.
type QuotaInfo struct {
	Used      int64 `json:"used"`
	Max       int64 `json:"max"` // -1 when unbounded
	Remaining int64 `json:"remaining"`
}
