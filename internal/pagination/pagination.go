// Package pagination implements the shared page/limit normalization policy
// applied to every list endpoint.
package pagination

// DefaultLimit is the effective limit whenever the requested one is out of
// range. Requested limits must fall strictly inside (0, MaxLimit); a request
// for exactly MaxLimit falls back to the default as well.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Params holds normalized page and limit values.
type Params struct {
	Page  int
	Limit int
}

// Meta is the pagination block carried in every list response envelope.
type Meta struct {
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
	CurrentLimit int `json:"currentLimit"`
}

// Normalize clamps raw page/limit query inputs to the shared policy:
// page <= 0 becomes 1; limit outside (0, MaxLimit) becomes DefaultLimit.
func Normalize(page, limit int) Params {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit >= MaxLimit {
		limit = DefaultLimit
	}
	return Params{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// MetaFor computes the response metadata for a total row count. TotalPages
// is zero when the count is zero.
func (p Params) MetaFor(total int64) Meta {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Meta{
		TotalPages:   totalPages,
		CurrentPage:  p.Page,
		CurrentLimit: p.Limit,
	}
}
