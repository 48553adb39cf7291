package models

// DefaultListLimit and MaxListLimit bound skip/limit list queries.
const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Count int `json:"count"`
}

// ListFilter is the skip/limit window used by every list endpoint.
type ListFilter struct {
	Skip  int
	Limit int
}

// Normalize clamps the window to supported bounds.
func (f ListFilter) Normalize() ListFilter {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 || f.Limit > MaxListLimit {
		f.Limit = DefaultListLimit
	}
	return f
}
