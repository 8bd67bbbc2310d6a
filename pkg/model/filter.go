package model

// Defaults for the historical events query. Empty or invalid filter
// values fall back to these; a filter is never rejected outright.
const (
	DefaultLimit     = 1000
	DefaultLastNDays = 30
)

// Filter selects historical events: by user, by recency window, and by
// maximum row count.
type Filter struct {
	User      string
	Limit     int
	LastNDays int
}

// Normalized returns a copy with defaults applied to missing or
// non-positive values.
func (f Filter) Normalized() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.LastNDays <= 0 {
		f.LastNDays = DefaultLastNDays
	}
	return f
}
