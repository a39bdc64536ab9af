package models

// SortField is a listing column auctions can be ordered by
type SortField int

const (
	SortByEndDate SortField = iota
	SortByTitle
	SortByBids
	SortByReserve
)

func (f SortField) String() string {
	switch f {
	case SortByTitle:
		return "title"
	case SortByBids:
		return "bids"
	case SortByReserve:
		return "reserve"
	default:
		return "end_date"
	}
}

// SortOrder is the resolved (field, direction) pair for a listing
type SortOrder struct {
	Field      SortField
	Descending bool
}
