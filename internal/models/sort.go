package models

import "strings"

type SortField string

// SortField constants
const (
	SortByFullName SortField = "fullName"
	SortByEmail    SortField = "email"
)

type SortDirection string

// SortDirection constants
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortOrder selects the field and direction of the users list
type SortOrder struct {
	Field     SortField
	Direction SortDirection
}

// DefaultSortOrder is used when no valid order was chosen
var DefaultSortOrder = SortOrder{Field: SortByFullName, Direction: SortAsc}

// ParseSortOrder parses values like "fullName-asc" or "email-desc".
// The second return value is false and DefaultSortOrder is returned when value is not recognized.
func ParseSortOrder(value string) (SortOrder, bool) {
	field, direction, found := strings.Cut(value, "-")
	if !found {
		return DefaultSortOrder, false
	}

	order := SortOrder{Field: SortField(field), Direction: SortDirection(direction)}
	if !order.Valid() {
		return DefaultSortOrder, false
	}
	return order, true
}

// Valid reports whether both field and direction are known
func (o SortOrder) Valid() bool {
	switch o.Field {
	case SortByFullName, SortByEmail:
	default:
		return false
	}
	return o.Direction == SortAsc || o.Direction == SortDesc
}

// String returns the "field-direction" form accepted by ParseSortOrder
func (o SortOrder) String() string {
	return string(o.Field) + "-" + string(o.Direction)
}
