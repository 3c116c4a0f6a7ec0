package domain

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 2000

	// MaxOffset bounds Page*Size so the product fits every backend's OFFSET.
	MaxOffset = math.MaxInt32
)

type SortField string

const (
	SortByID     SortField = "id"
	SortByAmount SortField = "amount"
	SortByOwner  SortField = "owner"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortOrder struct {
	Field     SortField
	Direction Direction
}

// DefaultSort orders cards by ascending amount.
var DefaultSort = []SortOrder{{Field: SortByAmount, Direction: Asc}}

// PageRequest selects one page of an owner's cards.
type PageRequest struct {
	Page int
	Size int
	Sort []SortOrder
}

// Offset is the number of rows skipped before the page starts.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Normalize clamps page and size into range and applies the default sort
// when none was requested. A page past MaxOffset is pulled back to the last
// page below it, which is empty for any realistic owner.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.Page > MaxOffset/p.Size {
		p.Page = MaxOffset / p.Size
	}
	if len(p.Sort) == 0 {
		p.Sort = DefaultSort
	}
	return p
}

// ParseSortOrder parses a "field[,direction]" query value, e.g. "amount,desc".
func ParseSortOrder(raw string) (SortOrder, error) {
	parts := strings.Split(raw, ",")
	field := SortField(strings.TrimSpace(parts[0]))
	switch field {
	case SortByID, SortByAmount, SortByOwner:
	default:
		return SortOrder{}, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, parts[0])
	}

	order := SortOrder{Field: field, Direction: Asc}
	if len(parts) > 2 {
		return SortOrder{}, fmt.Errorf("%w: %q", ErrInvalidSort, raw)
	}
	if len(parts) == 2 {
		switch Direction(strings.ToLower(strings.TrimSpace(parts[1]))) {
		case Asc:
		case Desc:
			order.Direction = Desc
		default:
			return SortOrder{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidSort, parts[1])
		}
	}
	return order, nil
}
