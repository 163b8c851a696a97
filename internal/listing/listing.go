// Package listing derives the order-history view: filtered by client name,
// sorted, and cut into pages. It never mutates the snapshot it is given.
package listing

import (
	"sort"
	"strings"

	"padaria/internal/core"
)

const (
	SortByClientName  SortKey = "clientName"
	SortByRequestDate SortKey = "requestDate"

	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// DefaultPageSize matches the order-history table.
const DefaultPageSize = 20

type (
	SortKey   string
	Direction string

	// Query describes one rendering of the order list. Zero values fall
	// back to the defaults: most recent first, page 1, page size 20.
	Query struct {
		Search    string
		Key       SortKey
		Direction Direction
		Page      int
		PageSize  int
	}

	// Page is the derived view. TotalPages is at least 1 even when no
	// order matches; Empty distinguishes "no data" from "page of data".
	Page struct {
		Orders     []core.Order `json:"orders"`
		Page       int          `json:"page"`
		TotalPages int          `json:"totalPages"`
		TotalCount int          `json:"totalCount"`
		Empty      bool         `json:"empty"`
	}
)

// Apply filters, sorts and paginates a snapshot. The sort is stable, so
// orders with equal keys keep their relative snapshot position.
func Apply(orders []core.Order, q Query) Page {
	q = q.withDefaults()

	filtered := make([]core.Order, 0, len(orders))
	needle := strings.ToLower(q.Search)
	for _, o := range orders {
		if needle == "" || strings.Contains(strings.ToLower(o.ClientName), needle) {
			filtered = append(filtered, o)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := sortValue(filtered[i], q.Key), sortValue(filtered[j], q.Key)
		if q.Direction == Descending {
			return a > b
		}
		return a < b
	})

	total := len(filtered)
	totalPages := (total + q.PageSize - 1) / q.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * q.PageSize
	end := start + q.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Orders:     filtered[start:end],
		Page:       page,
		TotalPages: totalPages,
		TotalCount: total,
		Empty:      total == 0,
	}
}

func (q Query) withDefaults() Query {
	if q.Key != SortByClientName && q.Key != SortByRequestDate {
		q.Key = SortByRequestDate
		if q.Direction == "" {
			q.Direction = Descending
		}
	}
	if q.Direction != Ascending && q.Direction != Descending {
		q.Direction = Ascending
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	return q
}

// sortValue picks the comparison key. Both supported keys compare as plain
// strings; the ISO date form makes lexicographic and chronological order
// coincide.
func sortValue(o core.Order, key SortKey) string {
	if key == SortByClientName {
		return o.ClientName
	}
	return o.RequestDate
}
