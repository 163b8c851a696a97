package core

import (
	"errors"
	"strings"
)

const (
	Hamburger       Variant = "hamburger"
	MediumHamburger Variant = "mediumHamburger"
	Bisnaga         Variant = "bisnaga"
	Baguette        Variant = "baguette"
)

type (
	// Variant identifies a bread product type. The set is open-ended:
	// a new variant is a new map key, not a new struct field.
	Variant string

	// Quantities maps a bread variant to an ordered amount.
	// Missing keys read as zero; stored values are never negative.
	Quantities map[Variant]int

	Order struct {
		ID          string
		ClientName  string
		RequestDate string // YYYY-MM-DD, may be empty or malformed on imported data
		Quantities  Quantities
	}

	Client struct {
		ID   string
		Name string
	}
)

var (
	ErrEmptyClientName = errors.New("empty client name")
	ErrInvalidDate     = errors.New("invalid request date")
	ErrInvalidAmount   = errors.New("invalid amount")
)

// Variants returns the canonical variant set in display order.
func Variants() []Variant {
	return []Variant{Hamburger, MediumHamburger, Bisnaga, Baguette}
}

// Get returns the quantity for a variant, zero when absent.
func (q Quantities) Get(v Variant) int {
	if q == nil {
		return 0
	}
	return q[v]
}

// Clone returns an independent copy of the quantity map.
func (q Quantities) Clone() Quantities {
	out := make(Quantities, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

// Normalize drops negative quantities in place and returns the receiver.
func (q Quantities) Normalize() Quantities {
	for k, v := range q {
		if v < 0 {
			q[k] = 0
		}
	}
	return q
}

func (o Order) Validate() error {
	if strings.TrimSpace(o.ClientName) == "" {
		return ErrEmptyClientName
	}
	if _, ok := ParseDay(o.RequestDate); !ok {
		return ErrInvalidDate
	}
	for _, v := range o.Quantities {
		if v < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyClientName
	}
	return nil
}
