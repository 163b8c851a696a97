package core

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Legacy flat field names kept for compatibility with existing backups.
var wireNames = map[Variant]string{
	Hamburger:       "hamburgerBuns",
	MediumHamburger: "mediumHamburgerBuns",
	Bisnaga:         "bisnagaBuns",
	Baguette:        "baguettes",
}

var variantByWireName = func() map[string]Variant {
	m := make(map[string]Variant, 2*len(wireNames))
	for v, name := range wireNames {
		m[name] = v
		m[string(v)] = v
	}
	return m
}()

// WireName returns the JSON field name used for a variant's quantity.
func (v Variant) WireName() string {
	if name, ok := wireNames[v]; ok {
		return name
	}
	return string(v)
}

// DecodeOrder converts one JSON-like record into an Order.
// It is total over its input: any shape that carries a string clientName and
// a string requestDate decodes; everything else reports ok=false. Quantity
// fields are coerced to non-negative integers, malformed values become zero.
// Both legacy flat names (hamburgerBuns, ...) and canonical variant keys are
// accepted, as is a nested "quantities" object.
func DecodeOrder(raw map[string]any) (Order, bool) {
	if raw == nil {
		return Order{}, false
	}
	clientName, ok := raw["clientName"].(string)
	if !ok || strings.TrimSpace(clientName) == "" {
		return Order{}, false
	}
	requestDate, ok := raw["requestDate"].(string)
	if !ok {
		return Order{}, false
	}

	o := Order{
		ClientName:  clientName,
		RequestDate: requestDate,
		Quantities:  make(Quantities),
	}
	if id, ok := raw["id"].(string); ok {
		o.ID = id
	}
	for key, value := range raw {
		if variant, ok := variantByWireName[key]; ok {
			o.Quantities[variant] = coerceQuantity(value)
		}
	}
	if nested, ok := raw["quantities"].(map[string]any); ok {
		for key, value := range nested {
			if key == "" {
				continue
			}
			o.Quantities[Variant(key)] = coerceQuantity(value)
		}
	}
	return o, true
}

// coerceQuantity turns a JSON-like value into a non-negative integer,
// defaulting to zero for anything that is not a usable number.
func coerceQuantity(v any) int {
	var n int
	switch x := v.(type) {
	case float64:
		n = int(x)
	case int:
		n = x
	case int64:
		n = int(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		n = int(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		n = int(f)
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// MarshalJSON writes the flat wire form: id, clientName, requestDate and one
// field per variant under its wire name.
func (o Order) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3+len(o.Quantities))
	out["id"] = o.ID
	out["clientName"] = o.ClientName
	out["requestDate"] = o.RequestDate
	for variant, qty := range o.Quantities {
		out[variant.WireName()] = qty
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the flat wire form via DecodeOrder. A record that
// fails DecodeOrder's minimal shape check yields ErrEmptyClientName or
// ErrInvalidDate rather than a partially filled order.
func (o *Order) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, ok := DecodeOrder(raw)
	if !ok {
		if name, isString := raw["clientName"].(string); !isString || strings.TrimSpace(name) == "" {
			return ErrEmptyClientName
		}
		return ErrInvalidDate
	}
	*o = decoded
	return nil
}
