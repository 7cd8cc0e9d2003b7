// Package pagination normalizes listing query parameters.
package pagination

import "fmt"

// LimitConfig configures limit normalization.
type LimitConfig struct {
	Default int
	Max     int
}

// Order is a validated listing direction.
type Order string

const (
	// OrderAsc lists records oldest first.
	OrderAsc Order = "asc"
	// OrderDesc lists records newest first.
	OrderDesc Order = "desc"
)

// ClampLimit applies defaults and bounds for page limits.
func ClampLimit(value int, cfg LimitConfig) int {
	limit := value
	if limit <= 0 {
		limit = cfg.Default
	}
	if cfg.Max > 0 && limit > cfg.Max {
		limit = cfg.Max
	}
	if limit <= 0 {
		limit = 1
	}
	return limit
}

// ParseOrder validates an order parameter and applies the default.
func ParseOrder(value string, fallback Order) (Order, error) {
	switch value {
	case "":
		return fallback, nil
	case string(OrderAsc):
		return OrderAsc, nil
	case string(OrderDesc):
		return OrderDesc, nil
	}
	return "", fmt.Errorf("invalid order: %s", value)
}
