package models

import (
	"database/sql/driver"
	"fmt"
)

type CartStatus string

const (
	CartOpen       CartStatus = "OPEN"
	CartCheckedOut CartStatus = "CHECKED_OUT"
	CartCancelled  CartStatus = "CANCELLED"
)

func (s CartStatus) Valid() bool {
	switch s {
	case CartOpen, CartCheckedOut, CartCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a cart in status s may move to status to.
// Only OPEN carts move; CHECKED_OUT and CANCELLED are terminal.
func (s CartStatus) CanTransition(to CartStatus) bool {
	if s != CartOpen {
		return false
	}
	return to == CartCheckedOut || to == CartCancelled
}

func (s CartStatus) Terminal() bool {
	return s == CartCheckedOut || s == CartCancelled
}

func (s CartStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *CartStatus) Scan(v any) error {
	switch x := v.(type) {
	case string:
		*s = CartStatus(x)
	case []byte:
		*s = CartStatus(x)
	case nil:
		*s = ""
	default:
		return fmt.Errorf("cart status: cannot scan %T", v)
	}
	return nil
}
