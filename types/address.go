package types

import (
	"database/sql/driver"
	"fmt"
)

// Address is an opaque identity: a token identifier, an account, or a
// delegate authority. The empty Address is the reserved "absent" value —
// a schedule whose token address is empty does not exist, and an empty
// owner address means no delegate is installed.
type Address string

// NilAddress is the zero-value Address.
const NilAddress = Address("")

// IsZero reports whether the address is the reserved absent value.
func (a Address) IsZero() bool { return a == "" }

// String returns the raw address string.
func (a Address) String() string { return string(a) }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) { return []byte(a), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(data []byte) error {
	*a = Address(data)
	return nil
}

// Value implements driver.Valuer for database storage.
func (a Address) Value() (driver.Value, error) { return string(a), nil }

// Scan implements sql.Scanner for database retrieval.
func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = NilAddress
		return nil
	case string:
		*a = Address(v)
		return nil
	case []byte:
		*a = Address(v)
		return nil
	default:
		return fmt.Errorf("types: cannot scan %T into Address", src)
	}
}
