// Package id defines identity types for Vesting entities.
//
// Schedules are keyed by ScheduleID, an opaque monotonically increasing
// integer allocated by the schedule store. ScheduleIDs are never reused and
// never zero; the zero value is the reserved "no schedule" sentinel.
//
// Transfer receipts recorded by ledger implementations use TypeID-based
// identifiers (K-sortable, UUIDv7-based, URL-safe, "prefix_suffix" format).
package id

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"go.jetify.com/typeid/v2"
)

// ScheduleID identifies a vesting schedule. IDs are allocated from a
// single-writer sequence owned by the schedule store: strictly increasing,
// never reused (also not after a rolled-back create), never zero.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receiver for Scan.
type ScheduleID uint64

// NilScheduleID is the zero-value ScheduleID.
const NilScheduleID = ScheduleID(0)

// IsNil reports whether this id is the zero value.
func (s ScheduleID) IsNil() bool { return s == 0 }

// String returns the decimal representation.
func (s ScheduleID) String() string { return strconv.FormatUint(uint64(s), 10) }

// ParseScheduleID parses a decimal string into a ScheduleID.
func ParseScheduleID(str string) (ScheduleID, error) {
	v, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return NilScheduleID, fmt.Errorf("id: parse schedule id %q: %w", str, err)
	}
	return ScheduleID(v), nil
}

// Value implements driver.Valuer for database storage.
func (s ScheduleID) Value() (driver.Value, error) {
	return int64(s), nil //nolint:gosec // schedule ids stay far below int64 range in practice
}

// Scan implements sql.Scanner for database retrieval.
func (s *ScheduleID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = NilScheduleID
		return nil
	case int64:
		*s = ScheduleID(v) //nolint:gosec // stored ids originate from this package
		return nil
	case uint64:
		*s = ScheduleID(v)
		return nil
	case []byte:
		parsed, err := ParseScheduleID(string(v))
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	default:
		return fmt.Errorf("id: cannot scan %T into ScheduleID", src)
	}
}

// ──────────────────────────────────────────────────
// Transfer receipts
// ──────────────────────────────────────────────────

// PrefixReceipt is the TypeID prefix for ledger transfer receipts.
const PrefixReceipt = "xfer"

// ReceiptID identifies a single pull or push recorded by a ledger.
type ReceiptID struct {
	inner typeid.TypeID
	valid bool
}

// NilReceiptID is the zero-value ReceiptID.
var NilReceiptID ReceiptID

// NewReceiptID generates a new globally unique receipt id.
func NewReceiptID() ReceiptID {
	tid, err := typeid.Generate(PrefixReceipt)
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", PrefixReceipt, err))
	}
	return ReceiptID{inner: tid, valid: true}
}

// ParseReceiptID parses a receipt TypeID string
// (e.g., "xfer_01h2xcejqtf2nbrexx3vqjhp41").
func ParseReceiptID(s string) (ReceiptID, error) {
	if s == "" {
		return NilReceiptID, fmt.Errorf("id: parse %q: empty string", s)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return NilReceiptID, fmt.Errorf("id: parse %q: %w", s, err)
	}
	if tid.Prefix() != PrefixReceipt {
		return NilReceiptID, fmt.Errorf("id: expected prefix %q, got %q", PrefixReceipt, tid.Prefix())
	}
	return ReceiptID{inner: tid, valid: true}, nil
}

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the nil id.
func (r ReceiptID) String() string {
	if !r.valid {
		return ""
	}
	return r.inner.String()
}

// IsNil reports whether this id is the zero value.
func (r ReceiptID) IsNil() bool { return !r.valid }
