package schedule

import (
	"testing"
	"time"

	"github.com/xraph/vesting/types"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestTrancheMatured(t *testing.T) {
	tr := Tranche{ReleaseTime: epoch.Add(100 * time.Second), Amount: 20}

	if tr.Matured(epoch) {
		t.Error("tranche should not be matured before its release time")
	}
	if !tr.Matured(epoch.Add(100 * time.Second)) {
		t.Error("tranche should be matured exactly at its release time")
	}
	if !tr.Matured(epoch.Add(150 * time.Second)) {
		t.Error("tranche should be matured after its release time")
	}
}

func TestScheduleStatus(t *testing.T) {
	s := &Schedule{
		ID:    1,
		Token: "tok",
		Tranches: []Tranche{
			{ReleaseTime: epoch, Amount: 20},
			{ReleaseTime: epoch.Add(time.Minute), Amount: 20},
		},
	}

	if got := s.Status(); got != StatusActive {
		t.Fatalf("Status: got %s, want %s", got, StatusActive)
	}
	if got := s.Remaining(); got != 40 {
		t.Fatalf("Remaining: got %d, want 40", got)
	}

	s.Tranches[0].Amount = 0
	if got := s.Remaining(); got != 20 {
		t.Fatalf("Remaining after partial release: got %d, want 20", got)
	}
	if got := s.Status(); got != StatusActive {
		t.Fatalf("Status after partial release: got %s, want %s", got, StatusActive)
	}

	s.Tranches[1].Amount = 0
	if got := s.Status(); got != StatusFullyReleased {
		t.Fatalf("Status after full release: got %s, want %s", got, StatusFullyReleased)
	}
	if !s.Exists() {
		t.Error("fully released schedule must still exist")
	}
}

func TestScheduleExistsSentinel(t *testing.T) {
	var nilSched *Schedule
	if nilSched.Exists() {
		t.Error("nil schedule should not exist")
	}
	if (&Schedule{ID: 5}).Exists() {
		t.Error("schedule with zero token should not exist")
	}
	if !(&Schedule{Token: "tok"}).Exists() {
		t.Error("schedule with non-zero token should exist")
	}
}

func TestScheduleClone(t *testing.T) {
	s := &Schedule{
		ID:          3,
		Token:       "tok",
		Owner:       types.Address("owner"),
		Destination: types.Address("dest"),
		Tranches:    []Tranche{{ReleaseTime: epoch, Amount: 10}},
	}

	dup := s.Clone()
	dup.Tranches[0].Amount = 0
	dup.Owner = "other"

	if s.Tranches[0].Amount != 10 {
		t.Error("mutating the clone's tranches must not affect the original")
	}
	if s.Owner != "owner" {
		t.Error("mutating the clone's owner must not affect the original")
	}
}
