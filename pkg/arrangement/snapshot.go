package arrangement

import (
	"fmt"
	"time"

	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

// Range is a default capacity range for a duty name.
type Range struct {
	Lower int
	Upper int
}

// Exact reports whether the range fixes a single quota.
func (r Range) Exact() bool { return r.Lower == r.Upper }

// Contains reports whether lower <= x <= upper.
func (r Range) Contains(x float64) bool {
	return float64(r.Lower) <= x && x <= float64(r.Upper)
}

func (r Range) String() string {
	if r.Exact() {
		return fmt.Sprintf("%d", r.Lower)
	}
	return fmt.Sprintf("%d,%d", r.Lower, r.Upper)
}

// Snapshot is the arrangement of all duties of a term plus the default
// capacity ranges per duty name.
type Snapshot struct {
	Duties []*Duty
	// Dropped lists assignments read from the file that no longer hold.
	Dropped []models.DroppedAssignment

	defaults     map[string]Range
	defaultOrder []string
}

// NewSnapshot creates an empty arrangement.
func NewSnapshot() *Snapshot {
	return &Snapshot{defaults: make(map[string]Range)}
}

// SetDefault sets the default range for a duty name, keeping first-set order.
func (s *Snapshot) SetDefault(name string, r Range) {
	if _, ok := s.defaults[name]; !ok {
		s.defaultOrder = append(s.defaultOrder, name)
	}
	s.defaults[name] = r
}

// Default returns the default range for a duty name.
func (s *Snapshot) Default(name string) (Range, bool) {
	r, ok := s.defaults[name]
	return r, ok
}

// DefaultNames returns the duty names with a default range, in file order.
func (s *Snapshot) DefaultNames() []string { return s.defaultOrder }

// AddDuty appends a duty and returns it.
func (s *Snapshot) AddDuty(date time.Time, name string) *Duty {
	d := NewDuty(date, name)
	s.Duties = append(s.Duties, d)
	return d
}

// Assigned returns the set of students serving on any duty.
func (s *Snapshot) Assigned() map[*models.Student]bool {
	set := make(map[*models.Student]bool)
	for _, d := range s.Duties {
		for _, st := range d.Students {
			set[st] = true
		}
	}
	return set
}

// DutiesOf lists the duties each family serves on, in arrangement order.
func (s *Snapshot) DutiesOf() map[*models.Parent][]*Duty {
	out := make(map[*models.Parent][]*Duty)
	for _, d := range s.Duties {
		for _, st := range d.Students {
			out[st.Parent] = append(out[st.Parent], d)
		}
	}
	return out
}

// Date builds a calendar date, rejecting out-of-range components.
func Date(year, month, day int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %04d-%d-%d", ErrInvalidDate, year, month, day)
	}
	return t, nil
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
