package arrangement

import (
	"fmt"
	"time"

	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

// DateLayout is how duty dates are written.
const DateLayout = "2006-01-02"

// Kind selects the per-variant behaviour of a duty: which sub-pools feed it
// and who may serve on it.
type Kind int

const (
	// KindGeneric is any free-form duty; fed from both pools, open to all.
	KindGeneric Kind = iota
	// KindMorning ("AM") is fed from the morning pool only.
	KindMorning
	// KindAfternoon ("PM") is fed from the afternoon pool only.
	KindAfternoon
	// KindRestricted ("PJ") is fed from both pools and only admits students
	// outside the bilingual and adult tracks above grade 2.
	KindRestricted
)

// KindOf maps a duty name to its kind.
func KindOf(name string) Kind {
	switch name {
	case "AM":
		return KindMorning
	case "PM":
		return KindAfternoon
	case "PJ":
		return KindRestricted
	}
	return KindGeneric
}

func (k Kind) String() string {
	switch k {
	case KindMorning:
		return "morning"
	case KindAfternoon:
		return "afternoon"
	case KindRestricted:
		return "restricted"
	}
	return "generic"
}

// Ratio returns the morning:afternoon share for a duty of this kind. morning
// and afternoon are the (weighted) pool sizes used by mixed duties.
func (k Kind) Ratio(morning, afternoon float64) (float64, float64) {
	switch k {
	case KindMorning:
		return 1, 0
	case KindAfternoon:
		return 0, 1
	}
	return morning, afternoon
}

// Admits is the eligibility predicate of the kind.
func (k Kind) Admits(s *models.Student) bool {
	if k == KindRestricted {
		return s.RestrictedEligible()
	}
	return true
}

// Session returns the class session a single-session duty draws from.
func (k Kind) Session() (models.Session, bool) {
	switch k {
	case KindMorning:
		return models.SessionMorning, true
	case KindAfternoon:
		return models.SessionAfternoon, true
	}
	return "", false
}

// Duty is one dated, named duty slot needing a number of students.
type Duty struct {
	Date     time.Time
	Name     string
	Kind     Kind
	Students []*models.Student

	target    int
	hasTarget bool
}

// NewDuty creates an unbootstrapped duty.
func NewDuty(date time.Time, name string) *Duty {
	return &Duty{Date: date, Name: name, Kind: KindOf(name)}
}

// SetTarget fixes the headcount, used for explicit per-slot quotas.
func (d *Duty) SetTarget(n int) {
	d.target = n
	d.hasTarget = true
}

// Target returns the headcount; ok is false until bootstrapped.
func (d *Duty) Target() (n int, ok bool) { return d.target, d.hasTarget }

// Filled is the number of assigned students.
func (d *Duty) Filled() int { return len(d.Students) }

// Bootstrap resolves the headcount from a capacity range. An unset target
// locks to the current fill when that already reaches upper, and takes an
// exact quota when lower == upper. A set target is only ever raised to the
// current fill count.
func (d *Duty) Bootstrap(lower, upper int) {
	n := d.Filled()
	if !d.hasTarget {
		if upper <= n {
			d.SetTarget(n)
		} else if lower == upper {
			d.SetTarget(lower)
		}
		return
	}
	if d.target <= n {
		d.target = n
	}
}

// BootstrapExact is Bootstrap(n, n).
func (d *Duty) BootstrapExact(n int) { d.Bootstrap(n, n) }

// Freeze locks the duty at its current fill count so it takes no new
// students, whatever target it carried.
func (d *Duty) Freeze() { d.SetTarget(d.Filled()) }

// RemainingSpots is target minus filled; ok is false until bootstrapped.
func (d *Duty) RemainingSpots() (int, bool) {
	if !d.hasTarget {
		return 0, false
	}
	return d.target - d.Filled(), true
}

// IsFilled reports whether the duty is bootstrapped and at its target.
func (d *Duty) IsFilled() bool { return d.hasTarget && d.target == d.Filled() }

// HasFamily reports whether a student of family p already serves here.
func (d *Duty) HasFamily(p *models.Parent) bool {
	for _, s := range d.Students {
		if s.Parent == p {
			return true
		}
	}
	return false
}

// Admits applies the kind's eligibility predicate.
func (d *Duty) Admits(s *models.Student) bool { return d.Kind.Admits(s) }

// Label is "2024-09-07 (AM)".
func (d *Duty) Label() string {
	return fmt.Sprintf("%s (%s)", d.Date.Format(DateLayout), d.Name)
}

func (d *Duty) String() string {
	r := fmt.Sprintf("@%s %d", d.Label(), d.Filled())
	if d.hasTarget {
		r += fmt.Sprintf("/%d", d.target)
	}
	return r
}
