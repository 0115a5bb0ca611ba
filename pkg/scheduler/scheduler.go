package scheduler

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/arnavshah/duty-scheduler-go/internal/logger"
	"github.com/arnavshah/duty-scheduler-go/pkg/arrangement"
	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

// DefaultFairnessCeiling is the most duties one family is given.
const DefaultFairnessCeiling = 2

// Roster is the part of the registry the scheduler reads.
type Roster interface {
	Parents() []*models.Parent
}

// Options tune one fill pass.
type Options struct {
	// After is the cutoff date; duties before it are frozen.
	After time.Time
	// MorningWeight scales the morning pool in ratio-based duties: 0 takes
	// no morning students, 1 is neutral, above 1 prefers morning.
	MorningWeight float64
	// FairnessCeiling caps duties per family; zero means the default.
	FairnessCeiling int
	// Rand shuffles the pool; nil seeds one from the clock.
	Rand *rand.Rand
}

// Scheduler fills the open duties of an arrangement from the roster.
type Scheduler struct {
	Roster      Roster
	Arrangement *arrangement.Snapshot
	Conflicts   []models.ConflictReason

	opts      Options
	rand      *rand.Rand
	log       logger.Logger
	morning   []*models.Student
	afternoon []*models.Student
	assigned  int
}

// Result summarises a successful fill pass.
type Result struct {
	// Pools holds the initial sub-pool sizes keyed by session.
	Pools map[string]int
	// Left holds the sub-pool sizes after filling.
	Left      map[string]int
	Assigned  int
	Conflicts []models.ConflictReason
}

// FillResult is the outcome of filling one duty.
type FillResult struct {
	Morning   int // spots requested from the morning pool
	Afternoon int // spots requested from the afternoon pool
	Added     int
	Deficit   int
	Reasons   []string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(r Roster, snap *arrangement.Snapshot, opts Options, log logger.Logger) *Scheduler {
	if opts.FairnessCeiling <= 0 {
		opts.FairnessCeiling = DefaultFairnessCeiling
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = logger.Nop{}
	}
	opts.After = arrangement.Day(opts.After)
	return &Scheduler{
		Roster:      r,
		Arrangement: snap,
		opts:        opts,
		rand:        opts.Rand,
		log:         log,
	}
}

// Fill runs one pass: freeze past duties, bootstrap the rest, fill the
// restricted duties, then the duties with a fixed headcount, then size the
// open morning and afternoon duties from what is left of each pool.
func (s *Scheduler) Fill() (*Result, error) {
	if len(s.Arrangement.Duties) == 0 {
		return nil, ErrNoDuties
	}

	s.morning, s.afternoon = SplitPools(s.Candidates())
	res := &Result{Pools: map[string]int{
		string(models.SessionMorning):   len(s.morning),
		string(models.SessionAfternoon): len(s.afternoon),
	}}
	s.log.Infof("#AM pool = %d", len(s.morning))
	s.log.Infof("#PM pool = %d", len(s.afternoon))

	for _, d := range s.Arrangement.Duties {
		if d.Date.Before(s.opts.After) {
			d.Freeze()
			continue
		}
		if r, ok := s.Arrangement.Default(d.Name); ok {
			d.Bootstrap(r.Lower, r.Upper)
		} else if n, ok := d.Target(); ok {
			d.BootstrapExact(n)
		} else {
			return nil, fmt.Errorf("%w %s", ErrMissingDefault, d.Label())
		}
	}

	for _, d := range s.Arrangement.Duties {
		if d.Kind != arrangement.KindRestricted || d.IsFilled() {
			continue
		}
		if _, ok := d.RemainingSpots(); !ok {
			return nil, fmt.Errorf("%w: %s, give it an exact quota", ErrUnsizedDuty, d.Label())
		}
		if err := s.fillChecked(d); err != nil {
			return nil, err
		}
	}

	// Restricted duties had their one attempt above; a tolerated shortfall
	// stays short.
	for _, d := range s.Arrangement.Duties {
		if _, ok := d.RemainingSpots(); !ok || d.IsFilled() || d.Kind == arrangement.KindRestricted {
			continue
		}
		if err := s.fillChecked(d); err != nil {
			return nil, err
		}
	}

	for _, kind := range []arrangement.Kind{arrangement.KindMorning, arrangement.KindAfternoon} {
		if err := s.fillOpen(kind); err != nil {
			return nil, err
		}
	}

	for _, d := range s.Arrangement.Duties {
		if _, ok := d.RemainingSpots(); !ok {
			s.log.Warnf("%s left open: no fixed headcount and no sizing rule", d.Label())
		}
	}

	res.Left = map[string]int{
		string(models.SessionMorning):   len(s.morning),
		string(models.SessionAfternoon): len(s.afternoon),
	}
	res.Assigned = s.assigned
	res.Conflicts = s.Conflicts
	return res, nil
}

// fillOpen sizes the still-unsized duties of one session so the remaining pool
// spreads evenly over them, then fills each from that session's pool.
func (s *Scheduler) fillOpen(kind arrangement.Kind) error {
	session, _ := kind.Session()
	name := string(session)
	pool := s.morning
	if kind == arrangement.KindAfternoon {
		pool = s.afternoon
	}

	var open []*arrangement.Duty
	filled := 0
	for _, d := range s.Arrangement.Duties {
		if _, sized := d.Target(); d.Kind == kind && !sized {
			open = append(open, d)
			filled += d.Filled()
		}
	}
	left := len(pool)
	if len(open) == 0 {
		if left > 0 {
			return fmt.Errorf("%w: there are %d %s students not assigned, try to increase upper bound",
				ErrNoOpenDuty, left, name)
		}
		return nil
	}

	rng, ok := s.Arrangement.Default(name)
	if !ok {
		return fmt.Errorf("%w %s", ErrMissingDefault, name)
	}
	avg := float64(filled+left) / float64(len(open))
	if !rng.Contains(avg) {
		return fmt.Errorf("%w: average # of %s students is %f, outside range [%d,%d]",
			ErrAverageOutOfRange, name, avg, rng.Lower, rng.Upper)
	}

	for i, piece := range Slice(len(open), filled+left) {
		d := open[i]
		d.BootstrapExact(piece)
		fr, err := s.fillDuty(d)
		if err != nil {
			return err
		}
		if err := s.checkDeficit(d, fr, rng.Lower); err != nil {
			return err
		}
	}
	return nil
}

// fillChecked fills d by pool ratio and applies the deficit rule.
func (s *Scheduler) fillChecked(d *arrangement.Duty) error {
	fr, err := s.fillDuty(d)
	if err != nil {
		return err
	}
	return s.checkDeficit(d, fr, s.lowerBound(d))
}

// checkDeficit tolerates a short duty only when it already holds the lower
// bound of its name.
func (s *Scheduler) checkDeficit(d *arrangement.Duty, fr FillResult, lower int) error {
	if fr.Deficit == 0 {
		return nil
	}
	if d.Filled() < lower {
		return fmt.Errorf("%w: unable to fill %d %s duty spots on %s, %d of at least %d filled",
			ErrInsufficientVolunteers, fr.Deficit, d.Name, d.Date.Format(arrangement.DateLayout), d.Filled(), lower)
	}
	s.log.Warnf("%s short by %d: %v", d.Label(), fr.Deficit, fr.Reasons)
	s.Conflicts = append(s.Conflicts, models.ConflictReason{
		Date:    d.Date.Format(arrangement.DateLayout),
		Duty:    d.Name,
		Session: d.Kind.String(),
		Deficit: fr.Deficit,
		Reasons: fr.Reasons,
	})
	return nil
}

func (s *Scheduler) lowerBound(d *arrangement.Duty) int {
	if r, ok := s.Arrangement.Default(d.Name); ok {
		return r.Lower
	}
	n, _ := d.Target()
	return n
}

// fillDuty tops d up to its target, splitting the spots between the morning
// and afternoon pools by the duty kind's ratio. A pool that runs dry is
// reported as a deficit rather than an error.
func (s *Scheduler) fillDuty(d *arrangement.Duty) (FillResult, error) {
	var fr FillResult
	spots, ok := d.RemainingSpots()
	if !ok {
		return fr, fmt.Errorf("%w: cannot fill unbootstrapped duty %s", ErrUnsizedDuty, d)
	}
	if spots <= 0 {
		return fr, nil
	}
	target, _ := d.Target()
	s.log.Infof("===== %s =====", d.Label())
	s.log.Infof("#TOFILL = %d/%d", spots, target)

	am, pm := d.Kind.Ratio(float64(len(s.morning))*s.opts.MorningWeight, float64(len(s.afternoon)))
	fr.Morning, fr.Afternoon = split(spots, am, pm)

	var sibling, ineligible int
	if fr.Morning > 0 {
		short := s.draw(d, &s.morning, fr.Morning, &sibling, &ineligible)
		if short > 0 {
			fr.Reasons = append(fr.Reasons, fmt.Sprintf("morning pool ran out %d short", short))
		}
		fr.Deficit += short
	}
	if fr.Afternoon > 0 {
		short := s.draw(d, &s.afternoon, fr.Afternoon, &sibling, &ineligible)
		if short > 0 {
			fr.Reasons = append(fr.Reasons, fmt.Sprintf("afternoon pool ran out %d short", short))
		}
		fr.Deficit += short
	}
	if sibling > 0 {
		fr.Reasons = append(fr.Reasons, fmt.Sprintf("%d students skipped because a sibling already serves", sibling))
	}
	if ineligible > 0 {
		fr.Reasons = append(fr.Reasons, fmt.Sprintf("%d students not eligible for this duty", ineligible))
	}
	fr.Added = fr.Morning + fr.Afternoon - fr.Deficit
	s.assigned += fr.Added
	s.log.Infof("#+AM=%d  +PM=%d", fr.Morning, fr.Afternoon)
	return fr, nil
}

// draw moves up to n students from pool to d in pool order, skipping
// students whose family already serves on d or who d does not admit. It
// returns how many spots could not be filled.
func (s *Scheduler) draw(d *arrangement.Duty, pool *[]*models.Student, n int, sibling, ineligible *int) int {
	p := *pool
	for i := 0; i < len(p) && n > 0; {
		st := p[i]
		if !d.Admits(st) {
			*ineligible++
			i++
			continue
		}
		if d.HasFamily(st.Parent) {
			*sibling++
			i++
			continue
		}
		d.Students = append(d.Students, st)
		p = append(p[:i], p[i+1:]...)
		n--
		s.log.Infof("+   %s", st)
	}
	*pool = p
	return n
}
