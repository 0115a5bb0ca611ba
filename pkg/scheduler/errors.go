package scheduler

import "errors"

var (
	// ErrNoDuties is returned when the arrangement has nothing to fill.
	ErrNoDuties = errors.New("there is no duty spot to fill")
	// ErrMissingDefault is returned when a duty has neither an explicit
	// quota nor a default range for its name.
	ErrMissingDefault = errors.New("no default range for duty")
	// ErrUnsizedDuty is returned when a duty that must be filled by ratio
	// has no fixed headcount after bootstrapping.
	ErrUnsizedDuty = errors.New("duty has no fixed headcount")
	// ErrNoOpenDuty is returned when volunteers are left with no open duty
	// of their session to go to.
	ErrNoOpenDuty = errors.New("no open duty for remaining students")
	// ErrAverageOutOfRange is returned when spreading the remaining pool
	// over the open duties falls outside the default range.
	ErrAverageOutOfRange = errors.New("average duty size outside range")
	// ErrInsufficientVolunteers is returned when a duty ends below the
	// lower bound of its name.
	ErrInsufficientVolunteers = errors.New("not enough students")
)
