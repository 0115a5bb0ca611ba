package scheduler

import (
	"io"

	"github.com/arnavshah/duty-scheduler-go/internal/logger"
	"github.com/arnavshah/duty-scheduler-go/pkg/arrangement"
	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

// Directory is a roster the arrangement can be resolved against.
type Directory interface {
	Roster
	arrangement.Resolver
}

// Run is the outcome of parsing and filling one arrangement.
type Run struct {
	Arrangement *arrangement.Snapshot
	Result      *Result
	Fairness    models.FairnessStats
}

// ParseAndFill reads an arrangement, fills it and scores the result. On
// failure the partially filled snapshot is returned with the error so the
// caller can report it, but it must not be persisted.
func ParseAndFill(dir Directory, r io.Reader, opts Options, log logger.Logger) (*Run, error) {
	snap, err := arrangement.Parse(r, dir, log)
	if err != nil {
		return nil, err
	}
	run := &Run{Arrangement: snap}
	res, err := NewScheduler(dir, snap, opts, log).Fill()
	if err != nil {
		return run, err
	}
	run.Result = res
	run.Fairness = Fairness(dir, snap)
	return run, nil
}
