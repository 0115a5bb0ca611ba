package arrangement

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/duty-scheduler-go/internal/logger"
	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

var (
	dateRe    = regexp.MustCompile(`^@(\d{4})-(\d{1,2})-(\d{1,2})$`)
	nameRe    = regexp.MustCompile(`^#([^=\s]+)(\s*=\s*(\d+)(\s*,\s*(\d+))?)?$`)
	studentRe = regexp.MustCompile(`^([^()]+?)\s*\(\s*(.+?)\s*\)$`)
)

// Resolver finds the roster student behind a "Name (Class)" line.
type Resolver interface {
	Find(name, className string) (*models.Student, error)
}

// Parse reads an arrangement file. Students that withdrew, or whose class
// moved to the other session since the file was written, are dropped with a
// warning so the next fill can reuse their spot.
func Parse(r io.Reader, res Resolver, log logger.Logger) (*Snapshot, error) {
	if log == nil {
		log = logger.Nop{}
	}
	snap := NewSnapshot()
	var (
		date   time.Time
		inDate bool
		duty   *Duty
	)
	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fail := func(err error) error {
			return &ParseError{Line: lineNo, Text: line, Err: err}
		}

		if m := dateRe.FindStringSubmatch(line); m != nil {
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			t, err := Date(y, mo, d)
			if err != nil {
				return nil, fail(err)
			}
			date, inDate, duty = t, true, nil
			continue
		}
		if strings.HasPrefix(line, "@") {
			return nil, fail(ErrInvalidDate)
		}

		if !inDate {
			name, lower, upper, ok := parseName(line)
			if !ok || lower < 0 {
				return nil, fail(ErrMalformedHeader)
			}
			if lower > upper {
				return nil, fail(ErrInvalidRange)
			}
			snap.SetDefault(name, Range{Lower: lower, Upper: upper})
			continue
		}

		if strings.HasPrefix(line, "#") {
			name, lower, upper, ok := parseName(line)
			if !ok {
				return nil, fail(ErrMalformedDuty)
			}
			duty = snap.AddDuty(date, name)
			if lower >= 0 {
				if lower != upper {
					log.Warnf("constraint ignored at %q (line %d)", line, lineNo)
				} else {
					duty.SetTarget(lower)
				}
			}
			continue
		}

		m := studentRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fail(ErrInvalidStudent)
		}
		if duty == nil {
			return nil, fail(ErrOrphanStudent)
		}
		student, err := res.Find(m[1], m[2])
		if err != nil {
			return nil, fail(err)
		}
		if reason := stale(duty, student); reason != "" {
			log.Warnf("-   %s  from %s: %s", student, duty.Label(), reason)
			snap.Dropped = append(snap.Dropped, models.DroppedAssignment{
				Student: student.String(),
				Date:    duty.Date.Format(DateLayout),
				Duty:    duty.Name,
				Reason:  reason,
			})
			continue
		}
		duty.Students = append(duty.Students, student)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

// stale explains why an assignment read from the file no longer holds.
func stale(d *Duty, s *models.Student) string {
	if !s.IsActive() {
		return "no longer active"
	}
	if session, ok := d.Kind.Session(); ok && s.Session() != session {
		return "class changed to " + string(s.Session())
	}
	return ""
}

// parseName reads "#Name[=L[,U]]". lower is -1 when no capacity is given;
// upper equals lower when only L is given.
func parseName(line string) (name string, lower, upper int, ok bool) {
	m := nameRe.FindStringSubmatch(line)
	if m == nil {
		return "", -1, -1, false
	}
	lower, upper = -1, -1
	if m[3] != "" {
		lower, _ = strconv.Atoi(m[3])
		upper = lower
	}
	if m[5] != "" {
		upper, _ = strconv.Atoi(m[5])
	}
	return m[1], lower, upper, true
}
