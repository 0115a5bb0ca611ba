// Package report renders read-only views of an arrangement and a roster:
// the per-family duty post, the per-date summary, the sign-in workbook and
// the class contact and tuition check listings.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/arnavshah/duty-scheduler-go/pkg/arrangement"
	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

const (
	separator  = "----------------------------------------"
	longLayout = "January 02, 2006"
)

type posting struct {
	student *models.Student
	duty    *arrangement.Duty
}

// WritePost lists every family's duties, families ordered by the last name
// of their first serving student.
func WritePost(w io.Writer, snap *arrangement.Snapshot) error {
	var order []*models.Parent
	byFamily := make(map[*models.Parent][]posting)
	for _, d := range snap.Duties {
		for _, s := range d.Students {
			if _, ok := byFamily[s.Parent]; !ok {
				order = append(order, s.Parent)
			}
			byFamily[s.Parent] = append(byFamily[s.Parent], posting{s, d})
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return byFamily[order[i]][0].student.LastName() < byFamily[order[j]][0].student.LastName()
	})

	ew := &errWriter{w: w}
	for _, p := range order {
		ew.printf("%s\n", separator)
		for _, ps := range byFamily[p] {
			s := ps.student
			ew.printf("%s, %s (%s) \t %s [%s]\n", s.LastName(), s.FirstName(), s.Class,
				ps.duty.Date.Format(arrangement.DateLayout), ps.duty.Name)
		}
	}
	ew.printf("%s\n", separator)
	return ew.err
}

// WriteSummary lists the duties dated after the cutoff, grouped by date,
// with each serving family's phones and emails.
func WriteSummary(w io.Writer, snap *arrangement.Snapshot, after time.Time) error {
	ew := &errWriter{w: w}
	for _, g := range byDate(snap, after) {
		ew.printf("----- %s ------\n", g.date.Format(longLayout))
		for _, d := range g.duties {
			for _, s := range d.Students {
				ew.printf("[%s]  %s \t%s %s\n", d.Name, s, s.Parent.PhonesString(), s.Parent.EmailsString())
			}
			ew.printf("\n")
		}
	}
	return ew.err
}

type dateGroup struct {
	date   time.Time
	duties []*arrangement.Duty
}

// byDate groups the duties strictly after the cutoff by date, in date order.
func byDate(snap *arrangement.Snapshot, after time.Time) []dateGroup {
	after = arrangement.Day(after)
	idx := make(map[time.Time]int)
	var groups []dateGroup
	for _, d := range snap.Duties {
		if !d.Date.After(after) {
			continue
		}
		i, ok := idx[d.Date]
		if !ok {
			i = len(groups)
			idx[d.Date] = i
			groups = append(groups, dateGroup{date: d.Date})
		}
		groups[i].duties = append(groups[i].duties, d)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].date.Before(groups[j].date) })
	return groups
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) println(s ...string) {
	e.printf("%s\n", strings.Join(s, ""))
}
