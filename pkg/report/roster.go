package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arnavshah/duty-scheduler-go/pkg/models"
	"github.com/arnavshah/duty-scheduler-go/pkg/roster"
)

// ErrUnknownClass is returned for a class name the roster does not have.
var ErrUnknownClass = errors.New("unknown class")

// SelectClasses resolves a class selector: "language", "culture", or a
// comma separated list of class names. Culture class names are matched
// case-insensitively.
func SelectClasses(reg *roster.Registry, selector string) ([]*models.Class, error) {
	var out []*models.Class
	switch strings.ToLower(strings.TrimSpace(selector)) {
	case "language":
		for _, c := range reg.Classes() {
			if c.IsLanguage() {
				out = append(out, c)
			}
		}
		return out, nil
	case "culture":
		for _, c := range reg.Classes() {
			if c.IsCulture() {
				out = append(out, c)
			}
		}
		return out, nil
	}
	for _, name := range strings.Split(selector, ",") {
		name = strings.TrimSpace(name)
		c, ok := reg.Class(name)
		if !ok {
			c, ok = reg.Class(strings.ToLower(name))
		}
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownClass, name)
		}
		out = append(out, c)
	}
	return out, nil
}

// WriteClassContacts writes, class by class, the active students with
// their family's phones and emails, then every email of the class.
func WriteClassContacts(w io.Writer, classes []*models.Class) error {
	ew := &errWriter{w: w}
	for _, c := range classes {
		var lines []string
		var emails []string
		seen := map[string]bool{}
		for _, s := range c.Students {
			if !s.IsActive() {
				continue
			}
			for _, e := range s.Parent.Emails {
				if !seen[e] {
					seen[e] = true
					emails = append(emails, e)
				}
			}
			lines = append(lines, fmt.Sprintf("%s   * %-30s * %-34s * %-30s",
				s.ChineseName, s.Name, s.Parent.PhonesString(), s.Parent.EmailsString()))
		}
		if len(lines) == 0 {
			continue
		}
		ew.printf("--- CLASS %s ---\n", c.Name)
		ew.printf("%s * %-25s * %-32s * %-30s\n", "学生中文名", "学生英文名", "电话", "email")
		ew.println(strings.Join(lines, "\n"))
		ew.printf("\nAll email: %s\n\n\n", strings.Join(emails, ","))
	}
	return ew.err
}

// WriteCheckSummary buckets the tuition checks of the active students of
// the given classes by amount and totals them. A student without a tuition
// check counts as $0.
func WriteCheckSummary(w io.Writer, label string, classes []*models.Class) error {
	buckets := map[int][]*models.Student{}
	total, count := 0, 0
	for _, c := range classes {
		for _, s := range c.Students {
			if !s.IsActive() {
				continue
			}
			amt := 0
			if s.TuitionCheck != nil {
				amt = s.TuitionCheck.Amount
			}
			buckets[amt] = append(buckets[amt], s)
			total += amt
			count++
		}
	}
	amounts := make([]int, 0, len(buckets))
	for amt := range buckets {
		amounts = append(amounts, amt)
	}
	sort.Ints(amounts)

	ew := &errWriter{w: w}
	ew.printf("######## %s ########\n", label)
	for _, amt := range amounts {
		ss := buckets[amt]
		ew.printf("$%d [%d]\n", amt, len(ss))
		for _, s := range ss {
			status, number := "", ""
			if s.TuitionCheck != nil {
				status, number = s.TuitionCheck.Status, s.TuitionCheck.Number
			}
			ew.printf("\t%12s  #%4s  %s\n", status, number, s)
		}
		ew.printf("\n")
	}
	ew.printf("Total Amount = $%d\n", total)
	ew.printf("Total Student = %d\n\n", count)
	return ew.err
}
