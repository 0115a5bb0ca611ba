package models

import (
	"fmt"
	"regexp"
	"strings"
)

var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeName collapses runs of whitespace, " Josh  Huang " => "Josh Huang".
func NormalizeName(name string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
}

// Check is a check handed in with the registration.
type Check struct {
	Amount int
	Number string
	Status string
}

func (c *Check) String() string {
	if c == nil || c.Number == "" {
		return "NA"
	}
	return fmt.Sprintf("$%d (%s)", c.Amount, c.Status)
}

// Parent is a family unit: the parent pair owning one or more students. It is
// the unit of the fairness ceiling and of sibling conflicts.
type Parent struct {
	Mom      string
	Dad      string
	Phones   []string
	Emails   []string
	Children []*Student
}

// Key identifies the family by its parent names.
func (p *Parent) Key() string { return p.Mom + "|" + p.Dad }

func (p *Parent) String() string {
	return fmt.Sprintf("{%s, %s, #children=%d}", p.Mom, p.Dad, len(p.Children))
}

// AddChild links s to the family.
func (p *Parent) AddChild(s *Student) {
	s.Parent = p
	for _, c := range p.Children {
		if c == s {
			return
		}
	}
	p.Children = append(p.Children, s)
}

func (p *Parent) AddPhone(phone string) {
	phone = strings.TrimSpace(phone)
	if phone == "" || contains(p.Phones, phone) {
		return
	}
	p.Phones = append(p.Phones, phone)
}

func (p *Parent) AddEmail(email string) {
	email = strings.TrimSpace(strings.ReplaceAll(email, "mailto:", ""))
	if email == "" || contains(p.Emails, email) {
		return
	}
	p.Emails = append(p.Emails, email)
}

func (p *Parent) PhonesString() string { return strings.Join(p.Phones, ",") }

func (p *Parent) EmailsString() string { return strings.Join(p.Emails, ",") }

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}

// Student is an enrolled student. Volunteer marks the family as owing
// parent-on-duty service through this student.
type Student struct {
	ID            int
	ChineseName   string
	Name          string
	Status        string
	Volunteer     bool
	Parent        *Parent
	Class         *Class
	Culture       *Class
	TuitionCheck  *Check
	DutyCheck     *Check
	DonationCheck *Check
}

func (s *Student) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.className())
}

func (s *Student) className() string {
	if s.Class == nil {
		return ""
	}
	return s.Class.Name
}

// IsActive reports whether the registration is current.
func (s *Student) IsActive() bool {
	switch s.Status {
	case "Received", "Active", "Pending":
		return true
	}
	return false
}

func (s *Student) IsPending() bool { return s.Status == "Pending" }

// Session is the session of the student's language class.
func (s *Student) Session() Session {
	if s.Class == nil {
		return SessionNoon
	}
	return s.Class.Session()
}

// RestrictedEligible reports whether s may serve on a restricted (PJ) duty:
// not bilingual, not adult, above grade 2.
func (s *Student) RestrictedEligible() bool {
	if s.Class == nil || s.Class.IsBilingual() || s.Class.IsAdult() {
		return false
	}
	g, ok := s.Class.Grade()
	return ok && g > 2
}

func (s *Student) FirstName() string {
	if i := strings.LastIndex(s.Name, " "); i >= 0 {
		return s.Name[:i]
	}
	return s.Name
}

func (s *Student) LastName() string {
	if i := strings.LastIndex(s.Name, " "); i >= 0 {
		return s.Name[i+1:]
	}
	return s.Name
}

// Enroll registers s in its language class and optional culture class.
func (s *Student) Enroll(cls, culture *Class) {
	s.Class = cls
	cls.add(s)
	if culture != nil {
		s.Culture = culture
		culture.add(s)
	}
}
