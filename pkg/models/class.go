package models

import (
	"regexp"
	"strconv"
)

// Session is the part of the school day a class meets in.
type Session string

const (
	SessionMorning   Session = "AM"
	SessionAfternoon Session = "PM"
	SessionNoon      Session = "NOON"
)

// AdultGrade is the grade reported for the adult class.
const AdultGrade = 100

// language classes look like B3P, C2A, KA1: track, grade, session, section
var languageClassRe = regexp.MustCompile(`^(K|C|B)(\d+)?(A|P)(\d+)?`)

// Class is a class students enroll in: a language class that meets in the
// morning or afternoon, or a culture class that meets at noon.
type Class struct {
	Name     string
	Students []*Student
}

func (c *Class) String() string { return c.Name }

func (c *Class) IsAdult() bool { return c.Name == "AA" }

func (c *Class) IsAP() bool { return c.Name == "Pre-AP" || c.Name == "AP" }

func (c *Class) IsLanguage() bool {
	return languageClassRe.MatchString(c.Name) || c.IsAdult() || c.IsAP()
}

func (c *Class) IsCulture() bool { return !c.IsLanguage() }

// IsBilingual reports whether the class is on the bilingual track.
func (c *Class) IsBilingual() bool {
	return c.IsLanguage() && (c.IsAdult() || c.Name[:1] == "C")
}

// Session classifies the class. Culture classes meet at noon; the adult
// and AP classes are morning classes.
func (c *Class) Session() Session {
	if c.IsCulture() {
		return SessionNoon
	}
	if c.IsAdult() || c.IsAP() {
		return SessionMorning
	}
	m := languageClassRe.FindStringSubmatch(c.Name)
	if m[3] == "A" {
		return SessionMorning
	}
	return SessionAfternoon
}

// Grade returns the numeric grade level. ok is false for culture classes.
// Kindergarten and track codes without a number count as grade 0.
func (c *Class) Grade() (grade int, ok bool) {
	switch {
	case c.IsCulture():
		return 0, false
	case c.IsAdult():
		return AdultGrade, true
	case c.Name == "Pre-AP":
		return 9, true
	case c.Name == "AP":
		return 10, true
	}
	m := languageClassRe.FindStringSubmatch(c.Name)
	if m[1] == "K" || m[2] == "" {
		return 0, true
	}
	g, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, true
	}
	return g, true
}

// add enrolls s once.
func (c *Class) add(s *Student) {
	for _, e := range c.Students {
		if e == s {
			return
		}
	}
	c.Students = append(c.Students, s)
}
