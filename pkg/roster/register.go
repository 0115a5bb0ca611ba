package roster

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

var (
	ErrMissingCheckNumber = errors.New("check marked received without a check number")
	ErrNoParentName       = errors.New("no mom and dad name")
)

// DutyDeposit is the amount of the parent-on-duty deposit check.
const DutyDeposit = 50

// roles whose family owes no duty
var exemptRoles = map[string]bool{
	"board member": true,
	"boardmember":  true,
	"teacher":      true,
	"exempt":       true,
}

// Build creates a registry from registration rows.
func Build(rows []models.Registration) (*Registry, error) {
	r := New()
	for i, row := range rows {
		if err := r.Register(row); err != nil {
			return nil, fmt.Errorf("registration %d: %w", i+1, err)
		}
	}
	return r, nil
}

// Register adds one registration row: the student, its classes, its family
// and its checks. The volunteer flag is derived here.
func (r *Registry) Register(row models.Registration) error {
	id, err := strconv.Atoi(strings.TrimSpace(row.ID))
	if err != nil {
		return fmt.Errorf("student id %q: %w", row.ID, err)
	}
	student := r.AddStudent(&models.Student{
		ID:          id,
		ChineseName: strings.TrimSpace(row.ChineseName),
		Name:        models.NormalizeName(row.Student),
		Status:      strings.TrimSpace(row.Status),
	})

	cls := r.AddClass(strings.TrimSpace(row.Class))
	var culture *models.Class
	if name := strings.ToLower(strings.TrimSpace(row.CultureClass)); name != "" {
		culture = r.AddClass(name)
	}
	student.Enroll(cls, culture)

	tuition, err := newCheck(row.TuitionCheckAmount, row.TuitionCheckNumber, row.TuitionCheckStatus)
	if err != nil {
		return fmt.Errorf("%s tuition: %w", student, err)
	}
	duty, err := newCheck(strconv.Itoa(DutyDeposit), row.DutyCheckNumber, row.DutyCheckStatus)
	if err != nil {
		return fmt.Errorf("%s onduty: %w", student, err)
	}
	donation, err := newCheck(row.Donation, row.DonationCheckNumber, row.DonationCheckStatus)
	if err != nil {
		return fmt.Errorf("%s donation: %w", student, err)
	}
	student.TuitionCheck = keepCheck(tuition)
	student.DutyCheck = keepCheck(duty)
	student.DonationCheck = keepCheck(donation)

	role := strings.TrimSpace(row.Role)
	var parent *models.Parent
	if cls.IsAdult() || role == "Adult Student" {
		// adults are their own family
		student.Volunteer = false
		parent = &models.Parent{Mom: student.Name, Dad: student.Name}
	} else {
		deposit := duty.Number != "" || duty.Status == "Pending"
		student.Volunteer = student.IsActive() && !exemptRoles[strings.ToLower(role)] && deposit
		parent = &models.Parent{Mom: models.NormalizeName(row.Mother), Dad: models.NormalizeName(row.Father)}
		if parent.Mom == "" && parent.Dad == "" {
			return fmt.Errorf("%s: %w", student, ErrNoParentName)
		}
	}
	parent = r.AddParent(parent)
	for _, p := range row.Phones {
		parent.AddPhone(p)
	}
	for _, e := range row.Emails {
		parent.AddEmail(e)
	}
	parent.AddChild(student)
	return nil
}

func newCheck(amount, number, status string) (*models.Check, error) {
	c := &models.Check{Number: strings.TrimSpace(number), Status: strings.TrimSpace(status)}
	if amount = strings.TrimSpace(amount); amount != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(amount, "$"))
		if err != nil {
			return nil, fmt.Errorf("check amount %q: %w", amount, err)
		}
		c.Amount = n
	}
	if c.Number == "" && c.Status == "Received" {
		return nil, ErrMissingCheckNumber
	}
	return c, nil
}

// keepCheck drops checks that were never handed in.
func keepCheck(c *models.Check) *models.Check {
	if c.Number != "" || c.Status == "Pending" {
		return c
	}
	return nil
}
