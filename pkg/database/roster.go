package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/duty-scheduler-go/pkg/models"
	"github.com/arnavshah/duty-scheduler-go/pkg/roster"
)

// RegistrationRecord represents the registrations table, one registration
// row per student. Phones and emails are stored comma separated.
type RegistrationRecord struct {
	StudentID           string `gorm:"primaryKey"`
	SchoolYear          string
	Class               string `gorm:"not null"`
	ChineseName         string
	Student             string `gorm:"not null"`
	Role                string
	Father              string
	Mother              string
	Phones              string
	Emails              string
	Status              string `gorm:"index"`
	TuitionCheckAmount  string
	TuitionCheckNumber  string
	TuitionCheckStatus  string
	DutyCheckNumber     string
	DutyCheckStatus     string
	Donation            string
	DonationCheckNumber string
	DonationCheckStatus string
	CultureClass        string
	Position            int `gorm:"index"`
}

func (RegistrationRecord) TableName() string { return "registrations" }

func recordOf(row models.Registration, pos int) RegistrationRecord {
	return RegistrationRecord{
		StudentID:           strings.TrimSpace(row.ID),
		SchoolYear:          row.SchoolYear,
		Class:               row.Class,
		ChineseName:         row.ChineseName,
		Student:             row.Student,
		Role:                row.Role,
		Father:              row.Father,
		Mother:              row.Mother,
		Phones:              strings.Join(row.Phones, ","),
		Emails:              strings.Join(row.Emails, ","),
		Status:              row.Status,
		TuitionCheckAmount:  row.TuitionCheckAmount,
		TuitionCheckNumber:  row.TuitionCheckNumber,
		TuitionCheckStatus:  row.TuitionCheckStatus,
		DutyCheckNumber:     row.DutyCheckNumber,
		DutyCheckStatus:     row.DutyCheckStatus,
		Donation:            row.Donation,
		DonationCheckNumber: row.DonationCheckNumber,
		DonationCheckStatus: row.DonationCheckStatus,
		CultureClass:        row.CultureClass,
		Position:            pos,
	}
}

// Registration converts the record back to a registration row.
func (r RegistrationRecord) Registration() models.Registration {
	return models.Registration{
		ID:                  r.StudentID,
		SchoolYear:          r.SchoolYear,
		Class:               r.Class,
		ChineseName:         r.ChineseName,
		Student:             r.Student,
		Role:                r.Role,
		Father:              r.Father,
		Mother:              r.Mother,
		Phones:              split(r.Phones),
		Emails:              split(r.Emails),
		Status:              r.Status,
		TuitionCheckAmount:  r.TuitionCheckAmount,
		TuitionCheckNumber:  r.TuitionCheckNumber,
		TuitionCheckStatus:  r.TuitionCheckStatus,
		DutyCheckNumber:     r.DutyCheckNumber,
		DutyCheckStatus:     r.DutyCheckStatus,
		Donation:            r.Donation,
		DonationCheckNumber: r.DonationCheckNumber,
		DonationCheckStatus: r.DonationCheckStatus,
		CultureClass:        r.CultureClass,
	}
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// ImportRoster upserts registration rows keyed by student id, keeping the
// given order for later loads. It returns the number of rows written.
func ImportRoster(db *gorm.DB, rows []models.Registration) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	records := make([]RegistrationRecord, len(rows))
	for i, row := range rows {
		records[i] = recordOf(row, i)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}},
			UpdateAll: true,
		}).CreateInBatches(records, 200).Error
	})
	if err != nil {
		return 0, fmt.Errorf("import roster: %w", err)
	}
	return len(records), nil
}

// LoadRoster builds a registry from the registrations table.
func LoadRoster(db *gorm.DB) (*roster.Registry, error) {
	var records []RegistrationRecord
	if err := db.Order("position, student_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	rows := make([]models.Registration, len(records))
	for i, r := range records {
		rows[i] = r.Registration()
	}
	return roster.Build(rows)
}
