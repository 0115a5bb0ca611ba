package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

var ErrMissingColumn = errors.New("missing column")

// Registration sheet column headers.
const (
	ColID                  = "ID"
	ColSchoolYear          = "School year"
	ColClass               = "Class"
	ColChineseName         = "Student:Chinese name"
	ColStudent             = "Student"
	ColRole                = "POD"
	ColFamily              = "Family"
	ColMother              = "Family:Mother"
	ColHomePhone1          = "Family:Home phone 1"
	ColHomePhone2          = "Family:Home phone 2"
	ColMobilePhone1        = "Family:Mobile phone 1"
	ColMobilePhone2        = "Family:Mobile phone 2"
	ColEmail1              = "Family:Email 1"
	ColEmail2              = "Family:Email 2"
	ColStatus              = "Status"
	ColTuitionCheckAmount  = "Tuition check amount"
	ColTuitionCheckNumber  = "Tuition check #"
	ColTuitionCheckStatus  = "Tuition check status"
	ColDutyCheckNumber     = "Onduty check #"
	ColDutyCheckStatus     = "Onduty check status"
	ColDonation            = "Donation"
	ColDonationCheckNumber = "Donation check #"
	ColDonationCheckStatus = "Donation status"
	ColCultureClass        = "Culture Class"
)

var requiredColumns = []string{ColID, ColClass, ColStudent, ColStatus}

// Header lists the columns written by the exporters, in sheet order.
var Header = []string{
	ColID, ColSchoolYear, ColClass, ColChineseName, ColStudent, ColRole,
	ColFamily, ColMother, ColHomePhone1, ColHomePhone2, ColMobilePhone1, ColMobilePhone2,
	ColEmail1, ColEmail2, ColStatus,
	ColTuitionCheckAmount, ColTuitionCheckNumber, ColTuitionCheckStatus,
	ColDutyCheckNumber, ColDutyCheckStatus,
	ColDonation, ColDonationCheckNumber, ColDonationCheckStatus,
	ColCultureClass,
}

// LoadCSV builds a registry from a registration sheet exported as CSV.
func LoadCSV(r io.Reader) (*Registry, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}
	return Build(rows)
}

// ReadCSV parses registration rows from CSV without building a registry.
func ReadCSV(r io.Reader) ([]models.Registration, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}
	var rows []models.Registration
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("roster line %d: %w", line, err)
		}
		if blank(record) {
			continue
		}
		rows = append(rows, toRegistration(cols, record))
	}
	return rows, nil
}

// LoadXLSX builds a registry from the first sheet of a workbook.
func LoadXLSX(r io.Reader) (*Registry, error) {
	rows, err := ReadXLSX(r)
	if err != nil {
		return nil, err
	}
	return Build(rows)
}

// ReadXLSX parses registration rows from the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]models.Registration, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, errors.New("roster sheet is empty")
	}
	cols, err := columnIndex(records[0])
	if err != nil {
		return nil, err
	}
	var rows []models.Registration
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}
		rows = append(rows, toRegistration(cols, record))
	}
	return rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, c)
		}
	}
	return cols, nil
}

func toRegistration(cols map[string]int, record []string) models.Registration {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.Trim(record[i], " \n\t")
	}
	return models.Registration{
		ID:                  get(ColID),
		SchoolYear:          get(ColSchoolYear),
		Class:               get(ColClass),
		ChineseName:         get(ColChineseName),
		Student:             get(ColStudent),
		Role:                get(ColRole),
		Father:              get(ColFamily),
		Mother:              get(ColMother),
		Phones:              nonEmpty(get(ColHomePhone1), get(ColHomePhone2), get(ColMobilePhone1), get(ColMobilePhone2)),
		Emails:              nonEmpty(get(ColEmail1), get(ColEmail2)),
		Status:              get(ColStatus),
		TuitionCheckAmount:  get(ColTuitionCheckAmount),
		TuitionCheckNumber:  get(ColTuitionCheckNumber),
		TuitionCheckStatus:  get(ColTuitionCheckStatus),
		DutyCheckNumber:     get(ColDutyCheckNumber),
		DutyCheckStatus:     get(ColDutyCheckStatus),
		Donation:            get(ColDonation),
		DonationCheckNumber: get(ColDonationCheckNumber),
		DonationCheckStatus: get(ColDonationCheckStatus),
		CultureClass:        get(ColCultureClass),
	}
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
