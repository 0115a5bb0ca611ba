package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/duty-scheduler-go/pkg/arrangement"
)

// SignSheetTitle heads every page of the sign-in workbook.
const SignSheetTitle = "Parent-on-Duty Sign In/Out Sheet"

// WriteSignSheet writes an XLSX workbook with one sign-in sheet per duty
// date after the cutoff. Each duty gets a block: a header row naming the
// duty and the board member, then one row per serving student with blank
// sign-in and sign-out cells.
func WriteSignSheet(w io.Writer, snap *arrangement.Snapshot, after time.Time) error {
	groups := byDate(snap, after)
	if len(groups) == 0 {
		return fmt.Errorf("no duty after %s", after.Format(arrangement.DateLayout))
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    borders(2),
	})
	if err != nil {
		return err
	}
	body, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    borders(1),
	})
	if err != nil {
		return err
	}

	for i, g := range groups {
		sheet := g.date.Format(arrangement.DateLayout)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeDay(f, sheet, g, header, body); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeDay(f *excelize.File, sheet string, g dateGroup, header, body int) error {
	if err := f.SetColWidth(sheet, "A", "A", 10); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 36); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "D", 24); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A1", g.date.Format(longLayout)); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A2", SignSheetTitle); err != nil {
		return err
	}

	row := 4
	for _, d := range g.duties {
		if err := setRow(f, sheet, row, header, d.Name, "Board Member", "Sign In", "Sign Out"); err != nil {
			return err
		}
		row++
		for _, s := range d.Students {
			if err := setRow(f, sheet, row, body, d.Name, s.String(), "", ""); err != nil {
				return err
			}
			row++
		}
		row += 2
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row, style int, values ...any) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, first, &values); err != nil {
		return err
	}
	if err := f.SetRowHeight(sheet, row, 30); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func borders(weight int) []excelize.Border {
	var out []excelize.Border
	for _, side := range []string{"left", "top", "right", "bottom"} {
		out = append(out, excelize.Border{Type: side, Color: "000000", Style: weight})
	}
	return out
}
