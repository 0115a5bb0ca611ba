package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const rosterCSV = `ID,Class,Student,Family,Family:Email 1,Status,Tuition check amount,Tuition check #,Tuition check status,Onduty check #
1,B3A,Amy Chen,Wei Chen,wei@example.com,Active,400,901,Received,101
2,B4A,Ben Wu,Jun Wu,jun@example.com,Active,400,902,Received,102
3,B5A,Cal Li,Hao Li,,Active,,,,103
4,B6A,Dee Ng,Sam Ng,,Active,,,,104
`

const arrangementText = `#AM=3,5

@2030-09-07
#AM
Amy Chen (B3A)
`

func writeInputs(t *testing.T) (dir, rosterPath, arrPath string) {
	t.Helper()
	dir = t.TempDir()
	rosterPath = filepath.Join(dir, "roster.csv")
	arrPath = filepath.Join(dir, "pod.txt")
	require.NoError(t, os.WriteFile(rosterPath, []byte(rosterCSV), 0o644))
	require.NoError(t, os.WriteFile(arrPath, []byte(arrangementText), 0o644))
	return dir, rosterPath, arrPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DUTY_LOGGING__LEVEL", "warn")
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFillWritesArrangementAndReports(t *testing.T) {
	dir, rosterPath, arrPath := writeInputs(t)
	out := filepath.Join(dir, "filled.txt")
	post := filepath.Join(dir, "post.txt")
	summary := filepath.Join(dir, "summary.txt")
	sign := filepath.Join(dir, "sign.xlsx")

	_, err := execute(t, arrPath, "--roster", rosterPath, "--after", "2030-09-01", "--seed", "5",
		"--fill", out, "--post", post, "--summary", summary, "--sign", sign)
	require.NoError(t, err)

	filled, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(filled), "#AM=3,5\n\n@2030-09-07\n#AM\nAmy Chen (B3A)\n"))
	for _, name := range []string{"Ben Wu (B4A)", "Cal Li (B5A)", "Dee Ng (B6A)"} {
		assert.Contains(t, string(filled), name)
	}

	postText, err := os.ReadFile(post)
	require.NoError(t, err)
	assert.Contains(t, string(postText), "Chen, Amy (B3A) \t 2030-09-07 [AM]")

	summaryText, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.Contains(t, string(summaryText), "----- September 07, 2030 ------")

	f, err := excelize.OpenFile(sign)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"2030-09-07"}, f.GetSheetList())
}

func TestFillFailureWritesNothing(t *testing.T) {
	dir, rosterPath, _ := writeInputs(t)
	arrPath := filepath.Join(dir, "tight.txt")
	require.NoError(t, os.WriteFile(arrPath, []byte("#AM=1,2\n\n@2030-09-07\n#AM\n"), 0o644))
	out := filepath.Join(dir, "filled.txt")

	_, err := execute(t, arrPath, "--roster", rosterPath, "--after", "2030-09-01", "--fill", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "average duty size outside range")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFailedReportLeavesNoFill(t *testing.T) {
	dir, _, arrPath := writeInputs(t)
	rosterPath := filepath.Join(dir, "one.csv")
	require.NoError(t, os.WriteFile(rosterPath, []byte(strings.Join(strings.Split(rosterCSV, "\n")[:2], "\n")+"\n"), 0o644))
	out := filepath.Join(dir, "filled.txt")
	sign := filepath.Join(dir, "sign.xlsx")

	// the only duty is before the cutoff, so the sign sheet has nothing to show
	_, err := execute(t, arrPath, "--roster", rosterPath, "--after", "2030-10-01", "--fill", out, "--sign", sign)
	require.Error(t, err)
	for _, path := range []string{out, sign} {
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), path)
	}
}

func TestFillWritesMetricsFile(t *testing.T) {
	dir, rosterPath, arrPath := writeInputs(t)
	prom := filepath.Join(dir, "podfill.prom")

	_, err := execute(t, arrPath, "--roster", rosterPath, "--after", "2030-09-01",
		"--fill", filepath.Join(dir, "filled.txt"), "--metrics", prom)
	require.NoError(t, err)
	text, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(text), `duty_fill_runs_total{outcome="ok",source="cli"} 1`)
	assert.Contains(t, string(text), `duty_students_assigned_total{source="cli"} 3`)

	tight := filepath.Join(dir, "tight.txt")
	require.NoError(t, os.WriteFile(tight, []byte("#AM=1,2\n\n@2030-09-07\n#AM\n"), 0o644))
	_, err = execute(t, tight, "--roster", rosterPath, "--after", "2030-09-01",
		"--fill", filepath.Join(dir, "filled2.txt"), "--metrics", prom)
	require.Error(t, err)
	text, err = os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(text), `duty_fill_runs_total{outcome="error",source="cli"} 1`)
}

func TestReportsWithoutFill(t *testing.T) {
	dir, rosterPath, arrPath := writeInputs(t)
	post := filepath.Join(dir, "post.txt")

	_, err := execute(t, arrPath, "--roster", rosterPath, "--post", post)
	require.NoError(t, err)
	text, err := os.ReadFile(post)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Chen, Amy (B3A)")
	assert.NotContains(t, string(text), "Wu, Ben")
}

func TestMissingRoster(t *testing.T) {
	_, _, arrPath := writeInputs(t)
	_, err := execute(t, arrPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--roster")
}

func TestRosterContactsAndChecks(t *testing.T) {
	_, rosterPath, _ := writeInputs(t)

	out, err := execute(t, "roster", "contacts", "--roster", rosterPath, "--class", "B3A")
	require.NoError(t, err)
	assert.Contains(t, out, "--- CLASS B3A ---")
	assert.Contains(t, out, "All email: wei@example.com")

	out, err = execute(t, "roster", "checks", "--roster", rosterPath, "--class", "B3A,B4A")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Amount = $800")

	_, err = execute(t, "roster", "contacts", "--roster", rosterPath, "--class", "Z9")
	assert.Error(t, err)
}

func TestRosterImport(t *testing.T) {
	dir, rosterPath, arrPath := writeInputs(t)
	t.Setenv("DUTY_DATABASE__PATH", filepath.Join(dir, "pod.db"))

	out, err := execute(t, "roster", "import", "--roster", rosterPath)
	require.NoError(t, err)
	assert.Equal(t, "imported 4 registrations\n", out)

	t.Setenv("DUTY_ROSTER__SOURCE", "db")
	filled := filepath.Join(dir, "filled.txt")
	_, err = execute(t, arrPath, "--after", "2030-09-01", "--fill", filled)
	require.NoError(t, err)
	text, err := os.ReadFile(filled)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Dee Ng (B6A)")
}
