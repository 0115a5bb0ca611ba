package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arnavshah/duty-scheduler-go/internal/config"
	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	return db
}

func TestRecordUsage(t *testing.T) {
	db := testDB(t)
	key := APIKey{Key: "ops.abc", Name: "ops"}
	require.NoError(t, db.Create(&key).Error)

	require.NoError(t, RecordUsage(db, key.ID, 6, 20))
	require.NoError(t, RecordUsage(db, key.ID, 2, 5))

	usage, err := UsageOf(db, key.ID)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].RequestCount)
	assert.Equal(t, 8, usage[0].TotalDuties)
	assert.Equal(t, 25, usage[0].TotalStudents)
}

func TestImportAndLoadRoster(t *testing.T) {
	db := testDB(t)
	rows := []models.Registration{
		{ID: "2", Class: "B3A", Student: "Amy Chen", Father: "Wei Chen", Status: "Active",
			DutyCheckNumber: "11", Phones: []string{"555-0101", "555-0102"}, Emails: []string{"wei@example.com"}},
		{ID: "1", Class: "B2P", Student: "Ben Chen", Father: "Wei Chen", Status: "Active"},
	}
	n, err := ImportRoster(db, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows[1].Status = "Withdrawn"
	_, err = ImportRoster(db, rows)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&RegistrationRecord{}).Count(&count).Error)
	assert.Equal(t, int64(2), count, "re-import updates in place")

	reg, err := LoadRoster(db)
	require.NoError(t, err)
	students := reg.Students()
	require.Len(t, students, 2)
	assert.Equal(t, "Amy Chen", students[0].Name, "import order is kept")
	assert.True(t, students[0].Volunteer)
	assert.Equal(t, "Withdrawn", students[1].Status)

	require.Len(t, reg.Parents(), 1)
	assert.Equal(t, []string{"555-0101", "555-0102"}, reg.Parents()[0].Phones)
}

func TestImportEmpty(t *testing.T) {
	n, err := ImportRoster(testDB(t), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
