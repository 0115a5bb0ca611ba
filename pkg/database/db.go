package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arnavshah/duty-scheduler-go/internal/config"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table: one row per key and day.
type APIUsage struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	KeyID         uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date          string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount  int    `gorm:"default:0" json:"request_count"`
	TotalDuties   int    `gorm:"default:0" json:"total_duties"`
	TotalStudents int    `gorm:"default:0" json:"total_students"`
}

// Coordinator represents the coordinators table: the admins who manage keys.
type Coordinator struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// InitDB opens postgres when a URL is configured and the sqlite file at
// Path otherwise, then migrates the schema.
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	if cfg.URL != "" {
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		})
		gcfg.PrepareStmt = false
	} else {
		dialector = sqlite.Open(cfg.Path)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &Coordinator{}, &RegistrationRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// RecordUsage adds one request and its fill counts to today's usage row of
// a key, in a single upsert supported by both postgres and sqlite.
func RecordUsage(db *gorm.DB, keyID uint, duties, students int) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":  gorm.Expr("request_count + ?", 1),
			"total_duties":   gorm.Expr("total_duties + ?", duties),
			"total_students": gorm.Expr("total_students + ?", students),
		}),
	}).Create(&APIUsage{
		KeyID:         keyID,
		Date:          time.Now().Format("2006-01-02"),
		RequestCount:  1,
		TotalDuties:   duties,
		TotalStudents: students,
	}).Error
}

// UsageOf returns the last 30 days of usage of a key, newest first.
func UsageOf(db *gorm.DB, keyID uint) ([]APIUsage, error) {
	var usage []APIUsage
	err := db.Where("key_id = ?", keyID).Order("date desc").Limit(30).Find(&usage).Error
	return usage, err
}
