package database

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
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

// APIUsage represents the api_usage table, one row per key per day
type APIUsage struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	KeyID            uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date             string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount     int    `gorm:"default:0" json:"request_count"`
	TotalAssignments int    `gorm:"default:0" json:"total_assignments"`
	TotalEmployees   int    `gorm:"default:0" json:"total_employees"`
	TotalViolations  int    `gorm:"default:0" json:"total_violations"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RosterExport represents the roster_exports table: one persisted engine
// run, so a generated roster can be fetched again after the fact
type RosterExport struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	KeyID          uint      `gorm:"index;not null" json:"key_id"`
	StoreID        string    `gorm:"not null" json:"store_id"`
	StartDate      string    `gorm:"not null" json:"start_date"`
	EndDate        string    `gorm:"not null" json:"end_date"`
	HardViolations int       `json:"hard_violations"`
	SoftViolations int       `json:"soft_violations"`
	CoverageScore  float64   `json:"coverage_score"`
	ResolverUsed   bool      `json:"resolver_used"`
	CreatedAt      time.Time `json:"created_at"`

	Rows []RosterExportRow `gorm:"foreignKey:ExportID" json:"rows,omitempty"`
}

// RosterExportRow is one flattened assignment of a persisted export
type RosterExportRow struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExportID   uint   `gorm:"index;not null" json:"export_id"`
	EmployeeID string `gorm:"not null" json:"employee_id"`
	Date       string `gorm:"not null" json:"date"`
	ShiftCode  string `gorm:"not null" json:"shift_code"`
	Station    string `json:"station"`
}

// InitDB opens the database connection and migrates the schema. Postgres is
// used when a DSN is given, an embedded SQLite file otherwise.
func InitDB(dsn, dataPath string) *gorm.DB {
	var db *gorm.DB
	var err error

	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		if dataPath == "" {
			dataPath = "roster.db"
		}
		db, err = gorm.Open(sqlite.Open(dataPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}, &RosterExport{}, &RosterExportRow{})

	return db
}
