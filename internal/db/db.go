package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deployprime/agency-backend/internal/models"
)

// AllModels is the AutoMigrate set, shared with test helpers.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.ClientUser{},
		&models.ClientPasswordHistory{},
		&models.Contract{},
		&models.Service{},
		&models.Project{},
		&models.Blog{},
		&models.Quote{},
		&models.Review{},
		&models.SiteSettings{},
	}
}

func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	var db *gorm.DB
	var err error
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		fmt.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)

	// MIGRATIONS=1 runs sql migrations via golang-migrate; otherwise AutoMigrate (dev convenience)
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range AllModels() {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"users", "contracts", "site_settings"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		seed(db)
	}
	return db, nil
}

// seed creates the bootstrap admin (from ADMIN_DEFAULT_EMAIL and
// ADMIN_DEFAULT_PASSWORD) and the default service catalog when empty.
func seed(db *gorm.DB) {
	adminEmail := os.Getenv("ADMIN_DEFAULT_EMAIL")
	adminPass := os.Getenv("ADMIN_DEFAULT_PASSWORD")
	if adminEmail != "" && adminPass != "" {
		var existing models.User
		if err := db.Where("email = ?", adminEmail).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			hash, hashErr := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
			if hashErr == nil {
				db.Create(&models.User{Name: "Admin", Email: adminEmail, Password: string(hash), Role: models.RoleAdmin})
			}
		}
	}

	var serviceCount int64
	db.Model(&models.Service{}).Count(&serviceCount)
	if serviceCount == 0 {
		defaults := []models.Service{
			{Title: "Web Development", Slug: "web-development", ShortDesc: "Custom websites", Details: "Full-stack web development", Deliverables: []string{"Responsive Design"}, Order: 1, Published: true},
			{Title: "App Development", Slug: "app-development", ShortDesc: "Mobile applications", Details: "iOS and Android apps", Deliverables: []string{"Cross-platform Apps"}, Order: 2, Published: true},
			{Title: "UI/UX Design", Slug: "ui-ux-design", ShortDesc: "Beautiful interfaces", Details: "User-centered design", Deliverables: []string{"Wireframes"}, Order: 3, Published: true},
			{Title: "Maintenance", Slug: "maintenance", ShortDesc: "Ongoing support", Details: "Keep apps running smoothly", Deliverables: []string{"Regular Updates"}, Order: 4, Published: true},
		}
		for _, s := range defaults {
			db.Create(&s)
		}
	}
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
