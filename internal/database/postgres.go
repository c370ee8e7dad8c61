package database

import (
	"errors"
	"fmt"

	"github.com/complaintdesk/backend/internal/config"
	"github.com/complaintdesk/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connected", zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Department{},
		&models.Boundary{},
		&models.ComplaintType{},
		&models.ComplaintStatus{},
		&models.Employee{},
		&models.Complaint{},
		&models.ComplaintAttachment{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Seed inserts the reference data a fresh installation needs. Rows are matched
// by their natural key, so running it again is a no-op.
func Seed(db *gorm.DB, log *zap.Logger) error {
	statuses := []models.ComplaintStatus{
		{Name: "REGISTERED", SortOrder: 1, IsActive: true},
		{Name: "OPEN", SortOrder: 2, IsActive: true},
		{Name: "IN_PROGRESS", SortOrder: 3, IsActive: true},
		{Name: "RESOLVED", SortOrder: 4, IsActive: true, IsFinal: true},
		{Name: "CLOSED", SortOrder: 5, IsActive: true, IsFinal: true},
		{Name: "REJECTED", SortOrder: 6, IsActive: true, IsFinal: true},
	}
	for _, s := range statuses {
		if err := seedOne(db, &models.ComplaintStatus{}, "name = ?", s.Name, &s); err != nil {
			log.Warn("Failed to seed complaint status", zap.String("name", s.Name), zap.Error(err))
		}
	}

	departments := []models.Department{
		{Code: "ROADS", Name: "Roads Maintenance", IsActive: true},
		{Code: "WATER", Name: "Water Supply", IsActive: true},
		{Code: "SANITATION", Name: "Sanitation", IsActive: true},
		{Code: "ELECTRICAL", Name: "Street Lighting", IsActive: true},
	}
	for _, d := range departments {
		if err := seedOne(db, &models.Department{}, "code = ?", d.Code, &d); err != nil {
			log.Warn("Failed to seed department", zap.String("code", d.Code), zap.Error(err))
		}
	}

	hours := func(h int) *int { return &h }
	types := []models.ComplaintType{
		{Code: "POTHOLE", Name: "Pothole", SLAHours: hours(72), IsActive: true},
		{Code: "WATER_LEAK", Name: "Water Leakage", SLAHours: hours(24), IsActive: true},
		{Code: "GARBAGE", Name: "Garbage Not Collected", SLAHours: hours(48), IsActive: true},
		{Code: "STREETLIGHT", Name: "Streetlight Not Working", SLAHours: hours(96), IsActive: true},
	}
	for _, t := range types {
		if err := seedOne(db, &models.ComplaintType{}, "code = ?", t.Code, &t); err != nil {
			log.Warn("Failed to seed complaint type", zap.String("code", t.Code), zap.Error(err))
		}
	}

	boundaries := []models.Boundary{
		{Code: "CITY", Name: "City", Type: "city", MinLatitude: 12.80, MaxLatitude: 13.20, MinLongitude: 77.40, MaxLongitude: 77.80, IsActive: true},
		{Code: "ZONE-SOUTH", Name: "South Zone", Type: "zone", MinLatitude: 12.80, MaxLatitude: 12.95, MinLongitude: 77.50, MaxLongitude: 77.70, IsActive: true},
	}
	for _, b := range boundaries {
		if err := seedOne(db, &models.Boundary{}, "code = ?", b.Code, &b); err != nil {
			log.Warn("Failed to seed boundary", zap.String("code", b.Code), zap.Error(err))
		}
	}

	employees := []models.Employee{
		{Code: "SYSTEM", FirstName: "System", IsActive: true},
	}
	for _, e := range employees {
		if err := seedOne(db, &models.Employee{}, "code = ?", e.Code, &e); err != nil {
			log.Warn("Failed to seed employee", zap.String("code", e.Code), zap.Error(err))
		}
	}

	log.Info("Database seeding completed")
	return nil
}

func seedOne(db *gorm.DB, probe interface{}, query string, key string, row interface{}) error {
	err := db.Where(query, key).First(probe).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return db.Create(row).Error
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
