// Package database stores surveillance observations in PostgreSQL or SQLite
// through GORM.
package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amrlab/amrserver/internal/log"
	"github.com/amrlab/amrserver/internal/surveillance"
	"github.com/amrlab/amrserver/pkg/config"
	"go.uber.org/zap"
)

// insertBatchSize bounds the rows per INSERT when bulk loading
const insertBatchSize = 500

// Client holds the connection to the observation store
type Client struct {
	config *config.DatabaseData
	DB     *gorm.DB // Exported so it can be accessed from other packages
	logger *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(c *config.DatabaseData, logger *zap.SugaredLogger) *Client {
	return &Client{
		config: c,
		logger: logger,
	}
}

// Connect opens the configured backend and migrates the schema
func (c *Client) Connect() error {
	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)

	gormConfig := &gorm.Config{
		Logger: dbLogger,
	}

	var dialector gorm.Dialector
	switch c.config.Backend {
	case "postgres":
		dialector = postgres.Open(c.config.DSN)
	case "sqlite":
		dialector = sqlite.Open(c.config.Path)
	default:
		return fmt.Errorf("unknown database backend %q", c.config.Backend)
	}

	log.Infof("connecting to %s observation store...", c.config.Backend)
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		log.Warn("warning: unable to create a database connection:", err)
		return err
	}
	c.DB = db

	if err := c.DB.AutoMigrate(&ObservationRecord{}); err != nil {
		return fmt.Errorf("migrating observations schema: %w", err)
	}

	log.Info("observation store connection successful")
	return nil
}

// InsertObservations validates and bulk-inserts a batch of observations
func (c *Client) InsertObservations(observations []surveillance.Observation) error {
	if err := surveillance.ValidateAll(observations); err != nil {
		return err
	}

	records := make([]ObservationRecord, len(observations))
	for i, o := range observations {
		records[i] = newRecord(o)
	}

	if err := c.DB.CreateInBatches(records, insertBatchSize).Error; err != nil {
		return fmt.Errorf("inserting observations: %w", err)
	}
	return nil
}

// FetchObservations loads observations matching the given filters; empty
// filter values match everything
func (c *Client) FetchObservations(pathogen, antimicrobial, region string) ([]surveillance.Observation, error) {
	query := c.DB.Model(&ObservationRecord{})
	if pathogen != "" {
		query = query.Where("pathogen = ?", pathogen)
	}
	if antimicrobial != "" {
		query = query.Where("antimicrobial = ?", antimicrobial)
	}
	if region != "" {
		query = query.Where("region = ?", region)
	}

	var records []ObservationRecord
	if err := query.Order("period, pathogen, antimicrobial").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}

	observations := make([]surveillance.Observation, len(records))
	for i, r := range records {
		observations[i] = r.Observation()
	}
	return observations, nil
}

// FetchAll loads the entire observation table
func (c *Client) FetchAll() ([]surveillance.Observation, error) {
	return c.FetchObservations("", "", "")
}

// Count returns the number of stored observations
func (c *Client) Count() (int64, error) {
	var count int64
	if err := c.DB.Model(&ObservationRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting observations: %w", err)
	}
	return count, nil
}

// Close releases the underlying connection pool
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
