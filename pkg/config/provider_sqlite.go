package config

import (
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	server, err := s.GetServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	config.Server = *server

	database, err := s.GetDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	config.Database = *database

	config.ApplyDefaults()
	return config, nil
}

// GetServerConfig returns the server configuration from the database
func (s *SQLiteProvider) GetServerConfig() (*ServerData, error) {
	query := `
		SELECT listen_addr, port, seed_dataset, seed_value
		FROM server_config
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	server := &ServerData{}
	var listenAddr sql.NullString
	err := s.db.QueryRow(query).Scan(&listenAddr, &server.Port, &server.SeedDataset, &server.SeedValue)
	if err == sql.ErrNoRows {
		return server, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query server config: %w", err)
	}
	server.ListenAddr = listenAddr.String

	return server, nil
}

// GetDatabaseConfig returns the storage backend configuration
func (s *SQLiteProvider) GetDatabaseConfig() (*DatabaseData, error) {
	query := `
		SELECT backend, path, dsn
		FROM database_config
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	database := &DatabaseData{}
	var path, dsn sql.NullString
	err := s.db.QueryRow(query).Scan(&database.Backend, &path, &dsn)
	if err == sql.ErrNoRows {
		return database, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query database config: %w", err)
	}
	database.Path = path.String
	database.DSN = dsn.String

	return database, nil
}

// IsReadOnly returns false; SQLite configurations can be updated in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the underlying database handle
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
