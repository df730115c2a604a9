// Package config provides configuration loading for the AMR surveillance
// server from YAML files or SQLite databases.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetServerConfig() (*ServerData, error)
	GetDatabaseConfig() (*DatabaseData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Server   ServerData   `json:"server"`
	Database DatabaseData `json:"database"`
}

// ServerData holds the REST server settings
type ServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port"`
	// SeedDataset loads the synthetic demonstration dataset into storage at
	// startup when the observations table is empty.
	SeedDataset bool  `json:"seed_dataset,omitempty"`
	SeedValue   int64 `json:"seed_value,omitempty"`
}

// DatabaseData selects and parameterizes the storage backend
type DatabaseData struct {
	// Backend is "sqlite" or "postgres"
	Backend string `json:"backend"`
	// Path is the database file path for the sqlite backend
	Path string `json:"path,omitempty"`
	// DSN is the connection string for the postgres backend
	DSN string `json:"dsn,omitempty"`
}

// defaultPort is used when the configuration does not set one
const defaultPort = 8090

// ApplyDefaults fills unset fields with their defaults
func (c *ConfigData) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Database.Backend == "" {
		c.Database.Backend = "sqlite"
	}
	if c.Database.Backend == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "amr.db"
	}
	if c.Server.SeedValue == 0 {
		c.Server.SeedValue = 42
	}
}
