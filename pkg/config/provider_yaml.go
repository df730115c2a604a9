package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Server struct {
			ListenAddr  string `yaml:"listen_addr,omitempty"`
			Port        int    `yaml:"port,omitempty"`
			SeedDataset bool   `yaml:"seed_dataset,omitempty"`
			SeedValue   int64  `yaml:"seed_value,omitempty"`
		} `yaml:"server"`
		Database struct {
			Backend string `yaml:"backend,omitempty"`
			Path    string `yaml:"path,omitempty"`
			DSN     string `yaml:"dsn,omitempty"`
		} `yaml:"database"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	config := &ConfigData{
		Server: ServerData{
			ListenAddr:  yamlConfig.Server.ListenAddr,
			Port:        yamlConfig.Server.Port,
			SeedDataset: yamlConfig.Server.SeedDataset,
			SeedValue:   yamlConfig.Server.SeedValue,
		},
		Database: DatabaseData{
			Backend: yamlConfig.Database.Backend,
			Path:    yamlConfig.Database.Path,
			DSN:     yamlConfig.Database.DSN,
		},
	}
	config.ApplyDefaults()

	y.config = config
	return config, nil
}

// GetServerConfig returns the server configuration section
func (y *YAMLProvider) GetServerConfig() (*ServerData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Server, nil
}

// GetDatabaseConfig returns the database configuration section
func (y *YAMLProvider) GetDatabaseConfig() (*DatabaseData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Database, nil
}

// IsReadOnly returns true; YAML configurations are not editable at runtime
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
