package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Name     string `yaml:"name"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`
	Session struct {
		Secret     string `yaml:"secret"`
		TTLMinutes int64  `yaml:"ttl_minutes"`
	} `yaml:"session"`
}

func defaults() *Config {
	config := &Config{}
	config.Server.Addr = ":8080"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.Name = "login_db"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.SSLMode = "disable"
	config.Session.Secret = "dev_secret_change_me"
	config.Session.TTLMinutes = 1440
	return config
}

// LoadConfig reads configuration from the specified YAML file, falling back
// to defaults when the file is absent. Environment variables override both.
func LoadConfig(configPath string) (*Config, error) {
	config := defaults()

	file, err := os.Open(configPath)
	if err == nil {
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	applyEnv(config)
	return config, nil
}

func applyEnv(config *Config) {
	setFromEnv(&config.Server.Addr, "SERVER_ADDR")
	setFromEnv(&config.Database.Host, "DB_HOST")
	setFromEnv(&config.Database.Port, "DB_PORT")
	setFromEnv(&config.Database.Name, "DB_NAME")
	setFromEnv(&config.Database.User, "DB_USER")
	setFromEnv(&config.Database.Password, "DB_PASS")
	setFromEnv(&config.Session.Secret, "SECRET_KEY")
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// DatabaseURL builds the data source name for the Postgres driver.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.Name,
		c.Database.User, c.Database.Password, c.Database.SSLMode)
}
