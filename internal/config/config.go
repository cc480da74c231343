package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `json:"server"`
	Database      DatabaseConfig      `json:"database"`
	Consensus     ConsensusConfig     `json:"consensus"`
	Payments      PaymentsConfig      `json:"payments"`
	FundRelease   FundReleaseConfig   `json:"fund_release"`
	Notifications NotificationsConfig `json:"notifications"`
	Storage       StorageConfig       `json:"storage"`
	Search        SearchConfig        `json:"search"`
	Logging       LoggingConfig       `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"db_name"`
	SSLMode        string `json:"ssl_mode"`
	MaxConnections int    `json:"max_connections"`
	MaxIdleConns   int    `json:"max_idle_conns"`
}

// ConsensusConfig tunes the milestone verification engine.
type ConsensusConfig struct {
	RequiredValidations          int     `json:"required_validations"`
	ApprovalThreshold            float64 `json:"approval_threshold"`
	AllowDuplicateValidatorVotes bool    `json:"allow_duplicate_validator_votes"`
	AutoRejectBelowThreshold     bool    `json:"auto_reject_below_threshold"`
}

// PaymentsConfig carries webhook verification secrets.
type PaymentsConfig struct {
	StripeWebhookSecret      string        `json:"stripe_webhook_secret"`
	MobileMoneyWebhookSecret string        `json:"mobile_money_webhook_secret"`
	SignatureTolerance       time.Duration `json:"signature_tolerance"`
}

// FundReleaseConfig points at the external fund-release collaborator.
type FundReleaseConfig struct {
	Endpoint string        `json:"endpoint"`
	Timeout  time.Duration `json:"timeout"`
}

// NotificationsConfig configures the fan-out channels.
type NotificationsConfig struct {
	AWSRegion    string `json:"aws_region"`
	SenderEmail  string `json:"sender_email"`
	SMSEnabled   bool   `json:"sms_enabled"`
	EmailEnabled bool   `json:"email_enabled"`
}

// StorageConfig configures the object store for photos and receipts.
type StorageConfig struct {
	AWSRegion     string `json:"aws_region"`
	PhotoBucket   string `json:"photo_bucket"`
	ReceiptBucket string `json:"receipt_bucket"`
}

// SearchConfig configures the Elasticsearch project index.
type SearchConfig struct {
	Addresses []string `json:"addresses"`
	Index     string   `json:"index"`
	Enabled   bool     `json:"enabled"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from .env, a JSON file, and
// environment variable overrides, in that order.
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; absence is not an error
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "fundflow_africa",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
		},
		Consensus: ConsensusConfig{
			RequiredValidations:          3,
			ApprovalThreshold:            4.0,
			AllowDuplicateValidatorVotes: true,
			AutoRejectBelowThreshold:     false,
		},
		Payments: PaymentsConfig{
			SignatureTolerance: 5 * time.Minute,
		},
		FundRelease: FundReleaseConfig{
			Timeout: 15 * time.Second,
		},
		Notifications: NotificationsConfig{
			AWSRegion:    "af-south-1",
			SenderEmail:  "no-reply@fundflow.africa",
			SMSEnabled:   true,
			EmailEnabled: true,
		},
		Storage: StorageConfig{
			AWSRegion:     "af-south-1",
			PhotoBucket:   "fundflow-validation-photos",
			ReceiptBucket: "fundflow-donation-receipts",
		},
		Search: SearchConfig{
			Index: "fundflow-projects",
		},
	}

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if secret := os.Getenv("STRIPE_WEBHOOK_SECRET"); secret != "" {
		config.Payments.StripeWebhookSecret = secret
	}
	if secret := os.Getenv("MOBILE_MONEY_WEBHOOK_SECRET"); secret != "" {
		config.Payments.MobileMoneyWebhookSecret = secret
	}
	if endpoint := os.Getenv("FUND_RELEASE_ENDPOINT"); endpoint != "" {
		config.FundRelease.Endpoint = endpoint
	}
	if required := os.Getenv("CONSENSUS_REQUIRED_VALIDATIONS"); required != "" {
		if n, err := strconv.Atoi(required); err == nil && n > 0 {
			config.Consensus.RequiredValidations = n
		}
	}
	if addrs := os.Getenv("ELASTICSEARCH_URL"); addrs != "" {
		config.Search.Addresses = []string{addrs}
		config.Search.Enabled = true
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
