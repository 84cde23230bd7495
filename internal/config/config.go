package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backends accepted by DATA_BACKEND.
var Backends = []string{"xlsx", "sheets", "drive", "sqlite", "memory"}

var logLevels = []string{"debug", "info", "warn", "error"}

type Config struct {
	// HTTP Server
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// Backend selection
	DataBackend  string `yaml:"data_backend"`
	WorkbookPath string `yaml:"workbook_path"`
	SQLiteDBPath string `yaml:"sqlite_db_path"`
	SeedDir      string `yaml:"seed_dir"`

	// Google
	GoogleSpreadsheetID          string `yaml:"google_spreadsheet_id"`
	GoogleDriveFileID            string `yaml:"google_drive_file_id"`
	GoogleServiceAccountJSON     string `yaml:"-"`
	GoogleServiceAccountFile     string `yaml:"google_service_account_file"`
	GoogleApplicationCredentials string `yaml:"-"`

	// Local files
	FichesDir    string `yaml:"fiches_dir"`
	CapturesDir  string `yaml:"captures_dir"`
	SettingsPath string `yaml:"settings_path"`

	// Remote backend cache
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	CacheSize int           `yaml:"cache_size"`

	// AMQP
	AMQPURL           string `yaml:"amqp_url"`
	AMQPExchange      string `yaml:"amqp_exchange"`
	AMQPQueue         string `yaml:"amqp_queue"`
	MirrorConcurrency int    `yaml:"mirror_concurrency"`
}

func defaults() *Config {
	return &Config{
		Port:              "8081",
		LogLevel:          "info",
		DataBackend:       "xlsx",
		WorkbookPath:      "suivi_objectifs.xlsx",
		SQLiteDBPath:      "./data/journal.db",
		FichesDir:         "data",
		CapturesDir:       "captures",
		SettingsPath:      "settings_ceo.json",
		CacheTTL:          time.Minute,
		CacheSize:         64,
		AMQPExchange:      "journal",
		AMQPQueue:         "sheet_saved",
		MirrorConcurrency: 4,
	}
}

// Load builds the configuration from defaults, the optional YAML file
// named by JOURNAL_CONFIG, then the environment. Environment variables
// win over the file.
func Load() (*Config, error) {
	cfg := defaults()
	if path := os.Getenv("JOURNAL_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))

	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.WorkbookPath = getEnv("WORKBOOK_PATH", cfg.WorkbookPath)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)
	cfg.SeedDir = getEnv("SEED_DIR", cfg.SeedDir)

	cfg.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", cfg.GoogleSpreadsheetID)
	cfg.GoogleDriveFileID = getEnv("GOOGLE_DRIVE_FILE_ID", cfg.GoogleDriveFileID)
	cfg.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	cfg.GoogleServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", cfg.GoogleServiceAccountFile)
	cfg.GoogleApplicationCredentials = getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")

	cfg.FichesDir = getEnv("FICHES_DIR", cfg.FichesDir)
	cfg.CapturesDir = getEnv("CAPTURES_DIR", cfg.CapturesDir)
	cfg.SettingsPath = getEnv("SETTINGS_PATH", cfg.SettingsPath)

	cfg.CacheTTL = getEnvDuration("CACHE_TTL", cfg.CacheTTL)
	cfg.CacheSize = getEnvInt("CACHE_SIZE", cfg.CacheSize)

	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)
	cfg.MirrorConcurrency = getEnvInt("MIRROR_CONCURRENCY", cfg.MirrorConcurrency)

	return cfg, nil
}

// loadFile overlays the YAML file at path. Keys absent from the file keep
// their current value.
func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// HasGoogleCredentials reports whether any credential source is set.
func (c *Config) HasGoogleCredentials() bool {
	return c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "" || c.GoogleApplicationCredentials != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(logLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, logLevels))
	}

	if !slices.Contains(Backends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	switch c.DataBackend {
	case "xlsx":
		if strings.TrimSpace(c.WorkbookPath) == "" {
			errors = append(errors, "workbook path cannot be empty when using xlsx backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
	case "drive":
		if c.GoogleDriveFileID == "" {
			errors = append(errors, "Google Drive file ID is required when using drive backend")
		}
	}

	if c.DataBackend == "sheets" || c.DataBackend == "drive" {
		if !c.HasGoogleCredentials() {
			errors = append(errors, "one of GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided for Google backends")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}
	if c.MirrorConcurrency < 1 || c.MirrorConcurrency > 32 {
		errors = append(errors, fmt.Sprintf("invalid mirror concurrency %d: must be between 1 and 32", c.MirrorConcurrency))
	}

	if strings.TrimSpace(c.FichesDir) == "" {
		errors = append(errors, "fiches directory cannot be empty")
	}
	if strings.TrimSpace(c.CapturesDir) == "" {
		errors = append(errors, "captures directory cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
