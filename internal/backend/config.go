package backend

import (
	"fmt"

	"tradejournal/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:                backendType,
		WorkbookPath:        appConfig.WorkbookPath,
		SQLiteDBPath:        appConfig.SQLiteDBPath,
		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleDriveFileID:   appConfig.GoogleDriveFileID,
		CredentialsJSON:     appConfig.GoogleServiceAccountJSON,
		CredentialsFile:     appConfig.GoogleServiceAccountFile,
		ADCFile:             appConfig.GoogleApplicationCredentials,
		SeedDir:             appConfig.SeedDir,
		CacheSize:           appConfig.CacheSize,
		CacheTTL:            appConfig.CacheTTL,
	}, nil
}

// MirrorConfig is the Google Sheets backend the sync worker copies into.
func MirrorConfig(appConfig *config.Config) Config {
	return Config{
		Type:                SheetsBackend,
		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		CredentialsJSON:     appConfig.GoogleServiceAccountJSON,
		CredentialsFile:     appConfig.GoogleServiceAccountFile,
		ADCFile:             appConfig.GoogleApplicationCredentials,
	}
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case XLSXBackend:
		if c.WorkbookPath == "" {
			return fmt.Errorf("workbook path is required for xlsx backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
	case DriveBackend:
		if c.GoogleDriveFileID == "" {
			return fmt.Errorf("Google Drive file ID is required for drive backend")
		}
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{XLSXBackend, SheetsBackend, DriveBackend, SQLiteBackend, MemoryBackend}
}
