package backend

import (
	"context"
	"time"

	"tradejournal/internal/sheets"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend sheets.Backend
	// Ready probes the underlying store; nil when there is nothing to probe.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// xlsx
	WorkbookPath string

	// sqlite
	SQLiteDBPath string

	// sheets and drive
	GoogleSpreadsheetID string
	GoogleDriveFileID   string
	CredentialsJSON     string
	CredentialsFile     string
	ADCFile             string

	// memory
	SeedDir string

	// Remote backends are wrapped in a read-through cache.
	CacheSize int
	CacheTTL  time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	XLSXBackend   BackendType = "xlsx"
	SheetsBackend BackendType = "sheets"
	DriveBackend  BackendType = "drive"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case XLSXBackend, SheetsBackend, DriveBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Remote reports whether every access goes over the network.
func (bt BackendType) Remote() bool {
	return bt == SheetsBackend || bt == DriveBackend
}
