package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tradejournal/internal/cache"
	"tradejournal/internal/sheets"
	"tradejournal/internal/sheets/cached"
	gdrive "tradejournal/internal/sheets/drive"
	gsheet "tradejournal/internal/sheets/google"
	"tradejournal/internal/sheets/memory"
	"tradejournal/internal/sheets/xlsx"
	"tradejournal/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case XLSXBackend:
		return f.createXLSXBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case DriveBackend:
		return f.createDriveBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createXLSXBackend(config Config) (*BackendResult, error) {
	store := xlsx.New(config.WorkbookPath)
	f.logger.Info("Initialized workbook backend", "path", config.WorkbookPath)
	return &BackendResult{Backend: store}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{
		Backend: repo,
		Ready:   repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	creds, err := gsheet.Credentials(ctx, config.CredentialsJSON, config.CredentialsFile, config.ADCFile)
	if err != nil {
		return nil, err
	}
	cli, err := gsheet.New(ctx, config.GoogleSpreadsheetID, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)
	return f.withCache(ctx, cli, config, func(ctx context.Context) error {
		_, err := cli.ListSheets(ctx)
		return err
	}), nil
}

func (f *DefaultFactory) createDriveBackend(ctx context.Context, config Config) (*BackendResult, error) {
	creds, err := gsheet.Credentials(ctx, config.CredentialsJSON, config.CredentialsFile, config.ADCFile)
	if err != nil {
		return nil, err
	}
	store, err := gdrive.New(ctx, config.GoogleDriveFileID, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Drive client: %w", err)
	}
	f.logger.Info("Initialized Google Drive backend", "file_id", config.GoogleDriveFileID)
	return f.withCache(ctx, store, config, nil), nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromDir(config.SeedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory backend: %w", err)
	}
	f.logger.Info("Initialized memory backend", "seed_dir", config.SeedDir)
	return &BackendResult{Backend: store}, nil
}

// withCache wraps a remote backend in an LRU cache whose expired entries
// are swept by a background janitor until Cleanup is called.
func (f *DefaultFactory) withCache(ctx context.Context, next sheets.Backend, config Config, ready func(context.Context) error) *BackendResult {
	if config.CacheSize < 1 || config.CacheTTL <= 0 {
		return &BackendResult{Backend: next, Ready: ready}
	}
	lru := cache.NewLRU[[][]string](config.CacheSize, config.CacheTTL)
	janitor := cache.NewJanitor(lru)
	jctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	go janitor.Run(jctx, max(config.CacheTTL, time.Second))

	f.logger.Info("Caching remote sheets", "size", config.CacheSize, "ttl", config.CacheTTL)
	return &BackendResult{
		Backend: cached.New(next, lru),
		Ready:   ready,
		Cleanup: func() error {
			cancel()
			<-janitor.Done()
			return nil
		},
	}
}
