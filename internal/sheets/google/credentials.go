package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ErrNoCredentials is returned when no service account is configured.
var ErrNoCredentials = errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")

// Credentials resolves service account JSON. Inline JSON wins over the
// file path; adcFile is the GOOGLE_APPLICATION_CREDENTIALS fallback.
func Credentials(ctx context.Context, inlineJSON, file, adcFile string) ([]byte, error) {
	inlineJSON = strings.TrimSpace(inlineJSON)
	file = strings.TrimSpace(file)
	if inlineJSON == "" && file == "" {
		file = strings.TrimSpace(adcFile)
	}

	switch {
	case inlineJSON != "":
		slog.DebugContext(ctx, "Using inline service account credentials", "json_length", len(inlineJSON))
		return []byte(inlineJSON), nil
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read service account credentials", "path", file, "size", len(raw))
		return raw, nil
	default:
		return nil, ErrNoCredentials
	}
}
