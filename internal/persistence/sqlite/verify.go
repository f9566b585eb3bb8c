package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
)

// VerifyMode selects the integrity pragma.
type VerifyMode string

const (
	VerifyQuick VerifyMode = "quick" // PRAGMA quick_check
	VerifyFull  VerifyMode = "full"  // PRAGMA integrity_check
)

// VerifyIntegrity checks the SQLite database for structural corruption.
// It returns the diagnostic rows if corruption is found, or nil if healthy.
func VerifyIntegrity(ctx context.Context, path string, mode VerifyMode) ([]string, error) {
	dsn := fileDSN(path, url.Values{
		"mode":    {"ro"},
		"_pragma": {"busy_timeout(2000)"},
	})
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database for verification: %w", err)
	}
	defer func() { _ = db.Close() }()

	pragma := "PRAGMA quick_check;"
	if mode == VerifyFull {
		pragma = "PRAGMA integrity_check;"
	}

	rows, err := db.QueryContext(ctx, pragma)
	if err != nil {
		return nil, fmt.Errorf("integrity pragma failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []string
	for rows.Next() {
		var res string
		if err := rows.Scan(&res); err != nil {
			return nil, fmt.Errorf("scan integrity result row: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read integrity results: %w", err)
	}

	// healthy is exactly one "ok" row
	if len(results) == 1 && strings.EqualFold(results[0], "ok") {
		return nil, nil
	}
	if len(results) == 0 {
		return []string{"no results returned from integrity check"}, nil
	}
	return results, nil
}
