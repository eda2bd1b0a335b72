package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage writes crawl reports to a local data directory.
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir, creating the directory if
// needed. A leading "~/" expands to the user's home directory.
func New(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

// WriteReport writes the report to the data directory and returns the full
// path. With compress set, the file gets a ".gz" suffix.
func (s *Storage) WriteReport(r *Report, compress bool) (string, error) {
	data, err := r.Encode(compress)
	if err != nil {
		return "", err
	}

	name := r.Filename(time.Now())
	if compress {
		name += ".gz"
	}
	path := filepath.Join(s.dataDir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
