package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fileLedger keeps one id per line in a plain text file.
type fileLedger struct {
	path string

	mu sync.Mutex
	// danglingLine is set when the file does not end in a newline, e.g. after a crash mid-write.
	danglingLine bool
}

// openFile prepares a text ledger at path. The file itself is created on first Append.
func openFile(path string) (Ledger, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	return &fileLedger{path: path}, nil
}

// Load reads every non-blank line of the ledger file. A missing file is an empty ledger.
func (f *fileLedger) Load() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.danglingLine = false
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger file: %w", err)
	}
	f.danglingLine = len(raw) > 0 && raw[len(raw)-1] != '\n'

	var ids []string
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan ledger file: %w", err)
	}
	return ids, nil
}

// Append opens the file, writes id on its own line, syncs and closes it again.
func (f *fileLedger) Append(id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger file: %w", err)
	}

	line := id + "\n"
	if f.danglingLine {
		line = "\n" + line
	}
	if _, err := file.WriteString(line); err != nil {
		file.Close()
		return fmt.Errorf("write ledger file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync ledger file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close ledger file: %w", err)
	}
	f.danglingLine = false
	return nil
}

// Close is a no-op; the file is only held open during Append.
func (f *fileLedger) Close() error { return nil }
