package holdings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileLedger stores the ledger as a JSON object keyed by mint.
type FileLedger struct {
	path string
}

func NewFileLedger(path string) (*FileLedger, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return &FileLedger{path: path}, nil
}

func (l *FileLedger) Path() string { return l.path }

func (l *FileLedger) All(_ context.Context) (map[string]Holding, error) {
	records, err := l.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Holding, len(records))
	for mint, r := range records {
		h := r.holding()
		h.Mint = mint
		out[mint] = h
	}
	return out, nil
}

func (l *FileLedger) Add(_ context.Context, holdings ...Holding) error {
	records, err := l.read()
	if err != nil {
		return err
	}
	for _, h := range holdings {
		records[h.Mint] = toRecord(h)
	}
	return l.write(records)
}

func (l *FileLedger) Delete(_ context.Context, mint string) error {
	records, err := l.read()
	if err != nil {
		return err
	}
	if _, ok := records[mint]; !ok {
		return nil
	}
	delete(records, mint)
	return l.write(records)
}

// read accepts the keyed object and the older flat array of records.
func (l *FileLedger) read() (map[string]record, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]record), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if len(data) == 0 {
		return make(map[string]record), nil
	}

	records := make(map[string]record)
	if err := json.Unmarshal(data, &records); err == nil {
		if records == nil { // literal null
			records = make(map[string]record)
		}
		return records, nil
	}

	var list []record
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", l.path, err)
	}
	for _, r := range list {
		if _, ok := records[r.TokenID]; !ok {
			records[r.TokenID] = r
		}
	}
	return records, nil
}

// write replaces the file atomically.
func (l *FileLedger) write(records map[string]record) error {
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".ledger-*")
	if err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
