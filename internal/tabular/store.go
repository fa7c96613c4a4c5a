package tabular

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// Open returns an append-only store for the given format. The file is created
// if missing and existing rows are never rewritten.
func Open(format schema.StoreFormat, path string) (contract.RowStore, error) {
	switch format {
	case schema.CSVStore, "":
		return OpenCSV(path)
	case schema.JSONLStore:
		return OpenJSONL(path)
	default:
		return nil, fmt.Errorf("unsupported store format: %s", format)
	}
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// CSVStore writes comma-separated rows with standard quoting.
type CSVStore struct {
	file *os.File
	w    *csv.Writer
}

var _ contract.RowStore = &CSVStore{} // Compile-time check

// OpenCSV opens path for appending CSV rows.
func OpenCSV(path string) (*CSVStore, error) {
	f, err := openAppend(path)
	if err != nil {
		return nil, fmt.Errorf("open output store: %w", err)
	}
	return &CSVStore{file: f, w: csv.NewWriter(f)}, nil
}

// Append implements the RowStore interface. The row is on disk when it returns.
func (s *CSVStore) Append(row []string) error {
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	return s.file.Sync()
}

// Close implements the RowStore interface.
func (s *CSVStore) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

// JSONLStore writes each row as a JSON array on its own line.
type JSONLStore struct {
	file *os.File
	w    *bufio.Writer
}

var _ contract.RowStore = &JSONLStore{} // Compile-time check

// OpenJSONL opens path for appending JSON lines.
func OpenJSONL(path string) (*JSONLStore, error) {
	f, err := openAppend(path)
	if err != nil {
		return nil, fmt.Errorf("open output store: %w", err)
	}
	return &JSONLStore{file: f, w: bufio.NewWriter(f)}, nil
}

// Append implements the RowStore interface.
func (s *JSONLStore) Append(row []string) error {
	if row == nil {
		row = []string{}
	}
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	return s.file.Sync()
}

// Close implements the RowStore interface.
func (s *JSONLStore) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
