// Package tabular reads the repository list and appends result rows to the output store.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// ReadRepositoryList loads every owner,name pair from a CSV file.
// The whole list is validated before any repository is processed.
func ReadRepositoryList(path string) ([]schema.RepositoryRef, error) {
	if strings.TrimSpace(path) == "" {
		return nil, contract.NewInputError("input", "no input file given", nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, contract.NewInputError(path, "cannot open input file", err)
	}
	defer func() { _ = f.Close() }()
	return ParseRepositoryList(f, path)
}

// ParseRepositoryList parses rows of exactly two fields. Blank lines and
// lines starting with '#' are skipped.
func ParseRepositoryList(r io.Reader, source string) ([]schema.RepositoryRef, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var refs []schema.RepositoryRef
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, contract.NewInputError(source, "malformed repository list", err)
		}
		line, _ := reader.FieldPos(0)
		owner, name := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if owner == "" || name == "" {
			return nil, contract.NewInputError(source, fmt.Sprintf("line %d: owner and name must both be non-empty", line), nil)
		}
		if strings.Contains(owner, "/") || strings.Contains(name, "/") {
			return nil, contract.NewInputError(source, fmt.Sprintf("line %d: owner and name must not contain '/'", line), nil)
		}
		refs = append(refs, schema.RepositoryRef{Owner: owner, Name: name})
	}
	return refs, nil
}
