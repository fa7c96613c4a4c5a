package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/repometrics/schema"
)

// Status label constants.
const (
	OKValue     = "OK"
	FailedValue = "FAILED"
)

// Color variables for console output.
var (
	OKColor     = color.New(color.FgGreen, color.Bold) // OKColor marks a written row.
	FailedColor = color.New(color.FgRed, color.Bold)   // FailedColor marks a skipped repository.
	KindColor   = color.New(color.FgYellow)            // KindColor highlights the error kind.
)

// GetPlainLabel returns a plain text label for a repository outcome.
func GetPlainLabel(status schema.RepoStatus) string {
	if status == schema.StatusOK {
		return OKValue
	}
	return FailedValue
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(status schema.RepoStatus) string {
	text := GetPlainLabel(status)
	if text == OKValue {
		return OKColor.Sprint(text)
	}
	return FailedColor.Sprint(text)
}

// GetLedgerDBFilePath returns the path to the SQLite DB file for the run ledger.
func GetLedgerDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repometrics_runs.db"
	}
	return filepath.Join(homeDir, ".repometrics_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
