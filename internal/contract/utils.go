package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	FatalColor = color.New(color.FgRed, color.Bold)
	WarnColor  = color.New(color.FgYellow)
	OKColor    = color.New(color.FgGreen)
	InfoColor  = color.New(color.FgCyan)
)

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", FatalColor.Sprint("Fatal"), msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", WarnColor.Sprint("Warn"), msg, err)
}

// SelectOutputFile returns the file to write output to, or os.Stdout when filePath is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the commit cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitstat_cache.db"
	}
	return filepath.Join(homeDir, ".gitstat_cache.db")
}

// GetReposPath returns the default root directory for working copies.
func GetReposPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "repositories"
	}
	return filepath.Join(homeDir, ".gitstat", "repositories")
}

// TruncateText truncates s to maxWidth runes with an ellipsis prefix.
// Requires maxWidth > 3 so the ellipsis leaves room for content.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
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

// ShortHash returns the abbreviated form of a commit hash for display.
func ShortHash(hash string) string {
	if len(hash) > 10 {
		return hash[:10]
	}
	return hash
}
