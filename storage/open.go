package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"tradenet/utils"
)

// BaseName is the file name, without extension, used for file sinks.
const BaseName = "bilateral_links"

// Options selects and configures a link sink.
type Options struct {
	Format     string
	OutputDir  string
	SQLitePath string
	DSN        string
	RunID      string
	Retry      *utils.RetryConfig
}

// Formats lists the accepted values of Options.Format.
var Formats = []string{"csv", "xlsx", "sqlite", "postgres"}

// Open creates the sink named by opts.Format. It also returns a description
// of where the rows go, for logging.
func Open(opts Options) (LinkWriter, string, error) {
	switch strings.ToLower(opts.Format) {
	case "", "csv":
		path := filepath.Join(opts.OutputDir, BaseName+".csv")
		w, err := NewCSVWriter(path)
		return w, path, err
	case "xlsx":
		path := filepath.Join(opts.OutputDir, BaseName+".xlsx")
		w, err := NewXLSXWriter(path)
		return w, path, err
	case "sqlite", "postgres":
		return OpenStore(opts)
	default:
		return nil, "", fmt.Errorf("unknown output format %q (want one of %s)", opts.Format, strings.Join(Formats, ", "))
	}
}

// OpenStore opens one of the database sinks, which can also read runs back.
func OpenStore(opts Options) (LinkStore, string, error) {
	switch strings.ToLower(opts.Format) {
	case "sqlite":
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.OutputDir, BaseName+".db")
		}
		w, err := NewSQLiteWriter(path, opts.RunID)
		if err != nil {
			return nil, "", err
		}
		return w, fmt.Sprintf("%s (run %s)", path, opts.RunID), nil
	case "postgres":
		retry := opts.Retry
		if retry == nil {
			retry = &utils.RetryConfig{MaxAttempts: 1}
		}
		w, err := NewPostgresWriter(opts.DSN, opts.RunID, retry)
		if err != nil {
			return nil, "", err
		}
		return w, fmt.Sprintf("postgres table %s (run %s)", BaseName, opts.RunID), nil
	default:
		return nil, "", fmt.Errorf("format %q cannot read runs back (want sqlite or postgres)", opts.Format)
	}
}
