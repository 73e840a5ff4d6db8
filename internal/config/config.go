// Package config defines the canonical, JSON-serializable configuration
// model for the reporting application. There is exactly one reports list;
// every report the run should produce appears there once.
//
// Example (trimmed):
//
//	{
//	  "warehouse": { "kind": "postgres", "dsn": "postgresql://..." },
//	  "output_dir": "reports",
//	  "subject": "Reportes {current_month}",
//	  "reports": [
//	    {
//	      "name": "ingresos",
//	      "sql_file": "sql/ingresos.sql",
//	      "output_file": "ingresos.xlsx",
//	      "transform": true,
//	      "filters": { "current_month": true, "current_year": false }
//	    }
//	  ],
//	  "smtp": { "host": "smtp.local", "port": 587, "from": "robot@condo.mx" },
//	  "recipients": { "to": ["admin@condo.mx"], "cc": [] },
//	  "schedule": { "daily_at": "08:00", "backoff_seconds": 300 },
//	  "log": { "path": "logs/reportpipe.log" }
//	}
//
// Secrets never live in the file: SMTP_PASSWORD (and friends) overlay from
// the environment, optionally loaded from a .env file.
package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"reportpipe/internal/filter"
	"reportpipe/internal/logging"
	"reportpipe/internal/mail"
	"reportpipe/internal/warehouse"
)

// Config is the top-level object decoded from the config file.
type Config struct {
	// Warehouse selects the database backend and its DSN.
	Warehouse warehouse.Config `json:"warehouse"`

	// OutputDir is the directory report files are written into. Relative
	// report output_file values are joined onto it.
	OutputDir string `json:"output_dir"`

	// Subject is the run-level email subject template. Placeholders
	// {current_month} and {date} are expanded at send time. When empty,
	// the first produced report's subject is used instead.
	Subject string `json:"subject"`

	// Reports lists every report a run produces, in execution order.
	Reports []Report `json:"reports"`

	// SMTP carries transport settings; recipient lists live under
	// Recipients and are merged in by Load.
	SMTP mail.Config `json:"smtp"`

	// Recipients holds the address lists for the run email.
	Recipients Recipients `json:"recipients"`

	Schedule Schedule       `json:"schedule"`
	Log      logging.Config `json:"log"`
}

// Report describes one query-to-spreadsheet unit of work.
type Report struct {
	Name string `json:"name"`

	// SQLFile is the path to the query text, read fresh every run.
	SQLFile string `json:"sql_file"`

	// OutputFile is the spreadsheet path, joined onto Config.OutputDir
	// when relative.
	OutputFile string `json:"output_file"`

	// Transform opts the report into its registered transformer. A report
	// with Transform false skips transformation even when one is
	// registered under its name.
	Transform bool `json:"transform"`

	// Subject optionally overrides the run subject when this report is
	// the first to produce a file.
	Subject string `json:"subject"`

	// Filters toggles catalog predicates by name; iteration follows the
	// JSON key order.
	Filters filter.Request `json:"filters"`
}

// Recipients holds the to/cc/bcc address lists.
type Recipients struct {
	To  []string `json:"to"`
	Cc  []string `json:"cc"`
	Bcc []string `json:"bcc"`
}

// Schedule controls daemon mode.
type Schedule struct {
	// DailyAt is the local wall-clock run time, "HH:MM". Empty defaults
	// to "08:00".
	DailyAt string `json:"daily_at"`

	// BackoffSeconds is the pause after a failed run before the loop
	// accepts the next tick.
	BackoffSeconds int `json:"backoff_seconds"`
}

// Load reads and decodes the config file, merges the recipients block into
// the SMTP config, and applies environment overrides. It does not validate;
// call Validate on the result.
func Load(path string) (Config, error) {
	var cfg Config

	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to open config %s", path)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err = dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to decode config %s", path)
	}

	if len(cfg.Recipients.To) > 0 {
		cfg.SMTP.To = cfg.Recipients.To
	}
	if len(cfg.Recipients.Cc) > 0 {
		cfg.SMTP.Cc = cfg.Recipients.Cc
	}
	if len(cfg.Recipients.Bcc) > 0 {
		cfg.SMTP.Bcc = cfg.Recipients.Bcc
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadEnvFile loads a .env file into the process environment. A missing
// file is not an error; explicit paths that fail to parse are.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && os.IsNotExist(errors.Cause(err)) {
		return nil
	}
	return errors.Wrapf(err, "failed to load env file %s", path)
}

// applyEnv overlays secrets and address lists from the environment. File
// values lose to environment values.
func (c *Config) applyEnv() {
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("WAREHOUSE_DSN"); v != "" {
		c.Warehouse.DSN = v
	}
	if v := os.Getenv("EMAIL_TO"); v != "" {
		c.SMTP.To = splitList(v)
	}
	if v := os.Getenv("EMAIL_CC"); v != "" {
		c.SMTP.Cc = splitList(v)
	}
}

// splitList splits a comma-separated address list, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
