// This file holds a lightweight linter for Config values. It performs
// static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.

package config

import (
	"fmt"
	"strings"

	"reportpipe/internal/filter"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that is surfaced
	// to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "warehouse.kind",
// "reports[1].sql_file"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where one is expected.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is severity error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of a Config. It does not mutate the
// config; callers decide whether warnings are fatal. The catalog, when
// non-nil, is used to flag filter names no fragment exists for; those are
// warnings only, since unknown names are silently skipped at run time.
func Validate(c Config, cat *filter.Catalog) []Issue {
	var issues []Issue

	issues = append(issues, validateWarehouse(c)...)
	issues = append(issues, validateReports(c.Reports, cat)...)
	issues = append(issues, validateSMTP(c)...)
	issues = append(issues, validateSchedule(c.Schedule)...)

	return issues
}

func validateWarehouse(c Config) []Issue {
	var issues []Issue

	kind := strings.TrimSpace(c.Warehouse.Kind)
	if kind == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.kind",
			Message:  "warehouse.kind must not be empty",
		})
	} else {
		known := map[string]struct{}{
			"postgres": {},
			"duckdb":   {},
			"sqlite":   {},
			"mysql":    {},
			"mssql":    {},
		}
		if _, ok := known[kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "warehouse.kind",
				Message:  fmt.Sprintf("unknown warehouse kind %q; ensure a matching backend is registered", kind),
			})
		}
	}

	if strings.TrimSpace(c.Warehouse.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.dsn",
			Message:  "warehouse.dsn must not be empty",
		})
	}

	return issues
}

func validateReports(reports []Report, cat *filter.Catalog) []Issue {
	var issues []Issue

	if len(reports) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "reports",
			Message:  "at least one report must be configured",
		})
		return issues
	}

	seen := map[string]int{}
	for i, r := range reports {
		path := func(field string) string { return fmt.Sprintf("reports[%d].%s", i, field) }

		name := strings.TrimSpace(r.Name)
		if name == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path("name"),
				Message:  "report name must not be empty; it keys transforms and logs",
			})
		} else if first, dup := seen[name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path("name"),
				Message:  fmt.Sprintf("report name %q duplicates reports[%d]; each report must appear exactly once", name, first),
			})
		} else {
			seen[name] = i
		}

		if strings.TrimSpace(r.SQLFile) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path("sql_file"),
				Message:  "sql_file must not be empty",
			})
		}
		if strings.TrimSpace(r.OutputFile) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path("output_file"),
				Message:  "output_file must not be empty",
			})
		} else if !strings.HasSuffix(strings.ToLower(r.OutputFile), ".xlsx") {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path("output_file"),
				Message:  fmt.Sprintf("output_file %q does not end in .xlsx; the writer always produces xlsx content", r.OutputFile),
			})
		}

		if cat != nil {
			for _, fname := range r.Filters.Names() {
				if _, ok := cat.Lookup(fname); !ok {
					issues = append(issues, Issue{
						Severity: SeverityWarning,
						Path:     path("filters." + fname),
						Message:  fmt.Sprintf("no catalog fragment named %q; the filter will be skipped at run time", fname),
					})
				}
			}
		}
	}

	return issues
}

func validateSMTP(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.SMTP.Host) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "smtp.host",
			Message:  "smtp.host must not be empty",
		})
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "smtp.port",
			Message:  fmt.Sprintf("smtp.port=%d is out of range", c.SMTP.Port),
		})
	}
	if strings.TrimSpace(c.SMTP.From) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "smtp.from",
			Message:  "smtp.from must not be empty",
		})
	}
	if len(c.SMTP.To) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "recipients.to",
			Message:  "at least one to-recipient is required",
		})
	}
	switch strings.ToLower(c.SMTP.Encryption) {
	case "", "starttls", "ssl", "none":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "smtp.encryption",
			Message:  fmt.Sprintf("unsupported smtp.encryption=%s (use starttls, ssl, or none)", c.SMTP.Encryption),
		})
	}
	if c.SMTP.Password == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "smtp.password",
			Message:  "no SMTP password set; export SMTP_PASSWORD or add it to the .env file",
		})
	}

	return issues
}

func validateSchedule(s Schedule) []Issue {
	var issues []Issue

	if s.DailyAt != "" {
		if _, _, err := ParseDailyAt(s.DailyAt); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "schedule.daily_at",
				Message:  fmt.Sprintf("daily_at %q is not HH:MM", s.DailyAt),
			})
		}
	}
	if s.BackoffSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "schedule.backoff_seconds",
			Message:  "backoff_seconds must not be negative",
		})
	}

	return issues
}

// ParseDailyAt parses an "HH:MM" wall-clock time into hour and minute.
func ParseDailyAt(s string) (hour, minute int, err error) {
	var h, m int
	if _, err = fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, 0, fmt.Errorf("invalid daily_at %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid daily_at %q: out of range", s)
	}
	return h, m, nil
}
