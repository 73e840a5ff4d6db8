// Package pipeline orchestrates a full report run: for every configured
// report it reads the query file, injects the requested filters, executes
// the query, applies the report's registered transform, and writes a
// spreadsheet; produced files then go out in a single email. Reports are
// processed sequentially so a run never hits the warehouse with more than
// one query at a time.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"reportpipe/internal/config"
	"reportpipe/internal/filter"
	"reportpipe/internal/logging"
	"reportpipe/internal/mail"
	"reportpipe/internal/metrics"
	"reportpipe/internal/report"
	"reportpipe/internal/table"
	"reportpipe/internal/transform"
	"reportpipe/internal/warehouse"
)

// Writer persists one report's table to a file.
type Writer interface {
	Write(path string, t table.Table) error
}

// Summary tallies one run.
type Summary struct {
	// Succeeded counts reports that produced a file.
	Succeeded int

	// Failed counts reports that errored in query or write.
	Failed int

	// NoData counts reports whose query returned zero rows; those are
	// skipped, not failed.
	NoData int

	// Files lists the produced spreadsheet paths in report order.
	Files []string

	// Delivered is true when the run email went out.
	Delivered bool

	// Errors collects every StageError the run hit.
	Errors []error
}

// Pipeline runs the configured reports against a warehouse. Zero-value
// fields get sensible defaults in Run: warehouse.New opens the runner,
// report.Writer writes files, time.Now stamps subjects.
type Pipeline struct {
	Cfg        config.Config
	Catalog    *filter.Catalog
	Transforms *transform.Registry
	Writer     Writer
	Mailer     mail.Mailer
	Logger     logging.Logger

	// OpenRunner lets tests substitute the warehouse connection.
	OpenRunner func(ctx context.Context, cfg warehouse.Config) (warehouse.Runner, error)

	Now func() time.Time
}

// Run executes every configured report once. The returned error is non-nil
// exactly when the run failed: any report failed, or the email could not be
// delivered. Per-report details are in the Summary either way.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.fillDefaults()

	var sum Summary
	start := p.Now()

	runner, err := p.OpenRunner(ctx, p.Cfg.Warehouse)
	if err != nil {
		serr := &StageError{Stage: StageConnect, Err: err}
		sum.Errors = append(sum.Errors, serr)
		p.Logger.Error(ctx, "warehouse connection failed", err, "kind", p.Cfg.Warehouse.Kind)
		metrics.RecordRun(serr)
		return sum, serr
	}
	defer runner.Close()

	var noDataNames []string
	subject := p.Cfg.Subject

	for _, rep := range p.Cfg.Reports {
		path, rerr := p.runReport(ctx, runner, rep)
		switch {
		case rerr != nil:
			sum.Failed++
			sum.Errors = append(sum.Errors, rerr)
			p.Logger.Error(ctx, "report failed", rerr, "report", rep.Name)
		case path == "":
			sum.NoData++
			noDataNames = append(noDataNames, rep.Name)
			p.Logger.Info(ctx, "report returned no data", "report", rep.Name)
		default:
			sum.Succeeded++
			sum.Files = append(sum.Files, path)
			if subject == "" && rep.Subject != "" {
				subject = rep.Subject
			}
			p.Logger.Info(ctx, "report written", "report", rep.Name, "path", path)
		}
	}

	if len(sum.Files) == 0 {
		p.Logger.Info(ctx, "no files produced, skipping email",
			"failed", sum.Failed, "no_data", sum.NoData)
	} else if p.Mailer == nil {
		p.Logger.Info(ctx, "no mailer configured, files kept on disk", "files", len(sum.Files))
	} else {
		if derr := p.deliver(ctx, subject, sum.Files, noDataNames); derr != nil {
			sum.Errors = append(sum.Errors, derr)
		} else {
			sum.Delivered = true
		}
	}

	err = runError(sum)
	metrics.RecordRun(err)
	p.Logger.Info(ctx, "run finished",
		"succeeded", sum.Succeeded, "failed", sum.Failed, "no_data", sum.NoData,
		"delivered", sum.Delivered, "elapsed", p.Now().Sub(start).String())
	return sum, err
}

// runReport runs one report end to end. It returns the written file path,
// or "" when the query had no rows.
func (p *Pipeline) runReport(ctx context.Context, runner warehouse.Runner, rep config.Report) (string, error) {
	raw, err := os.ReadFile(rep.SQLFile)
	if err != nil {
		return "", &StageError{Stage: StageQuery, Report: rep.Name,
			Err: errors.Wrapf(err, "failed to read query file %s", rep.SQLFile)}
	}

	query := filter.Inject(string(raw), rep.Filters, p.Catalog)

	qStart := p.Now()
	tbl, err := runner.Query(ctx, query)
	metrics.RecordStage(rep.Name, "query", err, p.Now().Sub(qStart))
	if err != nil {
		return "", &StageError{Stage: StageQuery, Report: rep.Name, Err: err}
	}
	metrics.RecordRows(rep.Name, int64(tbl.NumRows()))

	if tbl.NumRows() == 0 {
		return "", nil
	}

	tbl = p.transformed(ctx, rep, tbl)

	path := rep.OutputFile
	if !filepath.IsAbs(path) && p.Cfg.OutputDir != "" {
		path = filepath.Join(p.Cfg.OutputDir, path)
	}

	wStart := p.Now()
	err = p.Writer.Write(path, tbl)
	metrics.RecordStage(rep.Name, "write", err, p.Now().Sub(wStart))
	if err != nil {
		return "", &StageError{Stage: StageWrite, Report: rep.Name, Err: err}
	}
	return path, nil
}

// transformed applies the report's registered transform when opted in. A
// transform error or panic falls back to the untransformed table; the
// report still counts as succeeded.
func (p *Pipeline) transformed(ctx context.Context, rep config.Report, tbl table.Table) table.Table {
	if !rep.Transform || p.Transforms == nil {
		return tbl
	}
	tr, ok := p.Transforms.Lookup(rep.Name)
	if !ok {
		return tbl
	}

	tStart := p.Now()
	out, err := applySafely(tr, tbl.Clone())
	metrics.RecordStage(rep.Name, "transform", err, p.Now().Sub(tStart))
	if err != nil {
		p.Logger.Error(ctx, "transform failed, writing raw result",
			&StageError{Stage: StageTransform, Report: rep.Name, Err: err}, "report", rep.Name)
		return tbl
	}
	return out
}

// applySafely runs a transformer, turning a panic into an error.
func applySafely(tr transform.Transformer, t table.Table) (out table.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("transform panicked: %v", r)
		}
	}()
	return tr.Apply(t)
}

func (p *Pipeline) deliver(ctx context.Context, subject string, files, noData []string) error {
	now := p.Now()
	if subject == "" {
		subject = "Reportes {date}"
	}
	subject = mail.ExpandSubject(subject, now)
	body := mail.BuildBody(files, noData, now)

	dStart := p.Now()
	err := p.Mailer.Send(subject, body, files)
	metrics.RecordStage("run", "delivery", err, p.Now().Sub(dStart))
	if err != nil {
		serr := &StageError{Stage: StageDelivery, Err: err}
		p.Logger.Error(ctx, "email delivery failed, files remain on disk", err, "files", len(files))
		return serr
	}
	p.Logger.Info(ctx, "email sent", "subject", subject, "attachments", len(files))
	return nil
}

func (p *Pipeline) fillDefaults() {
	if p.Logger == nil {
		p.Logger = logging.Nop{}
	}
	if p.Catalog == nil {
		p.Catalog = filter.Default()
	}
	if p.Writer == nil {
		p.Writer = report.Writer{HeaderBold: true, ColumnWidth: 18}
	}
	if p.OpenRunner == nil {
		p.OpenRunner = warehouse.New
	}
	if p.Now == nil {
		p.Now = time.Now
	}
}

// runError derives the run verdict: success means zero failed reports and,
// when an email was attempted, successful delivery.
func runError(sum Summary) error {
	var delivery *StageError
	for _, e := range sum.Errors {
		if se, ok := e.(*StageError); ok && se.Stage == StageDelivery {
			delivery = se
		}
	}
	switch {
	case sum.Failed > 0:
		return errors.Errorf("%d of %d reports failed", sum.Failed, sum.Failed+sum.Succeeded+sum.NoData)
	case delivery != nil:
		return delivery
	}
	return nil
}
