// Package results writes a per-word results table for every run.
package results

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
)

// fileTimeLayout avoids characters that are invalid in file names.
const fileTimeLayout = "2006-01-02_15-04-05"

// Header is the first row of every results file.
var Header = []string{"term", "cell id", "action", "success", "error"}

// Sink writes results_<timestamp>.csv files into a directory.
type Sink struct {
	dir        string
	labelField string
}

var _ driven.ReportSink = (*Sink)(nil)

// NewSink creates a sink writing into dir. Orphans are labelled with
// their labelField value.
func NewSink(dir, labelField string) *Sink {
	return &Sink{dir: dir, labelField: labelField}
}

// FileName returns the results file name for a report.
func FileName(report *domain.RunReport) string {
	name := "results_" + report.StartedAt.Local().Format(fileTimeLayout)
	if report.DryRun {
		name += "_dry-run"
	}
	return name + ".csv"
}

// Record writes the report's table. The file appears complete or not at all.
func (s *Sink) Record(_ context.Context, report *domain.RunReport) error {
	if report == nil {
		return domain.ErrInvalidInput
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".results-*.csv")
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	_ = w.WriteAll(Rows(report, s.labelField))
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing results file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, FileName(report))); err != nil {
		return fmt.Errorf("saving results file: %w", err)
	}
	return nil
}

// Rows returns the table: applied items, then warnings, then orphans.
func Rows(report *domain.RunReport, labelField string) [][]string {
	rows := make([][]string, 0, 1+len(report.Results)+len(report.Warnings)+len(report.Orphans))
	rows = append(rows, Header)

	for _, r := range report.Results {
		rows = append(rows, []string{r.Label, r.RecordID, r.Action.String(), strconv.FormatBool(r.Success), r.Error})
	}
	for _, w := range report.Warnings {
		rows = append(rows, []string{"", w.RowID, string(w.Kind), "false", w.Message})
	}
	for _, o := range report.Orphans {
		label := o.Entry.Fields[labelField]
		if label == "" {
			label = o.Entry.Ref
		}
		rows = append(rows, []string{label, o.Entry.StampedID, "orphan_" + string(o.Reason), "false", ""})
	}
	return rows
}
