package memrise

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

const (
	updatesFile = "updates.tsv"
	refColumn   = "ref"
)

var addFileName = regexp.MustCompile(`^add_level_(\d+)\.tsv$`)

func addFile(level int) string {
	return fmt.Sprintf("add_level_%d.tsv", level)
}

// pendingAdd is a row of an add batch not yet pasted.
type pendingAdd struct {
	Level  int
	Values []string
}

// pendingUpdate is a row of the update batch not yet pasted.
type pendingUpdate struct {
	Ref    string
	Values map[string]string
}

// readAdds returns the rows of every add batch, by ascending level.
func readAdds(dir string) ([]pendingAdd, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading outbox: %w", err)
	}

	type batch struct {
		level int
		name  string
	}
	var batches []batch
	for _, e := range entries {
		m := addFileName.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		level, _ := strconv.Atoi(m[1])
		batches = append(batches, batch{level: level, name: e.Name()})
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].level < batches[j].level })

	var adds []pendingAdd
	for _, b := range batches {
		records, err := readTSV(filepath.Join(dir, b.name))
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			adds = append(adds, pendingAdd{Level: b.level, Values: rec})
		}
	}
	return adds, nil
}

// readUpdates returns the rows of the update batch in file order.
func readUpdates(dir string) ([]pendingUpdate, error) {
	records, err := readTSV(filepath.Join(dir, updatesFile))
	if err != nil || len(records) == 0 {
		return nil, err
	}

	header := records[0]
	if len(header) == 0 || header[0] != refColumn {
		return nil, fmt.Errorf("%s: header must start with %q", updatesFile, refColumn)
	}

	updates := make([]pendingUpdate, 0, len(records)-1)
	for _, rec := range records[1:] {
		u := pendingUpdate{Ref: rec[0], Values: make(map[string]string, len(header)-1)}
		for i := 1; i < len(header) && i < len(rec); i++ {
			u.Values[header[i]] = rec[i]
		}
		updates = append(updates, u)
	}
	return updates, nil
}

func readTSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// appendTSV appends one row to path, writing header first when the file is new.
func appendTSV(path string, header, row []string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}

	if err := writeTSV(f, header, row); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// statWriter is the part of *os.File that writeTSV uses.
type statWriter interface {
	io.Writer
	Stat() (fs.FileInfo, error)
}

// writeTSV writes row to f, preceded by header when f is empty. A file whose
// size cannot be read is left untouched.
func writeTSV(f statWriter, header, row []string) error {
	w := csv.NewWriter(f)
	w.Comma = '\t'
	if header != nil {
		info, err := f.Stat()
		if err != nil {
			return err
		}
		if info.Size() == 0 {
			if err := w.Write(header); err != nil {
				return err
			}
		}
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
