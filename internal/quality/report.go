package quality

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// WriteReport writes one "key: value" line per metric in insertion order.
func WriteReport(w io.Writer, m *Metrics) error {
	bw := bufio.NewWriter(w)
	for _, e := range m.Entries() {
		if _, err := fmt.Fprintf(bw, "%s: %s\n", e.Key, e.Value); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the report to path. Parent directories are created and the
// file is replaced atomically, so readers never see a partial report.
func WriteFile(path string, m *Metrics) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := WriteReport(tmp, m); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

// ReadReport parses a report written by WriteReport back into Metrics.
// Values that look like integers are restored as counters.
func ReadReport(r io.Reader) (*Metrics, error) {
	m := NewMetrics()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("malformed report line %q", line)
		}
		if n, err := strconv.Atoi(value); err == nil {
			m.Set(key, n)
			continue
		}
		m.Set(key, value)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// RenderTable prints an aligned two-column summary for the console.
// Column widths account for wide runes in error messages.
func RenderTable(w io.Writer, m *Metrics) error {
	entries := m.Entries()

	keyWidth := len("metric")
	for _, e := range entries {
		if n := runewidth.StringWidth(e.Key); n > keyWidth {
			keyWidth = n
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s  %s\n", runewidth.FillRight("metric", keyWidth), "value")
	fmt.Fprintf(bw, "%s  %s\n", strings.Repeat("-", keyWidth), strings.Repeat("-", 5))
	for _, e := range entries {
		fmt.Fprintf(bw, "%s  %s\n", runewidth.FillRight(e.Key, keyWidth), e.Value)
	}
	return bw.Flush()
}
