// Package cleanup implements pruning of old diagnostics log entries.
package cleanup

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type line struct {
	raw []byte
	at  time.Time // zero when the line has no parsable time
}

// PruneByAge removes log entries older than maxAgeDays from the log at path.
// If dryRun is true, the file is left untouched and the function only reports
// how many entries would be removed. Lines without a timestamp are kept.
func PruneByAge(path string, maxAgeDays int, dryRun bool) (int, error) {
	lines, err := readLines(path)
	if err != nil || lines == nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	kept := lines[:0:0]
	for _, l := range lines {
		if !l.at.IsZero() && l.at.Before(cutoff) {
			continue
		}
		kept = append(kept, l)
	}

	pruned := len(lines) - len(kept)
	if pruned == 0 || dryRun {
		return pruned, nil
	}
	return pruned, rewrite(path, kept)
}

// PruneKeepRecent removes all but the last keep entries. If dryRun is true,
// the file is left untouched.
func PruneKeepRecent(path string, keep int, dryRun bool) (int, error) {
	lines, err := readLines(path)
	if err != nil {
		return 0, err
	}
	if len(lines) <= keep {
		return 0, nil
	}

	pruned := len(lines) - keep
	if dryRun {
		return pruned, nil
	}
	return pruned, rewrite(path, lines[pruned:])
}

// readLines returns nil (not an error) if the log does not exist.
func readLines(path string) ([]line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading log: %w", err)
	}

	var lines []line
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var head struct {
			Time time.Time `json:"time"`
		}
		l := line{raw: append([]byte(nil), raw...)}
		if json.Unmarshal(raw, &head) == nil {
			l.at = head.Time
		}
		lines = append(lines, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return lines, nil
}

// rewrite replaces the log atomically so a concurrent reader never sees a
// half-written file.
func rewrite(path string, lines []line) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".log-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp log: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, l := range lines {
		w.Write(l.raw)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp log: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing log: %w", err)
	}
	return nil
}
