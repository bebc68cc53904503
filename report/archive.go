package report

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
)

// Bundle packs multiple named artifacts into a single zip archive.
// Entries are written in name order so the archive is deterministic.
func Bundle(artifacts map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		entry, err := w.Create(name)
		if err != nil {
			return nil, fmt.Errorf("creating archive entry %s: %w", name, err)
		}
		if _, err := entry.Write(artifacts[name]); err != nil {
			return nil, fmt.Errorf("writing archive entry %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// BundleName names an archive covering the given spanned years.
func BundleName(years []int) string {
	if len(years) == 1 {
		return fmt.Sprintf("loan_summary_%d.zip", years[0])
	}
	return fmt.Sprintf("loan_summary_%d-%d.zip", years[0], years[len(years)-1])
}
