package extractor

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"slstmt/extractor/common"
	"slstmt/extractor/slc"
	"slstmt/ledger"
)

// ProcessFile extracts one statement from a PDF on disk.
func ProcessFile(path string) (ledger.Statement, error) {
	pages, err := common.ExtractPagesFromPDF(path)
	if err != nil {
		return ledger.Statement{}, fmt.Errorf("extracting text from %s: %w", path, err)
	}
	return slc.Extract(sourceName(path), pages)
}

// ProcessReader extracts one statement from an already-open document,
// e.g. an uploaded file.
func ProcessReader(reader io.Reader, name string) (ledger.Statement, error) {
	pages, err := common.ExtractPagesFromPDFReader(reader)
	if err != nil {
		return ledger.Statement{}, fmt.Errorf("extracting text from %s: %w", name, err)
	}
	return slc.Extract(sourceName(name), pages)
}

// ProcessPath extracts statements from a single PDF or from every PDF
// in a directory. Documents are independent, so directory entries are
// extracted in parallel; a document that fails to parse is reported in
// the error slice without affecting the others.
func ProcessPath(path string) ([]ledger.Statement, []error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, []error{err}
	}

	if !info.IsDir() {
		statement, err := ProcessFile(path)
		if err != nil {
			return nil, []error{err}
		}
		return []ledger.Statement{statement}, nil
	}

	log.Println("scanning", path)
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, []error{err}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}

	results := make([]ledger.Statement, len(files))
	failures := make([]error, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			results[i], failures[i] = ProcessFile(file)
		}(i, file)
	}
	wg.Wait()

	statements := make([]ledger.Statement, 0, len(files))
	var errs []error
	for i := range files {
		if failures[i] != nil {
			errs = append(errs, failures[i])
			continue
		}
		statements = append(statements, results[i])
	}

	return statements, errs
}

func sourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
