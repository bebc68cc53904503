package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"slstmt/extractor"
)

// ImportResult tracks the outcome of an import operation
type ImportResult struct {
	Processed int
	Skipped   int
	Failed    int
	Errors    []string
}

// ImportOptions configures the import behavior
type ImportOptions struct {
	Force   bool // Force reprocessing of existing statements
	Verbose bool // Enable verbose logging
}

// ImportFile extracts a single statement PDF and stores it together
// with its balance changes.
func (db *DB) ImportFile(ctx context.Context, filePath string, opts ImportOptions) (processed, skipped, failed int, errs []string) {
	fileName := filepath.Base(filePath)

	statement, err := extractor.ProcessFile(filePath)
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s: %v", fileName, err)}
	}

	if statement.Events() == 0 {
		return 0, 0, 1, []string{fmt.Sprintf("%s: no balance changes extracted", fileName)}
	}

	// Natural key: (source, period_from)
	exists, existingID, err := db.StatementExists(ctx, statement.Source, statement.PeriodFrom)
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s: check error: %v", fileName, err)}
	}

	if exists && !opts.Force {
		if opts.Verbose {
			log.Printf("SKIP %s (already exists)", fileName)
		}
		return 0, 1, 0, nil
	}

	// If forcing, delete the existing statement first
	if exists && opts.Force {
		if err := db.DeleteStatement(ctx, existingID); err != nil {
			return 0, 0, 1, []string{fmt.Sprintf("%s: delete error: %v", fileName, err)}
		}
	}

	statementID, err := db.CreateStatement(ctx, statement)
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s: statement error: %v", fileName, err)}
	}

	if err := db.CreateBalanceChanges(ctx, statementID, statement); err != nil {
		// Rollback by deleting the statement
		_ = db.DeleteStatement(ctx, statementID)
		return 0, 0, 1, []string{fmt.Sprintf("%s: balance change error: %v", fileName, err)}
	}

	if opts.Verbose {
		log.Printf("OK   %s (%d balance changes)", fileName, statement.Events())
	}
	return 1, 0, 0, nil
}

// ImportDirectory processes every statement PDF in a directory
func (db *DB) ImportDirectory(ctx context.Context, dirPath string, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			files = append(files, filepath.Join(dirPath, e.Name()))
		}
	}

	log.Printf("Scanning: %s", dirPath)
	log.Printf("Found %d statement files", len(files))

	for _, filePath := range files {
		processed, skipped, failed, errs := db.ImportFile(ctx, filePath, opts)

		result.Processed += processed
		result.Skipped += skipped
		result.Failed += failed
		result.Errors = append(result.Errors, errs...)

		if opts.Verbose && failed > 0 {
			for _, errMsg := range errs {
				log.Printf("FAIL %s", errMsg)
			}
		}
	}

	return result, nil
}

// Import handles both file and directory imports
func (db *DB) Import(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if info.IsDir() {
		return db.ImportDirectory(ctx, path, opts)
	}

	result := &ImportResult{}
	processed, skipped, failed, errs := db.ImportFile(ctx, path, opts)
	result.Processed = processed
	result.Skipped = skipped
	result.Failed = failed
	result.Errors = errs
	return result, nil
}
