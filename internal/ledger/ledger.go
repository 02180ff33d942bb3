// Package ledger persists a durable, queryable record of each compilation
// run: which files were analyzed, how many classes and artifacts came out
// of each, and which diagnostics or fatal errors were raised along the
// way. It is the backing store for `kernelforge --history`.
//
// Modeled on a gorm-backed run ledger (models.Stage/Apply/Session plus
// db.Connect's dialector setup) and on the run/operation bookkeeping shape
// of a plain-sql BeginRun/AppendOp API, both adapted from file-patch runs
// to compilation runs.
package ledger

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/oklog/ulid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/kernelforge/internal/kerrors"
)

// Connect opens (creating if necessary) the sqlite-backed ledger at dsn
// and migrates its schema.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ledger: create directory: %w", err)
		}
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("ledger: connect: %w", err)
	}
	if err := db.AutoMigrate(&Run{}, &FileRecord{}, &DiagnosticRecord{}); err != nil {
		return nil, fmt.Errorf("ledger: migrate: %w", err)
	}
	return db, nil
}

func newULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String()
}

// BeginRun inserts and returns a new Run row in status "running".
func BeginRun(db *gorm.DB) (*Run, error) {
	run := &Run{
		ID:         uuid.NewString(),
		PublicULID: newULID(),
		Status:     "running",
	}
	if err := db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("ledger: begin run: %w", err)
	}
	return run, nil
}

// RecordFile appends a FileRecord to runID, bumping the run's FilesCount.
func RecordFile(db *gorm.DB, runID, path, status string, classesFound, artifactsWritten int, hashBefore, hashAfter string) (*FileRecord, error) {
	rec := &FileRecord{
		ID:               uuid.NewString(),
		RunID:            runID,
		Path:             path,
		Status:           status,
		ClassesFound:     classesFound,
		ArtifactsWritten: artifactsWritten,
		HashBefore:       hashBefore,
		HashAfter:        hashAfter,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return tx.Model(&Run{}).Where("id = ?", runID).
			UpdateColumn("files_count", gorm.Expr("files_count + 1")).Error
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: record file: %w", err)
	}
	return rec, nil
}

// RecordDiagnostic appends a non-fatal kerrors.Diagnostic to runID.
func RecordDiagnostic(db *gorm.DB, runID string, d kerrors.Diagnostic) error {
	return recordDiagnostic(db, runID, d.File, d.Line, "warning", string(d.Kind), d.Message)
}

// RecordFailure appends a fatal kerrors.CompilationError to runID. Per the
// orchestrator's failure-propagation policy this never aborts the run
// itself — only the offending file is skipped.
func RecordFailure(db *gorm.DB, runID string, err *kerrors.CompilationError) error {
	return recordDiagnostic(db, runID, err.File, err.Line, "error", string(err.Kind), err.Error())
}

func recordDiagnostic(db *gorm.DB, runID, file string, line int, severity, kind, message string) error {
	rec := &DiagnosticRecord{
		ID:       uuid.NewString(),
		RunID:    runID,
		File:     file,
		Line:     line,
		Severity: severity,
		Kind:     kind,
		Message:  message,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return tx.Model(&Run{}).Where("id = ?", runID).
			UpdateColumn("diagnostics_count", gorm.Expr("diagnostics_count + 1")).Error
	})
	if err != nil {
		return fmt.Errorf("ledger: record diagnostic: %w", err)
	}
	return nil
}

// FinishRun marks runID with a terminal status and FinishedAt timestamp.
func FinishRun(db *gorm.DB, runID, status string) error {
	now := time.Now()
	err := db.Model(&Run{}).Where("id = ?", runID).Updates(map[string]any{
		"status":      status,
		"finished_at": &now,
	}).Error
	if err != nil {
		return fmt.Errorf("ledger: finish run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent limit runs, most-recent first. The
// CLI's --history flag does not call it; it loads one run via RunDetail.
func RecentRuns(db *gorm.DB, limit int) ([]Run, error) {
	var runs []Run
	err := db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: recent runs: %w", err)
	}
	return runs, nil
}

// RunDetail loads one run together with its files and diagnostics, for
// `kernelforge --history <run-id>`.
func RunDetail(db *gorm.DB, runID string) (*Run, error) {
	var run Run
	err := db.Preload("Files").Preload("Diagnostics").First(&run, "id = ? OR public_ulid = ?", runID, runID).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: run detail: %w", err)
	}
	return &run, nil
}
