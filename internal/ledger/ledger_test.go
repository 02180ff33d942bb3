package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oxhq/kernelforge/internal/kerrors"
)

func openTestDB(t *testing.T) *gorm.DB {
	db, err := Connect(":memory:", false)
	require.NoError(t, err)
	return db
}

func TestBeginRunAssignsUUIDAndULID(t *testing.T) {
	db := openTestDB(t)
	run, err := BeginRun(db)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Len(t, run.PublicULID, 26)
	assert.Equal(t, "running", run.Status)
}

func TestRecordFileIncrementsFilesCount(t *testing.T) {
	db := openTestDB(t)
	run, err := BeginRun(db)
	require.NoError(t, err)

	_, err = RecordFile(db, run.ID, "src/Filters.java", "compiled", 2, 4, "abc", "def")
	require.NoError(t, err)
	_, err = RecordFile(db, run.ID, "src/Plain.java", "no_dsl", 0, 0, "111", "111")
	require.NoError(t, err)

	detail, err := RunDetail(db, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.FilesCount)
	assert.Len(t, detail.Files, 2)
}

func TestRecordDiagnosticAndFailureIncrementCount(t *testing.T) {
	db := openTestDB(t)
	run, err := BeginRun(db)
	require.NoError(t, err)

	require.NoError(t, RecordDiagnostic(db, run.ID, kerrors.NonFinalCapture("src/Filters.java", 12, "k")))
	require.NoError(t, RecordFailure(db, run.ID, kerrors.New(kerrors.KindGenerationIO, "src/Filters.java", 0, kerrors.ErrGenerationIO, "disk full")))

	detail, err := RunDetail(db, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.DiagnosticsCount)
	require.Len(t, detail.Diagnostics, 2)
	assert.Equal(t, "warning", detail.Diagnostics[0].Severity)
	assert.Equal(t, "error", detail.Diagnostics[1].Severity)
}

func TestFinishRunSetsStatusAndTimestamp(t *testing.T) {
	db := openTestDB(t)
	run, err := BeginRun(db)
	require.NoError(t, err)

	require.NoError(t, FinishRun(db, run.ID, "completed"))

	detail, err := RunDetail(db, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", detail.Status)
	require.NotNil(t, detail.FinishedAt)
}

func TestRecentRunsOrdersMostRecentFirst(t *testing.T) {
	db := openTestDB(t)
	first, err := BeginRun(db)
	require.NoError(t, err)
	second, err := BeginRun(db)
	require.NoError(t, err)

	runs, err := RecentRuns(db, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}
