package ledger

import "time"

// Run is one invocation of `kernelforge compile`, spanning every file and
// class it touched.
type Run struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	PublicULID string `gorm:"type:varchar(26);uniqueIndex"`

	Status     string `gorm:"type:varchar(20);not null"` // running, completed, failed
	StartedAt  time.Time `gorm:"autoCreateTime"`
	FinishedAt *time.Time

	FilesCount       int `gorm:"default:0"`
	DiagnosticsCount int `gorm:"default:0"`

	Files       []FileRecord       `gorm:"foreignKey:RunID"`
	Diagnostics []DiagnosticRecord `gorm:"foreignKey:RunID"`
}

// FileRecord is one source file the orchestrator compiled within a Run.
type FileRecord struct {
	ID    string `gorm:"primaryKey;type:varchar(36)"`
	RunID string `gorm:"type:varchar(36);index;not null"`

	Path   string `gorm:"type:varchar(1024);not null"`
	Status string `gorm:"type:varchar(20);not null"` // compiled, no_dsl, failed

	ClassesFound     int `gorm:"default:0"`
	ArtifactsWritten int `gorm:"default:0"`

	HashBefore string `gorm:"type:varchar(64)"`
	HashAfter  string `gorm:"type:varchar(64)"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// DiagnosticRecord is one diagnostic or fatal error raised while compiling
// a Run, independent of whether the triggering file otherwise succeeded.
type DiagnosticRecord struct {
	ID    string `gorm:"primaryKey;type:varchar(36)"`
	RunID string `gorm:"type:varchar(36);index;not null"`

	File     string `gorm:"type:varchar(1024)"`
	Line     int
	Severity string `gorm:"type:varchar(10);not null"` // warning, error
	Kind     string `gorm:"type:varchar(64);not null"`
	Message  string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Run) TableName() string              { return "runs" }
func (FileRecord) TableName() string       { return "files" }
func (DiagnosticRecord) TableName() string { return "diagnostics" }
