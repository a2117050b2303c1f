// Package studylog provides the study session log model and its repository.
package studylog

// StudyLog is one completed study session. Rows are immutable once inserted.
type StudyLog struct {
	ID                   int64  `db:"id" yaml:"id"`
	Mode                 string `db:"mode" yaml:"mode"`
	Subject              string `db:"subject" yaml:"subject"`
	Topic                string `db:"topic" yaml:"topic"`
	FocusDurationSeconds int64  `db:"focus_duration_seconds" yaml:"focus_duration_seconds"`
	BreakDurationSeconds int64  `db:"break_duration_seconds" yaml:"break_duration_seconds"`
	BreakCount           int64  `db:"break_count" yaml:"break_count"`
	CreatedAt            string `db:"created_at" yaml:"created_at,omitempty"`
}
