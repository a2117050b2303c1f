package database

import (
	"errors"
	"fmt"
)

var (
	ErrSchemaTooNew     = errors.New("database schema is newer than this build")
	ErrChecksumMismatch = errors.New("applied migration does not match its script")
	ErrUnknownMigration = errors.New("applied migration is unknown to this build")
	ErrInvalidMigration = errors.New("invalid migration")
)

type SetupStage string

const (
	StageCreateDirectory SetupStage = "create directory"
	StageOpen            SetupStage = "open database"
	StageMigrate         SetupStage = "migrate"
)

// SetupError reports a failure while bringing the store up. The process
// must not use the store after one.
type SetupError struct {
	Stage SetupStage
	Path  string
	Err   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("database setup failed to %s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}
