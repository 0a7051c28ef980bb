package edmv

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrScratchExhausted  = errors.New("cannot create a temporary file")
	ErrScratchIO         = errors.New("temporary file error")
	ErrEditorSpawn       = errors.New("cannot start editor")
	ErrEditorExitNonZero = errors.New("editor failed")
	ErrManifestRead      = errors.New("cannot read edited file list")
	ErrRenameFailed      = errors.New("rename failed")
	ErrRollbackPartial   = errors.New("rollback incomplete")
)

type EditorExitError struct {
	Command string
	Status  int // -1 when the editor was killed by a signal
}

func (e *EditorExitError) Error() string {
	if e.Status < 0 {
		return fmt.Sprintf("editor %q was terminated", e.Command)
	}
	return fmt.Sprintf("editor %q exited with status %d", e.Command, e.Status)
}

func (e *EditorExitError) Is(target error) bool { return target == ErrEditorExitNonZero }

// RenameError reports the step that stopped the executor. Rollback holds the
// failures met while restoring the previous state, if any.
type RenameError struct {
	Phase    Phase
	Src, Dst string
	Err      error
	Rollback error
}

func (e *RenameError) Error() string {
	msg := fmt.Sprintf("%s %q -> %q: %v", e.Phase, e.Src, e.Dst, e.Err)
	if e.Rollback != nil {
		msg += "; " + strings.ReplaceAll(e.Rollback.Error(), "\n", "; ")
	}
	return msg
}

func (e *RenameError) Unwrap() []error {
	errs := []error{ErrRenameFailed, e.Err}
	if e.Rollback != nil {
		errs = append(errs, e.Rollback)
	}
	return errs
}

func rollbackError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRollbackPartial, errors.Join(errs...))
}
