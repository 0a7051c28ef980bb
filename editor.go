package edmv

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
)

// Editor lets the user change the file at path and returns once they are
// done with it.
type Editor interface {
	Edit(path string) error
}

// ProcessEditor runs Command as a child process that takes over the
// terminal. The command is looked up in PATH and receives the file as its
// only argument.
type ProcessEditor struct {
	Command string
	log     *Logger
}

func NewProcessEditor(command string, log *Logger) *ProcessEditor {
	if log == nil {
		log = nopLogger()
	}
	return &ProcessEditor{Command: command, log: log}
}

func (e *ProcessEditor) Edit(path string) error {
	cmd := exec.Command(e.Command, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// The editor shares our process group; keep a ^C meant for it from
	// killing us before the temporary file is removed.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	e.log.Debug("starting editor %q on %q", e.Command, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w %q: %w", ErrEditorSpawn, e.Command, err)
	}

	err := cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &EditorExitError{Command: e.Command, Status: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrEditorSpawn, e.Command, err)
	}
	return nil
}
