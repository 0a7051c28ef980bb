package edmv

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

type State int

const (
	StateStaging State = iota
	StateCommitting
	StateRolledBack
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateStaging:
		return "staging"
	case StateCommitting:
		return "committing"
	case StateRolledBack:
		return "rolled back"
	case StateCommitted:
		return "committed"
	}
	return "unknown"
}

// slot tracks what currently sits at a pair's temporary path.
type slot int

const (
	slotPlaceholder slot = iota // the empty file made by the scratch manager
	slotHeld                    // the user's file, moved there by a stage step
	slotEmpty                   // nothing
)

type Report struct {
	State   State
	Renamed []Pair
}

// Executor applies a Plan. All sources are staged before any destination is
// written, so swaps and cycles cannot overwrite each other. When a step
// fails every completed step is undone in reverse order.
type Executor struct {
	fs      fileSystem
	scratch *ScratchManager
	log     *Logger

	plan    *Plan
	slots   []slot
	staged  []int
	commits []int
	dirs    [][]string
	state   State
}

func NewExecutor(scratch *ScratchManager, log *Logger) *Executor {
	if log == nil {
		log = nopLogger()
	}
	return &Executor{fs: osFS{}, scratch: scratch, log: log}
}

func (e *Executor) State() State { return e.state }

func (e *Executor) Execute(plan *Plan) (Report, error) {
	e.plan = plan
	e.slots = make([]slot, len(plan.Pairs))
	e.staged = e.staged[:0]
	e.commits = e.commits[:0]
	e.dirs = make([][]string, len(plan.Pairs))
	e.state = StateStaging
	defer e.settle()

	for i, pp := range plan.Pairs {
		if err := e.stage(i); err != nil {
			rb := e.unstage()
			return e.fail(&RenameError{Phase: PhaseStage, Src: pp.Src, Dst: pp.Tmp, Err: err, Rollback: rollbackError(rb)})
		}
	}

	e.state = StateCommitting
	for i, pp := range plan.Pairs {
		if err := e.commit(i); err != nil {
			rb := e.uncommit()
			rb = append(rb, e.unstage()...)
			return e.fail(&RenameError{Phase: PhaseCommit, Src: pp.Src, Dst: pp.Dst, Err: err, Rollback: rollbackError(rb)})
		}
	}

	e.state = StateCommitted
	report := Report{State: e.state, Renamed: make([]Pair, 0, len(plan.Pairs))}
	for _, pp := range plan.Pairs {
		report.Renamed = append(report.Renamed, pp.Pair)
	}
	return report, nil
}

func (e *Executor) fail(err *RenameError) (Report, error) {
	e.state = StateRolledBack
	if err.Rollback != nil {
		e.log.Error("could not restore every file after a failed %s", err.Phase)
	} else {
		e.log.Info("all files restored after a failed %s", err.Phase)
	}
	return Report{State: e.state}, err
}

func (e *Executor) stage(i int) error {
	pp := e.plan.Pairs[i]

	// A directory cannot replace a regular file, so give up the reservation
	// right before the move.
	if info, err := e.fs.Lstat(pp.Src); err == nil && info.IsDir() {
		if err := e.fs.Remove(pp.Tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		e.slots[i] = slotEmpty
	}

	if err := e.fs.Rename(pp.Src, pp.Tmp); err != nil {
		return err
	}
	e.log.Debug("staged %q as %q", pp.Src, pp.Tmp)
	e.slots[i] = slotHeld
	e.staged = append(e.staged, i)
	return nil
}

func (e *Executor) commit(i int) error {
	pp := e.plan.Pairs[i]

	created, err := makeParents(e.fs, filepath.Dir(pp.Dst))
	e.dirs[i] = created
	for _, d := range created {
		e.log.Debug("created directory %q", d)
	}
	if err != nil {
		return err
	}

	if err := move(e.fs, pp.Tmp, pp.Dst); err != nil {
		return err
	}
	e.log.Debug("committed %q as %q", pp.Tmp, pp.Dst)
	e.slots[i] = slotEmpty
	e.commits = append(e.commits, i)
	return nil
}

// uncommit moves committed files back to their temporary paths, newest
// first, and removes the directories the commit phase created.
func (e *Executor) uncommit() []error {
	var errs []error
	for i := len(e.plan.Pairs) - 1; i >= 0; i-- {
		if e.committed(i) {
			pp := e.plan.Pairs[i]
			if err := move(e.fs, pp.Dst, pp.Tmp); err != nil {
				e.log.Warn("cannot move %q back to %q: %v", pp.Dst, pp.Tmp, err)
				errs = append(errs, fmt.Errorf("undo commit %q: %w", pp.Dst, err))
			} else {
				e.slots[i] = slotHeld
			}
		}

		dirs := e.dirs[i]
		for j := len(dirs) - 1; j >= 0; j-- {
			if err := e.fs.Remove(dirs[j]); err != nil {
				e.log.Warn("cannot remove directory %q: %v", dirs[j], err)
				errs = append(errs, fmt.Errorf("remove directory %q: %w", dirs[j], err))
			}
		}
		e.dirs[i] = nil
	}
	e.commits = e.commits[:0]
	return errs
}

func (e *Executor) committed(i int) bool {
	for _, c := range e.commits {
		if c == i {
			return true
		}
	}
	return false
}

// unstage moves every held file back to its source, newest first.
func (e *Executor) unstage() []error {
	var errs []error
	for k := len(e.staged) - 1; k >= 0; k-- {
		i := e.staged[k]
		if e.slots[i] != slotHeld {
			continue
		}
		pp := e.plan.Pairs[i]
		if err := move(e.fs, pp.Tmp, pp.Src); err != nil {
			e.log.Warn("cannot move %q back to %q: %v", pp.Tmp, pp.Src, err)
			errs = append(errs, fmt.Errorf("undo stage %q: %w", pp.Src, err))
			continue
		}
		e.log.Debug("restored %q", pp.Src)
		e.slots[i] = slotEmpty
	}
	e.staged = e.staged[:0]
	return errs
}

// settle removes unused reservations. A temporary path still holding a
// user's file is handed off and reported instead of being deleted.
func (e *Executor) settle() {
	for i, pp := range e.plan.Pairs {
		switch e.slots[i] {
		case slotPlaceholder:
			_ = e.scratch.Remove(pp.Tmp)
		case slotHeld:
			e.scratch.Forget(pp.Tmp)
			e.log.Error("%q is now stored at %q", pp.Src, pp.Tmp)
		case slotEmpty:
			e.scratch.Forget(pp.Tmp)
		}
	}
}
