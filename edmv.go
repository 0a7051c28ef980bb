package edmv

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

type App struct {
	cfg      *Config
	log      *Logger
	out      io.Writer
	scratch  *ScratchManager
	resolver *PathResolver
	editor   Editor
	executor *Executor
}

type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string { return e.Err.Error() }
func (e *DetailedError) Unwrap() error { return e.Err }

func NewApp(cfg *Config, log *Logger) (*App, error) {
	if log == nil {
		log = nopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pr, err := NewPathResolver()
	if err != nil {
		return nil, err
	}

	sm := NewScratchManager(log)
	return &App{
		cfg:      cfg,
		log:      log,
		out:      os.Stdout,
		scratch:  sm,
		resolver: pr,
		editor:   newEditor(cfg, log),
		executor: NewExecutor(sm, log),
	}, nil
}

func newEditor(cfg *Config, log *Logger) Editor {
	if cfg.Remote {
		if addr := NvimAddress(); addr != "" {
			return NewNvimEditor(addr, log)
		}
		log.Warn("--remote given but no running nvim found; falling back to %q", cfg.Editor)
	}
	return NewProcessEditor(cfg.Editor, log)
}

// Execute runs the whole pipeline once. Temporary files made on the way are
// removed before it returns, whatever the outcome.
func (a *App) Execute() (summary Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{Err: fmt.Errorf("panic: %v", r), Stack: debug.Stack()}
		}
	}()
	defer func() {
		if rerr := a.scratch.Release(); rerr != nil {
			a.log.Warn("%v", rerr)
		}
	}()

	if len(a.cfg.Inputs) == 0 {
		return Summary{Message: "Nothing to do"}, nil
	}

	outputs, err := a.edit()
	if err != nil {
		return Summary{}, err
	}

	pairing := PairUp(a.cfg.Inputs, outputs, a.resolver)
	a.reportPairing(pairing)

	if a.cfg.DryRun {
		return a.summarize(pairing, nil, nil), writePlanYAML(a.out, pairing)
	}
	if len(pairing.Pairs) == 0 {
		s := a.summarize(pairing, nil, nil)
		s.Message = "Nothing to rename"
		return s, nil
	}

	plan, err := BuildPlan(pairing.Pairs, a.scratch)
	if err != nil {
		return a.summarize(pairing, nil, pairing.Pairs), err
	}

	report, err := a.executor.Execute(plan)
	if err != nil {
		return a.summarize(pairing, nil, pairing.Pairs), err
	}
	return a.summarize(pairing, report.Renamed, nil), nil
}

// edit writes the manifest, hands it to the editor and reads it back.
func (a *App) edit() ([]string, error) {
	manifest, err := a.scratch.Create(a.cfg.ScratchDir)
	if err != nil {
		return nil, err
	}
	defer a.scratch.Remove(manifest)

	if err := WriteManifest(manifest, a.cfg.Inputs); err != nil {
		return nil, err
	}
	if err := a.editor.Edit(manifest); err != nil {
		return nil, err
	}
	return ReadManifest(manifest)
}

func (a *App) reportPairing(p Pairing) {
	if n := len(p.Missing); n > 0 {
		a.log.Warn("edited list has %d line(s) fewer than the input; the last %d file(s) are left unchanged", n, n)
	}
	if n := len(p.Extra); n > 0 {
		a.log.Warn("edited list has %d extra line(s); they are ignored", n)
	}
	a.log.Debug("%d rename(s), %d unchanged", len(p.Pairs), len(p.Unchanged))
}

func (a *App) summarize(p Pairing, renamed, failed []Pair) Summary {
	s := Summary{Unchanged: p.Unchanged}
	for _, r := range renamed {
		s.Renamed = append(s.Renamed, fmt.Sprintf("%s -> %s", r.Src, r.Dst))
	}
	for _, f := range failed {
		s.Failed = append(s.Failed, fmt.Sprintf("%s -> %s", f.Src, f.Dst))
	}
	s.Ignored = append(s.Ignored, p.Missing...)
	for _, x := range p.Extra {
		s.Ignored = append(s.Ignored, "+ "+x)
	}
	return s
}
