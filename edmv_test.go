package edmv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type editorFunc func(path string) error

func (f editorFunc) Edit(path string) error { return f(path) }

// saveLines returns an editor that replaces the manifest with lines.
func saveLines(lines ...string) editorFunc {
	return func(path string) error {
		return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
	}
}

func newTestApp(t *testing.T, inputs []string, ed Editor) (*App, string) {
	t.Helper()
	scratchDir := t.TempDir()
	app, err := NewApp(&Config{Editor: "unused", Inputs: inputs, ScratchDir: scratchDir}, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	app.editor = ed
	app.out = &bytes.Buffer{}
	return app, scratchDir
}

func TestAppUnchangedListIsNoOp(t *testing.T) {
	dir := t.TempDir()
	x, y := filepath.Join(dir, "x"), filepath.Join(dir, "y")
	writeFile(t, x, "X")
	writeFile(t, y, "Y")

	var seen string
	app, scratchDir := newTestApp(t, []string{x, y}, editorFunc(func(path string) error {
		seen = readFile(t, path)
		if info, err := os.Stat(path); err == nil && info.Mode().Perm() != 0o600 {
			t.Errorf("manifest mode %v", info.Mode().Perm())
		}
		return nil
	}))

	summary, err := app.Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if seen != x+"\n"+y+"\n" {
		t.Fatalf("editor saw %q", seen)
	}
	if len(summary.Renamed) != 0 || len(summary.Unchanged) != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	assertContent(t, x, "X")
	assertContent(t, y, "Y")
	assertNoScratch(t, scratchDir)
	assertNoScratch(t, dir)
}

func TestAppRenames(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")
	A, B := filepath.Join(dir, "A.txt"), filepath.Join(dir, "B.txt")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	app, scratchDir := newTestApp(t, []string{a, b}, saveLines(A, B))
	summary, err := app.Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(summary.Renamed) != 2 || summary.Renamed[0] != a+" -> "+A {
		t.Fatalf("unexpected summary %+v", summary)
	}
	assertContent(t, A, "a")
	assertContent(t, B, "b")
	assertMissing(t, a)
	assertMissing(t, b)
	assertNoScratch(t, scratchDir)
	assertNoScratch(t, dir)
}

func TestAppSwapAndCycle(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	writeFile(t, a, "A")
	writeFile(t, b, "B")

	app, _ := newTestApp(t, []string{a, b}, saveLines(b, a))
	if _, err := app.Execute(); err != nil {
		t.Fatalf("swap: %v", err)
	}
	assertContent(t, a, "B")
	assertContent(t, b, "A")

	one, two, three := filepath.Join(dir, "one"), filepath.Join(dir, "two"), filepath.Join(dir, "three")
	writeFile(t, one, "1")
	writeFile(t, two, "2")
	writeFile(t, three, "3")

	app, _ = newTestApp(t, []string{one, two, three}, saveLines(two, three, one))
	if _, err := app.Execute(); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	assertContent(t, two, "1")
	assertContent(t, three, "2")
	assertContent(t, one, "3")
	assertNoScratch(t, dir)
}

func TestAppFewerLines(t *testing.T) {
	dir := t.TempDir()
	keep, drop := filepath.Join(dir, "keep"), filepath.Join(dir, "drop")
	writeFile(t, keep, "k")
	writeFile(t, drop, "d")

	app, _ := newTestApp(t, []string{keep, drop}, saveLines(keep))
	summary, err := app.Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(summary.Ignored) != 1 || summary.Ignored[0] != drop {
		t.Fatalf("unexpected summary %+v", summary)
	}
	assertContent(t, keep, "k")
	assertContent(t, drop, "d")
}

func TestAppBlankLineKeepsFile(t *testing.T) {
	dir := t.TempDir()
	a, b, c := filepath.Join(dir, "a"), filepath.Join(dir, "b"), filepath.Join(dir, "c")
	writeFile(t, a, "A")
	writeFile(t, b, "B")
	writeFile(t, c, "C")
	C := filepath.Join(dir, "C")

	app, _ := newTestApp(t, []string{a, b, c}, saveLines(a, "", C))
	if _, err := app.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	assertContent(t, a, "A")
	assertContent(t, b, "B")
	assertContent(t, C, "C")
}

func TestAppEditorFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, src, "S")

	useFakeEditor(t, "exit:1", "")
	app, scratchDir := newTestApp(t, []string{src}, nil)
	app.editor = NewProcessEditor(os.Args[0], nil)

	_, err := app.Execute()
	if !errors.Is(err, ErrEditorExitNonZero) {
		t.Fatalf("got %v, want ErrEditorExitNonZero", err)
	}
	assertContent(t, src, "S")
	assertNoScratch(t, scratchDir)
}

func TestAppEditorKilled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, src, "S")

	useFakeEditor(t, "kill", "")
	app, scratchDir := newTestApp(t, []string{src}, nil)
	app.editor = NewProcessEditor(os.Args[0], nil)

	_, err := app.Execute()
	var exitErr *EditorExitError
	if !errors.As(err, &exitErr) || exitErr.Status != -1 {
		t.Fatalf("got %v, want a terminated editor", err)
	}
	if !errors.Is(err, ErrEditorExitNonZero) {
		t.Fatalf("got %v, want ErrEditorExitNonZero", err)
	}
	assertContent(t, src, "S")
	assertNoScratch(t, scratchDir)
}

func TestAppCommitFailureRestores(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	blocker := filepath.Join(dir, "nonexistent")
	writeFile(t, a, "A")
	writeFile(t, b, "B")
	writeFile(t, blocker, "")

	app, scratchDir := newTestApp(t, []string{a, b}, saveLines(filepath.Join(dir, "a2"), filepath.Join(blocker, "dir", "b")))
	summary, err := app.Execute()
	if !errors.Is(err, ErrRenameFailed) || errors.Is(err, ErrRollbackPartial) {
		t.Fatalf("got %v, want a fully rolled back rename failure", err)
	}
	if len(summary.Failed) != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	assertContent(t, a, "A")
	assertContent(t, b, "B")
	assertMissing(t, filepath.Join(dir, "a2"))
	assertNoScratch(t, dir)
	assertNoScratch(t, scratchDir)
}

func TestAppDryRun(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	writeFile(t, a, "A")
	writeFile(t, b, "B")

	app, scratchDir := newTestApp(t, []string{a, b}, saveLines(b, a, "extra"))
	app.cfg.DryRun = true
	if _, err := app.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	assertContent(t, a, "A")
	assertContent(t, b, "B")
	assertNoScratch(t, dir)
	assertNoScratch(t, scratchDir)

	var doc planDocument
	if err := yaml.Unmarshal(app.out.(*bytes.Buffer).Bytes(), &doc); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if len(doc.Renames) != 2 || doc.Renames[0] != (Pair{a, b}) || len(doc.Extra) != 1 {
		t.Fatalf("unexpected plan %+v", doc)
	}
}

func TestAppRecoversFromPanic(t *testing.T) {
	app, scratchDir := newTestApp(t, []string{"whatever"}, editorFunc(func(string) error {
		panic("boom")
	}))

	_, err := app.Execute()
	var detailed *DetailedError
	if !errors.As(err, &detailed) || len(detailed.Stack) == 0 {
		t.Fatalf("got %v, want DetailedError", err)
	}
	assertNoScratch(t, scratchDir)
}

func TestAppNoInputs(t *testing.T) {
	called := false
	app, _ := newTestApp(t, nil, editorFunc(func(string) error {
		called = true
		return nil
	}))
	if _, err := app.Execute(); err != nil || called {
		t.Fatalf("no inputs must do nothing (err=%v, editor called=%v)", err, called)
	}
}

func TestNewAppValidates(t *testing.T) {
	tests := []Config{
		{Editor: "", Inputs: []string{"a"}, ScratchDir: "/tmp"},
		{Editor: "vi", Inputs: []string{"a", ""}, ScratchDir: "/tmp"},
		{Editor: "vi", Inputs: []string{"a\nb"}, ScratchDir: "/tmp"},
		{Editor: "vi", Inputs: []string{"a"}, ScratchDir: ""},
	}
	for _, cfg := range tests {
		if _, err := NewApp(&cfg, nil); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("config %+v: got %v, want ErrInvalidInput", cfg, err)
		}
	}
}
