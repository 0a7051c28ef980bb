package edmv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/gcfg"
)

const configFileName = "config"

// Config is everything the rename pipeline needs from the outside world.
type Config struct {
	Editor     string
	Inputs     []string
	ScratchDir string
	Remote     bool
	DryRun     bool
}

// FileConfig mirrors the user configuration file:
//
//	[Main]
//	editor = nvim
//	remote = true
type FileConfig struct {
	Main struct {
		Editor string
		Remote bool
	}
}

// DefaultConfigPath is <user config dir>/edmv/config, or "" when the
// platform has no such directory.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, programTag, configFileName)
}

// LoadFileConfig reads path. A missing file yields an empty config and no
// error; unknown sections and keys are ignored.
func LoadFileConfig(path string) (*FileConfig, error) {
	fc := &FileConfig{}
	if path == "" {
		return fc, nil
	}
	if err := gcfg.FatalOnly(gcfg.ReadFileInto(fc, path)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &FileConfig{}, nil
		}
		return &FileConfig{}, fmt.Errorf("config %q: %w", path, err)
	}
	return fc, nil
}

// ResolveEditor picks the editor in order of precedence: the command line,
// the config file, $VISUAL, $EDITOR.
func ResolveEditor(flag string, fc *FileConfig) (string, error) {
	candidates := []string{flag}
	if fc != nil {
		candidates = append(candidates, fc.Main.Editor)
	}
	candidates = append(candidates, os.Getenv("VISUAL"), os.Getenv("EDITOR"))

	for _, c := range candidates {
		if c != "" {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: no editor set; use --editor, the config file, $VISUAL or $EDITOR", ErrInvalidInput)
}

// ResolveScratchDir returns the first of $TMPDIR, $TMP, $TEMP and $TEMPDIR
// that is set, or the system default.
func ResolveScratchDir() string {
	for _, env := range []string{"TMPDIR", "TMP", "TEMP", "TEMPDIR"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return os.TempDir()
}

func (c *Config) Validate() error {
	if c.Editor == "" && !c.Remote {
		return fmt.Errorf("%w: editor is empty", ErrInvalidInput)
	}
	if c.ScratchDir == "" {
		return fmt.Errorf("%w: temporary directory is empty", ErrInvalidInput)
	}
	for i, p := range c.Inputs {
		if p == "" {
			return fmt.Errorf("%w: input %d is empty", ErrInvalidInput, i+1)
		}
		if strings.IndexByte(p, lineBreak) >= 0 {
			return fmt.Errorf("%w: input %q contains a line break", ErrInvalidInput, p)
		}
	}
	return nil
}
