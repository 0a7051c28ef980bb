package edmv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	programTag        = "edmv"
	scratchTimeLayout = "20060102T150405"
	scratchMaxCount   = 1000
	scratchPerm       = 0o600
)

// ScratchManager creates private temporary files and remembers them until
// they are removed, released or handed off with Forget.
type ScratchManager struct {
	Tag string
	Now func() time.Time
	Max int

	log   *Logger
	owned map[string]struct{}
	order []string
}

func NewScratchManager(log *Logger) *ScratchManager {
	if log == nil {
		log = nopLogger()
	}
	return &ScratchManager{
		Tag:   programTag,
		Now:   time.Now,
		Max:   scratchMaxCount,
		log:   log,
		owned: make(map[string]struct{}),
	}
}

// Create makes a new empty file named <tag>-<utc time>-<NNN> in dir with
// owner-only permissions and returns its path.
func (m *ScratchManager) Create(dir string) (string, error) {
	stamp := m.Now().UTC().Format(scratchTimeLayout)

	for count := 0; count < m.Max; count++ {
		name := fmt.Sprintf("%s-%s-%03d", m.Tag, stamp, count)
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, scratchPerm)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrScratchIO, err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", fmt.Errorf("%w: %w", ErrScratchIO, err)
		}

		m.track(path)
		m.log.Debug("created temporary file %q", path)
		return path, nil
	}
	return "", fmt.Errorf("%w in directory %q after %d attempts", ErrScratchExhausted, dir, m.Max)
}

func (m *ScratchManager) track(path string) {
	m.owned[path] = struct{}{}
	m.order = append(m.order, path)
}

// Forget stops tracking path; it will not be removed by Release.
func (m *ScratchManager) Forget(path string) {
	delete(m.owned, path)
}

// Remove unlinks path. A path that is already gone is not an error.
func (m *ScratchManager) Remove(path string) error {
	m.Forget(path)
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	m.log.Warn("cannot remove temporary file %q: %v", path, err)
	return fmt.Errorf("%w: %w", ErrScratchIO, err)
}

// Release removes every tracked file, newest first, and reports the
// failures together.
func (m *ScratchManager) Release() error {
	paths := make([]string, 0, len(m.owned))
	for i := len(m.order) - 1; i >= 0; i-- {
		if _, ok := m.owned[m.order[i]]; ok {
			paths = append(paths, m.order[i])
		}
	}
	m.order = nil

	var errs []error
	for _, p := range paths {
		if err := m.Remove(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Owned reports the tracked paths in creation order.
func (m *ScratchManager) Owned() []string {
	var paths []string
	for _, p := range m.order {
		if _, ok := m.owned[p]; ok {
			paths = append(paths, p)
		}
	}
	return paths
}
