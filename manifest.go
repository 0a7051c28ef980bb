package edmv

import (
	"bytes"
	"fmt"
	"os"
)

const lineBreak = '\n'

// EncodeManifest writes every path on its own line, each one terminated by a
// line feed. Paths are copied verbatim.
func EncodeManifest(paths []string) []byte {
	var b bytes.Buffer
	for _, p := range paths {
		b.WriteString(p)
		b.WriteByte(lineBreak)
	}
	return b.Bytes()
}

// DecodeManifest splits an edited manifest back into paths. The empty
// element after the final line feed is dropped and a single trailing CR is
// stripped from each line; nothing else is trimmed.
func DecodeManifest(data []byte) []string {
	if len(data) == 0 {
		return []string{}
	}
	lines := bytes.Split(data, []byte{lineBreak})
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}

	paths := make([]string, len(lines))
	for i, l := range lines {
		paths[i] = string(bytes.TrimSuffix(l, []byte{'\r'}))
	}
	return paths
}

// WriteManifest replaces the content of an existing scratch file without
// changing its mode.
func WriteManifest(path string, paths []string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScratchIO, err)
	}
	if _, err := f.Write(EncodeManifest(paths)); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %q: %w", ErrScratchIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %q: %w", ErrScratchIO, path, err)
	}
	return nil
}

func ReadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestRead, err)
	}
	return DecodeManifest(data), nil
}
