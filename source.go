package edmv

import (
	"strings"

	"github.com/atotto/clipboard"
)

// SourceProvider collects the input paths: the positional arguments, or the
// lines of the clipboard when asked to.
type SourceProvider struct {
	readClipboard func() (string, error)
}

func NewSourceProvider() *SourceProvider {
	return &SourceProvider{readClipboard: clipboard.ReadAll}
}

func (sp *SourceProvider) GetInputs(args []string, fromClipboard bool) ([]string, error) {
	if !fromClipboard {
		return args, nil
	}

	c, err := sp.readClipboard()
	if err != nil {
		return nil, err
	}

	inputs := append([]string(nil), args...)
	for _, line := range DecodeManifest([]byte(c)) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		inputs = append(inputs, line)
	}
	return inputs, nil
}
