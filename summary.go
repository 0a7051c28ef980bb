package edmv

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	renamedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	unchangedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	ignoredStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
)

func FormatSummary(s Summary) string {
	var b strings.Builder
	if s.Message != "" {
		b.WriteString(headerStyle.Render(s.Message) + "\n")
	}

	renderList := func(title string, style lipgloss.Style, list []string) {
		if len(list) == 0 {
			return
		}
		b.WriteString(style.Render(title) + "\n")
		for _, f := range list {
			b.WriteString(fmt.Sprintf("  %s\n", f))
		}
	}

	renderList("Renamed:", renamedStyle, s.Renamed)
	renderList("Ignored:", ignoredStyle, s.Ignored)
	renderList("Not renamed:", errorStyle, s.Failed)

	if n := len(s.Unchanged); n > 0 {
		b.WriteString(unchangedStyle.Render(fmt.Sprintf("%d unchanged", n)) + "\n")
	}
	return b.String()
}

type planDocument struct {
	Renames   []Pair   `yaml:"renames"`
	Unchanged []string `yaml:"unchanged,omitempty"`
	Missing   []string `yaml:"missing,omitempty"`
	Extra     []string `yaml:"extra,omitempty"`
}

// writePlanYAML prints what a run would rename without touching any file.
func writePlanYAML(w io.Writer, p Pairing) error {
	doc := planDocument{
		Renames:   p.Pairs,
		Unchanged: p.Unchanged,
		Missing:   p.Missing,
		Extra:     p.Extra,
	}
	if doc.Renames == nil {
		doc.Renames = []Pair{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
