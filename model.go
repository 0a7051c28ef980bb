package edmv

// Pair is one line of the manifest: the path given on input and the path the
// user saved at the same position.
type Pair struct {
	Src string `yaml:"from"`
	Dst string `yaml:"to"`
}

type Phase int

const (
	PhaseStage Phase = iota
	PhaseCommit
)

func (p Phase) String() string {
	switch p {
	case PhaseStage:
		return "stage"
	case PhaseCommit:
		return "commit"
	}
	return "unknown"
}

// Step is a single rename of a plan.
type Step struct {
	Phase Phase
	From  string
	To    string
}

type Summary struct {
	Renamed   []string
	Unchanged []string
	Ignored   []string
	Failed    []string
	Message   string
}
