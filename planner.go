package edmv

import (
	"fmt"
	"path/filepath"
)

// Pairing is the positional match between the input list and the edited
// manifest.
type Pairing struct {
	Pairs     []Pair
	Unchanged []string // inputs left as they are, by identical or blank line
	Missing   []string // inputs past the last edited line
	Extra     []string // edited lines past the last input
}

// PairUp matches inputs with outputs by position. Only the first
// min(len(inputs), len(outputs)) positions are considered. A blank output
// line, or one naming the same path as its input, leaves the input alone.
func PairUp(inputs, outputs []string, resolver *PathResolver) Pairing {
	n := min(len(inputs), len(outputs))
	res := Pairing{
		Missing: append([]string(nil), inputs[n:]...),
		Extra:   append([]string(nil), outputs[n:]...),
	}

	for i := 0; i < n; i++ {
		src, dst := inputs[i], outputs[i]
		if dst == "" || src == dst || resolver.Resolve(src) == resolver.Resolve(dst) {
			res.Unchanged = append(res.Unchanged, src)
			continue
		}
		res.Pairs = append(res.Pairs, Pair{Src: src, Dst: dst})
	}
	return res
}

type PlannedPair struct {
	Pair
	Tmp string
}

// Plan is the two-phase rename of a set of pairs: every source is first moved
// to its reserved temporary path, then every temporary path is moved to its
// destination.
type Plan struct {
	Pairs []PlannedPair
}

// BuildPlan reserves one temporary file per pair next to the pair's source
// so the staging rename never crosses a filesystem boundary. On error every
// reservation made so far is removed again.
func BuildPlan(pairs []Pair, scratch *ScratchManager) (*Plan, error) {
	plan := &Plan{Pairs: make([]PlannedPair, 0, len(pairs))}
	for _, p := range pairs {
		if p.Src == "" || p.Dst == "" {
			return nil, plan.abort(scratch, fmt.Errorf("%w: empty path in pair %q -> %q", ErrInvalidInput, p.Src, p.Dst))
		}
		tmp, err := scratch.Create(filepath.Dir(p.Src))
		if err != nil {
			return nil, plan.abort(scratch, fmt.Errorf("reserve temporary name for %q: %w", p.Src, err))
		}
		plan.Pairs = append(plan.Pairs, PlannedPair{Pair: p, Tmp: tmp})
	}
	return plan, nil
}

func (p *Plan) abort(scratch *ScratchManager, err error) error {
	for i := len(p.Pairs) - 1; i >= 0; i-- {
		_ = scratch.Remove(p.Pairs[i].Tmp)
	}
	p.Pairs = nil
	return err
}

// Steps lists all stage steps followed by all commit steps, each phase in
// pair order.
func (p *Plan) Steps() []Step {
	steps := make([]Step, 0, 2*len(p.Pairs))
	for _, pp := range p.Pairs {
		steps = append(steps, Step{Phase: PhaseStage, From: pp.Src, To: pp.Tmp})
	}
	for _, pp := range p.Pairs {
		steps = append(steps, Step{Phase: PhaseCommit, From: pp.Tmp, To: pp.Dst})
	}
	return steps
}
