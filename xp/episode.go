package xp

import "cyberxp/model"

// Episode is one trajectory an assistant drove through an environment: the
// state it started in, the ordered transitions taken, and how it ended.
type Episode struct {
	InitialState *model.EnvironmentState
	Transitions  []model.Transition
	LastState    *model.EnvironmentState

	Result      ActionResult
	Performance int

	// RepetitionsCount counts how many times an equal episode (same initial
	// state and same transition sequence) has been produced; duplicates are
	// not stored again, they just bump this counter on the original.
	RepetitionsCount int
}

func (e *Episode) Succeeded() bool  { return e.Result == Succeeded }
func (e *Episode) Failed() bool     { return e.Result == Failed }
func (e *Episode) Completed() bool  { return e.Result.Terminal() }
func (e *Episode) InProgress() bool { return e.Result == InProgress }
func (e *Episode) Empty() bool      { return len(e.Transitions) == 0 }

// Equal compares episodes by initial state and transition sequence only, the
// same identity CheckDuplicateEpisode/StoreEpisode use to detect repeats.
func (e *Episode) Equal(other *Episode) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil {
		return false
	}
	if e.InitialState != other.InitialState || len(e.Transitions) != len(other.Transitions) {
		return false
	}
	for i := range e.Transitions {
		if !e.Transitions[i].Equal(other.Transitions[i]) {
			return false
		}
	}
	return true
}

// AppendTransition appends t to the episode and advances LastState.
func (e *Episode) AppendTransition(t model.Transition) {
	e.Transitions = append(e.Transitions, t)
	e.LastState = t.EndState
}
