// Package agent implements a tabular Q-learning agent: epsilon-greedy action
// selection with branching-factor-modulated epsilon decay, and the
// reverse-order back-up learning rule used to propagate a terminal reward
// through an entire episode.
package agent

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"cyberxp/agent/atomicfloat"
	"cyberxp/model"
)

// Agent is the interface a training loop drives: choose an action from a
// state given the actions actually available there, then learn from the
// transition (and reward) that resulted.
type Agent interface {
	ChooseAction(state *model.EnvironmentState, possibleActions []*model.Action) (*model.Action, error)
	QLearn(state *model.EnvironmentState, action *model.Action, reward int, nextState *model.EnvironmentState, nextPossibleActions []*model.Action)
	BackUp(transitions []model.Transition, rewards []int, nextPossibleActions [][]*model.Action)
	Value(state *model.EnvironmentState, action *model.Action) (float64, bool)
	VisitCount(state *model.EnvironmentState) int
	Config() Config
}

type valueEntry struct {
	value  float64
	visits int64
}

// QAgent is the default tabular Q-learning Agent implementation.
type QAgent struct {
	mu     sync.RWMutex
	cfg    Config
	table  map[model.StateActionRef]*valueEntry
	visits map[*model.EnvironmentState]int64
	rng    *rand.Rand
}

// NewQAgent builds a Q-learning agent with the given configuration (clamped
// via Config.CheckParameters).
func NewQAgent(cfg Config) *QAgent {
	cfg.CheckParameters()
	return &QAgent{
		cfg:    cfg,
		table:  map[model.StateActionRef]*valueEntry{},
		visits: map[*model.EnvironmentState]int64{},
		rng:    rand.New(rand.NewSource(1)),
	}
}

func (a *QAgent) Config() Config { return a.cfg }

func (a *QAgent) entry(ref model.StateActionRef) *valueEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.table[ref]
	if !ok {
		e = &valueEntry{value: a.cfg.InitialValue}
		a.table[ref] = e
	}
	return e
}

// LoadValues seeds the table from persisted state-action values, for
// resuming inference or training from a saved experience bundle. Visit
// counts are left at zero; only the learned value is restored.
func (a *QAgent) LoadValues(values map[model.StateActionRef]float64) {
	for ref, v := range values {
		e := a.entry(ref)
		atomicfloat.Set(&e.value, v)
	}
}

// Value returns the known value of (state, action), or (InitialValue,
// false) if it has never been visited.
func (a *QAgent) Value(state *model.EnvironmentState, action *model.Action) (float64, bool) {
	ref := model.StateActionRef{State: state, Action: action}
	a.mu.RLock()
	e, ok := a.table[ref]
	a.mu.RUnlock()
	if !ok {
		return a.cfg.InitialValue, false
	}
	return atomicfloat.Read(&e.value), true
}

// VisitCount returns how many times ChooseAction has returned an action from
// state.
func (a *QAgent) VisitCount(state *model.EnvironmentState) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return int(a.visits[state])
}

func (a *QAgent) maxValue(state *model.EnvironmentState, actions []*model.Action) float64 {
	if len(actions) == 0 {
		return a.cfg.InitialValue
	}
	best := math.Inf(-1)
	any := false
	for _, act := range actions {
		v, ok := a.Value(state, act)
		if !ok {
			v = a.cfg.InitialValue
		}
		if !any || v > best {
			best = v
			any = true
		}
	}
	if !any {
		return a.cfg.InitialValue
	}
	return best
}

// ChooseAction picks an action from possibleActions using epsilon-greedy
// selection, with epsilon decayed by how many more times state has been
// visited than it has possible actions (its branching factor): the more a
// state is over-explored relative to how many choices it actually offers,
// the less random exploration it still needs.
//
// An action never valued yet is treated as holding InitialValue, same as
// maxValue does - so with an optimistic InitialValue, unseen actions stay in
// the running for the greedy pick instead of being skipped outright, which
// is what actually drives exploration in that regime.
func (a *QAgent) ChooseAction(state *model.EnvironmentState, possibleActions []*model.Action) (*model.Action, error) {
	if len(possibleActions) == 0 {
		return nil, nil
	}

	a.mu.Lock()
	a.visits[state]++
	visits := a.visits[state]
	a.mu.Unlock()

	epsilon := a.cfg.Epsilon
	if a.cfg.EpsilonReduction > 0 && a.cfg.EpsilonReduction != 1.0 {
		overVisits := visits - int64(len(possibleActions))
		if overVisits < 0 {
			overVisits = 0
		}
		epsilon *= math.Pow(a.cfg.EpsilonReduction, float64(overVisits))
	}

	if a.rng.Float64() < epsilon {
		return possibleActions[a.rng.Intn(len(possibleActions))], nil
	}

	best := possibleActions[0]
	bestValue := math.Inf(-1)
	for _, act := range possibleActions {
		v, ok := a.Value(state, act)
		if !ok {
			v = a.cfg.InitialValue
		}
		if v > bestValue {
			bestValue = v
			best = act
		}
	}
	return best, nil
}

// QLearn applies the one-step Q-learning update to (state, action):
//
//	new = old + alpha * (reward + gamma * max_a' value(nextState, a') - old)
//
// alpha is either the fixed step size or, with SampleAverage, 1/(1+visits)
// where visits counts the pair's updates before this one.
func (a *QAgent) QLearn(state *model.EnvironmentState, action *model.Action, reward int, nextState *model.EnvironmentState, nextPossibleActions []*model.Action) {
	ref := model.StateActionRef{State: state, Action: action}
	e := a.entry(ref)

	target := float64(reward) + a.cfg.DiscountRate*a.maxValue(nextState, nextPossibleActions)

	old := atomicfloat.Read(&e.value)
	visits := atomic.AddInt64(&e.visits, 1)

	alpha := a.cfg.FixedStepSize
	if a.cfg.SampleAverage {
		alpha = 1.0 / float64(visits)
	}

	atomicfloat.Set(&e.value, old+alpha*(target-old))
}

// BackUp learns from a completed episode: QLearn is applied to the last
// transition and then re-applied to every prior transition in reverse
// order, so the terminal reward propagates backward
// through the whole trajectory in one pass.
func (a *QAgent) BackUp(transitions []model.Transition, rewards []int, nextPossibleActions [][]*model.Action) {
	n := len(transitions)
	if n == 0 {
		return
	}
	last := n - 1
	a.QLearn(transitions[last].StartState, transitions[last].ActionTaken, rewards[last], transitions[last].EndState, nextPossibleActions[last])

	for i := n - 2; i >= 0; i-- {
		a.QLearn(transitions[i].StartState, transitions[i].ActionTaken, rewards[i], transitions[i].EndState, nextPossibleActions[i])
	}
}
