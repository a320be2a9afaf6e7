// Package assistant implements the episode lifecycle that turns a stream of
// transitions into stored experience: starting and discarding episodes,
// acquiring transitions (including from actions another actor took), scoring
// a completed episode's performance, and promoting an assistant's experience
// level as it succeeds more often.
package assistant

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"cyberxp/logx"
	"cyberxp/model"
	"cyberxp/xp"
	"cyberxp/xperr"
)

// Assistant drives one role through one environment model, keeping a
// separate Experience per goal and switching between them as the current
// goal changes.
type Assistant struct {
	mu sync.Mutex

	ID       string
	Registry *model.Registry

	LogEnabled bool

	currentGoal string
	goalOrder   []string
	experiences map[string]*xp.Experience
	roles       map[string]*xp.Role

	CurrentEpisode *xp.Episode
}

// NewAssistant builds an assistant with no goals defined yet; use AddNewGoal
// to register at least one before calling StartEpisode. An empty id is
// replaced with a generated uuid, so anonymous callers still get a stable
// identity to key stats and logs by.
func NewAssistant(id string, registry *model.Registry) *Assistant {
	if id == "" {
		id = uuid.New().String()
	}
	return &Assistant{
		ID:          id,
		Registry:    registry,
		experiences: map[string]*xp.Experience{},
		roles:       map[string]*xp.Role{},
	}
}

// AddNewGoal registers a goal with the role it is evaluated against,
// creating a fresh Experience for it. If this is the assistant's first goal
// it also becomes the current one.
func (a *Assistant) AddNewGoal(goal string, role *xp.Role) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.experiences[goal]; exists {
		return fmt.Errorf("goal %q: %w", goal, xperr.ErrAlreadyExists)
	}
	a.experiences[goal] = xp.NewExperience(a.Registry.Name(), goal, role.Name, a.ID)
	a.roles[goal] = role
	a.goalOrder = append(a.goalOrder, goal)
	if a.currentGoal == "" {
		a.currentGoal = goal
	}
	return nil
}

// RemoveGoal drops goal and its experience entirely.
func (a *Assistant) RemoveGoal(goal string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.experiences[goal]; !exists {
		return fmt.Errorf("goal %q: %w", goal, xperr.ErrUnknownGoal)
	}
	delete(a.experiences, goal)
	delete(a.roles, goal)
	for i, g := range a.goalOrder {
		if g == goal {
			a.goalOrder = append(a.goalOrder[:i], a.goalOrder[i+1:]...)
			break
		}
	}
	if a.currentGoal == goal {
		a.currentGoal = ""
		if len(a.goalOrder) > 0 {
			a.currentGoal = a.goalOrder[0]
		}
	}
	return nil
}

// RenameCurrentGoal renames the active goal, carrying its experience and
// role along.
func (a *Assistant) RenameCurrentGoal(newName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentGoal == "" {
		return xperr.ErrUnknownGoal
	}
	if _, exists := a.experiences[newName]; exists {
		return fmt.Errorf("goal %q: %w", newName, xperr.ErrAlreadyExists)
	}
	old := a.currentGoal
	a.experiences[newName] = a.experiences[old]
	a.experiences[newName].Goal = newName
	a.roles[newName] = a.roles[old]
	delete(a.experiences, old)
	delete(a.roles, old)
	for i, g := range a.goalOrder {
		if g == old {
			a.goalOrder[i] = newName
			break
		}
	}
	a.currentGoal = newName
	return nil
}

// SetCurrentGoal switches the active goal.
func (a *Assistant) SetCurrentGoal(goal string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.experiences[goal]; !exists {
		return fmt.Errorf("goal %q: %w", goal, xperr.ErrUnknownGoal)
	}
	a.currentGoal = goal
	return nil
}

func (a *Assistant) CurrentGoal() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentGoal
}

// GoalNames returns every registered goal, in the order they were added.
func (a *Assistant) GoalNames() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.goalOrder...)
}

// CurrentExperience returns the experience backing the current goal, or nil.
func (a *Assistant) CurrentExperience() *xp.Experience {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.experiences[a.currentGoal]
}

// CurrentRole returns the role the current goal is evaluated against, or nil.
func (a *Assistant) CurrentRole() *xp.Role {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.roles[a.currentGoal]
}

// StartEpisode begins a new episode from initialState. Any incomplete
// episode already in progress is discarded rather than resumed, at every
// experience level; when LogEnabled is set the discard is logged at debug
// level, except when the current experience level is Trainer.
func (a *Assistant) StartEpisode(initialState *model.EnvironmentState) {
	a.mu.Lock()
	defer a.mu.Unlock()

	xpr := a.experiences[a.currentGoal]
	if a.CurrentEpisode != nil && !a.CurrentEpisode.Completed() && !a.CurrentEpisode.Empty() {
		if a.LogEnabled && (xpr == nil || xpr.Level != xp.Trainer) {
			logx.Debug("assistant %s: discarding incomplete episode for goal %q", a.ID, a.currentGoal)
		}
	}

	stored := initialState
	if a.Registry != nil {
		stored = a.Registry.GetStoredState(initialState)
	}
	a.CurrentEpisode = &xp.Episode{InitialState: stored, LastState: stored, Result: xp.InProgress}
}

// AcquireTransition folds one more transition into the current episode and
// re-evaluates its end state against role to determine whether the episode
// is now complete.
//
// If t's end state already equals the episode's current last state, this is
// a no-op: SharedArena rebroadcasts every actor's transition to every other
// actor, and an actor that did not itself act must not double-count a
// transition it already observed from its own turn.
func (a *Assistant) AcquireTransition(t model.Transition, role *xp.Role) xp.EnvironmentStateInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.CurrentEpisode != nil && a.CurrentEpisode.LastState == t.EndState {
		return role.GetStateInfo(t.EndState)
	}
	if a.CurrentEpisode == nil {
		a.CurrentEpisode = &xp.Episode{InitialState: t.StartState, LastState: t.StartState, Result: xp.InProgress}
	}
	a.CurrentEpisode.AppendTransition(t)

	info := role.GetStateInfo(t.EndState)
	a.CurrentEpisode.Result = info.Result
	return info
}

// EvaluateEpisode scores the (now terminal) current episode's performance
// and checks for an experience-level promotion.
//
// Performance defaults to the terminal reward. For a successful episode of
// more than one action, if the role defines an in-progress reward the
// discounting/gain constant is applied: performance = reward * gamma^steps.
// Promotions to Trainee (first completed episode) and Assistant (first
// successful episode) are both checked, unconditionally and in sequence, so
// a first episode that is also a success can cascade through both in one
// call - this mirrors the original rather than short-circuiting with an
// if/else.
func (a *Assistant) EvaluateEpisode(terminalReward int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	episode := a.CurrentEpisode
	if episode == nil {
		return
	}
	xpr := a.experiences[a.currentGoal]
	role := a.roles[a.currentGoal]

	episode.Performance = terminalReward

	if episode.Succeeded() && len(episode.Transitions) > 1 && xpr != nil && role != nil {
		if stepReward, ok := role.Reward.ResultReward[xp.InProgress]; ok {
			gamma := xpr.EffectiveDiscountingConstant(role)
			if gamma > 0 {
				episode.Performance = int(float64(terminalReward) * ipow(gamma, len(episode.Transitions)))
			}
			_ = stepReward
		}
	}

	if xpr == nil {
		return
	}
	if xpr.Level == xp.None {
		xpr.Level = xp.Trainee
	}
	if xpr.Level == xp.Trainee && episode.Succeeded() {
		xpr.Level = xp.Assistant
	}
}

func ipow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// ProcessCurrentEpisode stores the current episode into the active
// experience, provided it is both complete and the experience is not at
// Trainer level - a trainer is pure inference and never accumulates further
// learning material.
func (a *Assistant) ProcessCurrentEpisode() {
	a.mu.Lock()
	defer a.mu.Unlock()

	episode := a.CurrentEpisode
	xpr := a.experiences[a.currentGoal]
	if episode == nil || xpr == nil || !episode.Completed() || xpr.Level == xp.Trainer {
		return
	}
	xpr.StoreEpisode(episode, true)
}
