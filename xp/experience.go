package xp

import (
	"sync"

	"cyberxp/logx"
	"cyberxp/model"
)

// Experience accumulates everything an agent has learned while pursuing one
// goal: completed episodes, the best of them, every failed transition, and
// the state-action value table a Q-learning agent reads and writes.
type Experience struct {
	mu sync.RWMutex

	Model string
	Goal  string
	Role  string
	Agent string

	Level ExperienceLevel

	// SystemFailureIgnored is a flag carried with the experience and saved
	// and loaded with it. Nothing in this module reads it: a state the
	// role classifies as failed ends the episode whatever its value.
	SystemFailureIgnored bool

	// DiscountingConstant, when negative (the default), is computed on
	// demand from the role's in-progress/succeeded rewards rather than used
	// directly; see ComputeDiscountingOrGainConstant.
	DiscountingConstant float64

	Episodes         []*Episode
	BestEpisodes     []*Episode
	BestEpisode      *Episode
	FailedTransitions []model.Transition

	stateActionValues map[model.StateActionRef]float64
}

// NewExperience builds an empty experience for the given model/goal/role/
// agent identifiers, with auto-computed discounting (negative constant).
func NewExperience(modelName, goal, role, agent string) *Experience {
	return &Experience{
		Model:               modelName,
		Goal:                goal,
		Role:                role,
		Agent:               agent,
		Level:               None,
		DiscountingConstant: -1.0,
		stateActionValues:   map[model.StateActionRef]float64{},
	}
}

// Valid reports whether at least one episode has been completed.
func (x *Experience) Valid() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.Episodes) > 0
}

// Clear resets the experience to an empty state, keeping its identifiers.
func (x *Experience) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.Episodes = nil
	x.BestEpisodes = nil
	x.BestEpisode = nil
	x.FailedTransitions = nil
	x.stateActionValues = map[model.StateActionRef]float64{}
}

// CheckDuplicateEpisode reports whether an episode equal to episode (same
// initial state and transition sequence) is already stored, bumping its
// RepetitionsCount if so.
func (x *Experience) CheckDuplicateEpisode(episode *Episode) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, e := range x.Episodes {
		if e.Equal(episode) {
			e.RepetitionsCount++
			return true
		}
	}
	return false
}

// StoreEpisode stores episode, updating FailedTransitions if it failed and
// BestEpisode/BestEpisodes if it is a new (or tying) best success. Returns
// false without storing if checkDuplicate is true and an equal episode was
// already recorded.
func (x *Experience) StoreEpisode(episode *Episode, checkDuplicate bool) bool {
	if checkDuplicate && x.CheckDuplicateEpisode(episode) {
		return false
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.Episodes = append(x.Episodes, episode)

	if episode.Failed() && len(episode.Transitions) > 0 {
		x.FailedTransitions = append(x.FailedTransitions, episode.Transitions[len(episode.Transitions)-1])
	}

	if episode.Succeeded() {
		switch {
		case x.BestEpisode == nil || episode.Performance > x.BestEpisode.Performance:
			x.BestEpisode = episode
			x.BestEpisodes = []*Episode{episode}
		case episode.Performance == x.BestEpisode.Performance:
			x.BestEpisodes = append(x.BestEpisodes, episode)
		}
	}

	return true
}

// OptimizeForAssistance discards the raw episode log, keeping only the best
// episodes, failed transitions and the value table - bounding memory once an
// experience no longer needs its full history to keep learning (supplemented
// from DigitalAssistant.cpp: applied once an assistant is trusted enough to
// assist rather than train).
func (x *Experience) OptimizeForAssistance() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.Episodes = nil
}

func (x *Experience) StateActionValueDefined(ref model.StateActionRef) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.stateActionValues[ref]
	return ok
}

func (x *Experience) GetStateActionValue(ref model.StateActionRef) float64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.stateActionValues[ref]
}

func (x *Experience) SetStateActionValue(ref model.StateActionRef, value float64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.stateActionValues == nil {
		x.stateActionValues = map[model.StateActionRef]float64{}
	}
	x.stateActionValues[ref] = value
}

// StateActionValues returns a copy of the full value table.
func (x *Experience) StateActionValues() map[model.StateActionRef]float64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make(map[model.StateActionRef]float64, len(x.stateActionValues))
	for k, v := range x.stateActionValues {
		out[k] = v
	}
	return out
}

func (x *Experience) ClearStateActionValues() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.stateActionValues = map[model.StateActionRef]float64{}
}

// EffectiveDiscountingConstant returns DiscountingConstant if it has been
// pinned to a non-negative value, otherwise computes it from the role's
// in-progress and succeeded result rewards.
func (x *Experience) EffectiveDiscountingConstant(role *Role) float64 {
	x.mu.RLock()
	pinned := x.DiscountingConstant
	x.mu.RUnlock()

	if pinned >= 0 {
		return pinned
	}
	stepReward, stepDefined := role.Reward.ResultReward[InProgress]
	episodeReward, episodeDefined := role.Reward.ResultReward[Succeeded]
	if !stepDefined || !episodeDefined {
		logx.Verbose("experience %s/%s: no in-progress/succeeded reward defined, using gain 1.0", x.Model, x.Goal)
		return 1.0
	}
	return ComputeDiscountingOrGainConstant(stepReward, episodeReward)
}
