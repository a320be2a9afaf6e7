package xp

import (
	"strconv"
	"sync"

	"cyberxp/logx"
	"cyberxp/model"
)

// Role evaluates environment states against a set of success, failure and
// deadlock conditions and turns the result into a reward, memoizing the
// outcome per interned state.
//
// Evaluation order is strict and intentional (see EvaluateStateConditions):
// failure first, success second and deadlock third, each checked only if
// that condition is actually defined - otherwise an undecided state is
// simply in progress.
type Role struct {
	mu sync.RWMutex

	Name      string
	ModelName string

	SuccessCondition  *model.Condition
	FailureCondition  *model.Condition
	DeadlockCondition *model.Condition

	Reward StateRewardRules

	stateInfo map[*model.EnvironmentState]EnvironmentStateInfo
}

// NewRole builds an empty role with no conditions and the default reward
// rules; conditions and rewards are set with SetSuccessCondition etc.
func NewRole(name, modelName string) *Role {
	return &Role{
		Name:              name,
		ModelName:         modelName,
		SuccessCondition:  &model.Condition{},
		FailureCondition:  &model.Condition{},
		DeadlockCondition: &model.Condition{},
		Reward:            DefaultStateRewardRules(),
		stateInfo:         map[*model.EnvironmentState]EnvironmentStateInfo{},
	}
}

// SetSuccessCondition replaces the success condition and clears the cache,
// since previously computed results no longer reflect the role's rules.
func (r *Role) SetSuccessCondition(cond *model.Condition) {
	r.SuccessCondition = cond
	r.Clear()
}

// AddSuccessCondition folds cond into the existing success condition with
// AND if one is already defined, else installs it outright.
func (r *Role) AddSuccessCondition(cond *model.Condition) {
	if !r.SuccessCondition.Defined() {
		r.SuccessCondition = cond
	} else {
		r.SuccessCondition.AddCondition(model.And, cond)
	}
	r.Clear()
}

func (r *Role) SetFailureCondition(cond *model.Condition) {
	r.FailureCondition = cond
	r.Clear()
}

// AddFailureCondition folds cond into the existing failure condition with OR
// (any additional failure condition is one more way to fail).
func (r *Role) AddFailureCondition(cond *model.Condition) {
	if !r.FailureCondition.Defined() {
		r.FailureCondition = cond
	} else {
		r.FailureCondition.AddCondition(model.Or, cond)
	}
	r.Clear()
}

func (r *Role) SetDeadlockCondition(cond *model.Condition) {
	r.DeadlockCondition = cond
	r.Clear()
}

// AddDeadlockCondition folds cond into the existing deadlock condition with
// OR, mirroring AddFailureCondition.
func (r *Role) AddDeadlockCondition(cond *model.Condition) {
	if !r.DeadlockCondition.Defined() {
		r.DeadlockCondition = cond
	} else {
		r.DeadlockCondition.AddCondition(model.Or, cond)
	}
	r.Clear()
}

func (r *Role) SetStateReward(reward StateRewardRules) {
	r.Reward = reward
	r.Clear()
}

// Clear drops every memoized state evaluation. Called whenever a condition
// or the reward rules change, since cached results were computed under the
// old rules.
func (r *Role) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stateInfo = map[*model.EnvironmentState]EnvironmentStateInfo{}
}

// GetStateInfo returns the cached evaluation of state if one exists and the
// reward rules carry no feature-based term; otherwise it recomputes.
//
// The feature-rewards gate is ported verbatim from RoleInfo::GetStateInfo:
// feature values can change the meaning of an otherwise-identical interned
// state over time in ways the cache key (a bare state pointer) can't see, so
// any role with feature rewards always recomputes rather than trusting the
// cache. Rewards driven purely by entity/cumulative conditions are safe to
// cache, since those are fully determined by the interned state itself.
func (r *Role) GetStateInfo(state *model.EnvironmentState) EnvironmentStateInfo {
	r.mu.RLock()
	cached, ok := r.stateInfo[state]
	hasFeatureRewards := len(r.Reward.FeatureRewards) > 0
	r.mu.RUnlock()

	if !ok || hasFeatureRewards {
		return r.computeStateInfo(state)
	}
	return cached
}

// OverrideStateInfo forces the cached evaluation of state to stateInfo.
func (r *Role) OverrideStateInfo(state *model.EnvironmentState, stateInfo EnvironmentStateInfo) EnvironmentStateInfo {
	if state == nil {
		logx.Error("role %s: cannot update info for a nil state", r.Name)
		return stateInfo
	}
	r.mu.Lock()
	r.stateInfo[state] = stateInfo
	r.mu.Unlock()
	return stateInfo
}

// OverrideStateResult forces the cached result of state, recomputing its
// reward under the new result.
func (r *Role) OverrideStateResult(state *model.EnvironmentState, result ActionResult) EnvironmentStateInfo {
	if state == nil {
		logx.Error("role %s: cannot override result for a nil state", r.Name)
		return EnvironmentStateInfo{}
	}
	r.GetStateInfo(state)

	r.mu.Lock()
	info := r.stateInfo[state]
	info.Result = result
	r.computeStateReward(state, &info)
	r.stateInfo[state] = info
	r.mu.Unlock()
	return info
}

// OverrideStateReward forces the cached reward of state.
func (r *Role) OverrideStateReward(state *model.EnvironmentState, reward int) EnvironmentStateInfo {
	if state == nil {
		logx.Error("role %s: cannot override reward for a nil state", r.Name)
		return EnvironmentStateInfo{}
	}
	r.GetStateInfo(state)

	r.mu.Lock()
	info := r.stateInfo[state]
	info.Reward = reward
	r.stateInfo[state] = info
	r.mu.Unlock()
	return info
}

func (r *Role) computeStateInfo(state *model.EnvironmentState) EnvironmentStateInfo {
	info := EnvironmentStateInfo{Result: r.EvaluateStateConditions(state)}
	r.computeStateReward(state, &info)

	r.mu.Lock()
	r.stateInfo[state] = info
	r.mu.Unlock()
	return info
}

// EvaluateStateConditions classifies state: failure first, success second,
// deadlock third, each only if that condition is actually defined (an empty
// condition evaluates vacuously true), else in-progress. This precedence
// (and the only-if-defined guards) is load-bearing and must not be reordered.
func (r *Role) EvaluateStateConditions(state *model.EnvironmentState) ActionResult {
	if r.FailureCondition.Defined() && r.FailureCondition.Evaluate(state) {
		return Failed
	}
	if r.SuccessCondition.Defined() && r.SuccessCondition.Evaluate(state) {
		return Succeeded
	}
	if r.DeadlockCondition.Defined() && r.DeadlockCondition.Evaluate(state) {
		return Deadlock
	}
	return InProgress
}

// computeStateReward composes info.Reward: zero base, then the result reward
// for a terminal classification (InProgress stays at zero here; it is only
// consumed elsewhere for performance discounting), then (unless the result
// is Failed, which returns immediately with no further decomposition) the
// sum of cumulative per-type property rewards, entity-condition rewards and
// feature rewards.
func (r *Role) computeStateReward(state *model.EnvironmentState, info *EnvironmentStateInfo) {
	info.Reward = 0

	if info.Result != InProgress {
		if reward, ok := r.Reward.ResultReward[info.Result]; ok {
			info.Reward = reward
		}
	}

	if info.Result == Failed {
		return
	}

	entityConditionReward := 0
	for _, item := range r.Reward.EntityConditionRewards {
		if item.Condition.Evaluate(state) {
			entityConditionReward += item.Reward
		}
	}

	featureReward := 0
	for _, item := range r.Reward.FeatureRewards {
		if !item.Condition.Evaluate(state) {
			continue
		}
		reward := item.Reward
		if item.Condition.Op == model.Defined {
			feature := state.GetFeature(item.Condition.FeatureName)
			if feature != "" {
				if featVal, err := strconv.Atoi(feature); err == nil {
					reward *= featVal
				}
			}
		}
		featureReward += reward
	}

	cumulativeReward := 0
	for _, entity := range state.EntityStates() {
		for _, item := range r.Reward.CumulativeRewards {
			if entity.IsOfType(item.TypeName) && item.Filter.Evaluate(entity) {
				cumulativeReward += item.Reward
			}
		}
	}

	info.Reward += cumulativeReward + entityConditionReward + featureReward
}
