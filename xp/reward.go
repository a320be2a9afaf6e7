package xp

import "cyberxp/model"

// PropertyReward grants Reward to the state's cumulative total for each
// entity of TypeName whose properties satisfy Filter.
type PropertyReward struct {
	TypeName string
	Filter   model.PropertyCondition
	Reward   int
}

// EntityConditionReward grants Reward once if Condition holds.
type EntityConditionReward struct {
	Condition model.EntityCondition
	Reward    int
}

// FeatureReward grants Reward once if Condition holds. If Condition's
// operator is model.Defined, the reward is multiplied by the feature's
// integer value (falling back to the unmultiplied reward if the feature
// does not parse as an integer).
type FeatureReward struct {
	Condition model.FeatureCondition
	Reward    int
}

// StateRewardRules defines how a role turns an evaluated state into a
// numeric reward: a base reward keyed by the terminal/in-progress result,
// plus cumulative, entity-condition and feature reward terms summed on top
// (skipped entirely for FAILED states).
type StateRewardRules struct {
	ResultReward          map[ActionResult]int
	CumulativeRewards     []PropertyReward
	EntityConditionRewards []EntityConditionReward
	FeatureRewards         []FeatureReward
}

// DefaultStateRewardRules mirrors the original's default result-reward map:
// a per-step cost while in progress, a bonus on success, and penalties for
// failure and deadlock.
func DefaultStateRewardRules() StateRewardRules {
	return StateRewardRules{
		ResultReward: map[ActionResult]int{
			InProgress: -1,
			Succeeded:  10,
			Failed:     -10,
			Deadlock:   -5,
		},
	}
}
