package gridworld

import (
	"cyberxp/model"
	"cyberxp/xp"
)

// GoalName is the goal gridworld's default role is registered under,
// matching the scenario used throughout the original test suite.
const GoalName = "Go to end"

// DefaultRole builds the role a pawn is evaluated against: success on
// reaching the finish cell, failure on a trap, and a small bonus for
// passing through a bonus cell on top of the role's usual per-step,
// success and failure rewards.
func DefaultRole(modelName string) *xp.Role {
	role := xp.NewRole(GoalName, modelName)
	role.SetSuccessCondition(&model.Condition{
		EntityConditions: []model.EntityCondition{{
			EntityID:       EntityID,
			PropConditions: []model.PropertyCondition{model.NewPropertyCondition(propCell, Finish.name())},
		}},
	})
	role.SetFailureCondition(&model.Condition{
		EntityConditions: []model.EntityCondition{{
			EntityID:       EntityID,
			PropConditions: []model.PropertyCondition{model.NewPropertyCondition(propCell, Trap.name())},
		}},
	})
	reward := xp.DefaultStateRewardRules()
	reward.EntityConditionRewards = []xp.EntityConditionReward{{
		Condition: model.EntityCondition{
			EntityID:       EntityID,
			PropConditions: []model.PropertyCondition{model.NewPropertyCondition(propCell, Bonus.name())},
		},
		Reward: 5,
	}}
	role.SetStateReward(reward)
	return role
}
