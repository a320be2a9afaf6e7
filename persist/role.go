package persist

import (
	"cyberxp/model"
	"cyberxp/xp"
)

// RewardRulesDoc is the serialized form of xp.StateRewardRules. ResultReward
// is keyed by the string form of xp.ActionResult rather than relying on
// encoding/json's int-keyed-map convention, so the document reads clearly
// without cross-referencing the ActionResult iota values.
type RewardRulesDoc struct {
	ResultReward           map[string]int               `json:"resultReward,omitempty"`
	CumulativeRewards      []xp.PropertyReward           `json:"cumulativeRewards,omitempty"`
	EntityConditionRewards []xp.EntityConditionReward     `json:"entityConditionRewards,omitempty"`
	FeatureRewards         []xp.FeatureReward             `json:"featureRewards,omitempty"`
}

// RoleDoc is the serialized form of an xp.Role. Conditions are model.Condition
// trees, which are already plain exported-field structs and so serialize
// directly with no further translation.
type RoleDoc struct {
	Name      string `json:"name"`
	ModelName string `json:"modelName"`

	SuccessCondition  *model.Condition `json:"successCondition,omitempty"`
	FailureCondition  *model.Condition `json:"failureCondition,omitempty"`
	DeadlockCondition *model.Condition `json:"deadlockCondition,omitempty"`

	Reward RewardRulesDoc `json:"reward"`
}

// ToRoleDoc captures role's conditions and reward rules.
func ToRoleDoc(role *xp.Role) RoleDoc {
	doc := RoleDoc{
		Name:              role.Name,
		ModelName:         role.ModelName,
		SuccessCondition:  role.SuccessCondition,
		FailureCondition:  role.FailureCondition,
		DeadlockCondition: role.DeadlockCondition,
		Reward: RewardRulesDoc{
			CumulativeRewards:      role.Reward.CumulativeRewards,
			EntityConditionRewards: role.Reward.EntityConditionRewards,
			FeatureRewards:         role.Reward.FeatureRewards,
		},
	}
	if len(role.Reward.ResultReward) > 0 {
		doc.Reward.ResultReward = make(map[string]int, len(role.Reward.ResultReward))
		for result, reward := range role.Reward.ResultReward {
			doc.Reward.ResultReward[result.String()] = reward
		}
	}
	return doc
}

// FromRoleDoc reconstructs the role doc described. The resulting role's
// memoized state-info cache starts empty, matching NewRole; conditions are
// re-evaluated against whatever interned states the caller presents to it.
func FromRoleDoc(doc RoleDoc) *xp.Role {
	role := xp.NewRole(doc.Name, doc.ModelName)
	role.SetSuccessCondition(orEmpty(doc.SuccessCondition))
	role.SetFailureCondition(orEmpty(doc.FailureCondition))
	role.SetDeadlockCondition(orEmpty(doc.DeadlockCondition))

	rules := xp.StateRewardRules{
		CumulativeRewards:      doc.Reward.CumulativeRewards,
		EntityConditionRewards: doc.Reward.EntityConditionRewards,
		FeatureRewards:         doc.Reward.FeatureRewards,
	}
	if len(doc.Reward.ResultReward) > 0 {
		rules.ResultReward = make(map[xp.ActionResult]int, len(doc.Reward.ResultReward))
		for result, reward := range doc.Reward.ResultReward {
			rules.ResultReward[xp.ActionResultFromString(result)] = reward
		}
	}
	role.SetStateReward(rules)
	return role
}

func orEmpty(cond *model.Condition) *model.Condition {
	if cond == nil {
		return &model.Condition{}
	}
	return cond
}
