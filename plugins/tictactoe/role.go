package tictactoe

import (
	"cyberxp/model"
	"cyberxp/xp"
)

// winCondition builds "any winning line is filled with mark", folding the
// per-line conditions together with OR. The first fold uses And rather than
// Or deliberately: Condition.Evaluate starts from an implicit true for an
// empty top-level condition, so the first related condition must AND that
// away before the rest can OR in safely.
func winCondition(mark Mark) *model.Condition {
	cond := &model.Condition{}
	for i, line := range winningLines {
		sub := &model.Condition{EntityConditions: []model.EntityCondition{{
			EntityID: EntityID,
			PropConditions: []model.PropertyCondition{
				model.NewPropertyCondition(cellProp(line[0]), string(mark)),
				model.NewPropertyCondition(cellProp(line[1]), string(mark)),
				model.NewPropertyCondition(cellProp(line[2]), string(mark)),
			},
		}}}
		op := model.Or
		if i == 0 {
			op = model.And
		}
		cond.AddCondition(op, sub)
	}
	return cond
}

// fullCondition builds "every cell is occupied", used as the deadlock
// condition: evaluated only once both win conditions have already failed to
// match, so a full board at that point can only be a draw.
func fullCondition() *model.Condition {
	conds := make([]model.PropertyCondition, 9)
	for i := 0; i < 9; i++ {
		conds[i] = model.PropertyCondition{
			PropertyName:  cellProp(i + 1),
			PropertyValue: string(Empty),
			Op:            model.NotEqual,
		}
	}
	return &model.Condition{EntityConditions: []model.EntityCondition{{EntityID: EntityID, PropConditions: conds}}}
}

// DefaultRole builds the role a player of mark is evaluated against: success
// on completing a line with mark, failure on the opponent completing one
// first, and deadlock on a full board with neither.
func DefaultRole(modelName string, mark Mark) *xp.Role {
	opponent := O
	if mark == O {
		opponent = X
	}
	role := xp.NewRole(GoalName(mark), modelName)
	role.SetSuccessCondition(winCondition(mark))
	role.SetFailureCondition(winCondition(opponent))
	role.SetDeadlockCondition(fullCondition())
	return role
}
