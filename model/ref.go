package model

// StateActionRef pairs an interned state with an interned action taken from
// it. Both fields are pointers from a Registry's interning tables, so two
// StateActionRef values are equal (and hash the same as a map key) exactly
// when they refer to the same interned state and action, which is what lets
// this type back the Q-learning value table directly.
type StateActionRef struct {
	State  *EnvironmentState
	Action *Action
}

// Transition records one step of an episode: the interned state it started
// from, the interned action taken, and the interned state it ended in.
type Transition struct {
	StartState  *EnvironmentState
	ActionTaken *Action
	EndState    *EnvironmentState
}

// Equal compares transitions by the identity of their interned fields.
func (t Transition) Equal(other Transition) bool {
	return t.StartState == other.StartState &&
		t.ActionTaken == other.ActionTaken &&
		t.EndState == other.EndState
}
