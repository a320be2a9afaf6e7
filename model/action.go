package model

import "strings"

// Action is a cyber-system action identified by a type id and an ordered
// list of string parameters. Actions are compared, encoded and interned only
// by their definition; whether an action succeeded or failed is a property
// of the Transition it produced, not of the Action itself.
type Action struct {
	TypeID string
	Params []string
}

// NewAction builds an action from a type id and parameters.
func NewAction(typeID string, params ...string) *Action {
	return &Action{TypeID: typeID, Params: append([]string(nil), params...)}
}

// Defined reports whether this action has a type id.
func (a *Action) Defined() bool {
	return a != nil && a.TypeID != ""
}

// Encode produces the canonical "type|param1|param2|..." string used both to
// intern actions and to persist/compare them as text.
func (a *Action) Encode() string {
	if a == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(a.TypeID)
	for _, p := range a.Params {
		b.WriteByte('|')
		b.WriteString(p)
	}
	return b.String()
}

// Equal compares type id and parameters.
func (a *Action) Equal(other *Action) bool {
	if a == other {
		return true
	}
	if a == nil || other == nil {
		return false
	}
	if a.TypeID != other.TypeID || len(a.Params) != len(other.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != other.Params[i] {
			return false
		}
	}
	return true
}
