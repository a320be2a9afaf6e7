package model

import "sync"

// Registry owns one environment model's entity-state types, its interned
// environment states, and its interned actions. All identity-sensitive
// comparisons (state equality by pointer, action equality by encoding) are
// only valid between values that came out of the same Registry.
//
// Unlike the original's EnvironmentModel::GetOrCreate static registry-of-
// registries, a Registry here is an explicit value a caller constructs and
// threads through (see DESIGN.md Open Question 3: no package-level global
// state); callers that want a named-model lookup table can keep their own
// map[string]*Registry.
type Registry struct {
	mu sync.RWMutex

	name string

	types     map[string]*EntityStateType
	typeOrder []string

	states      map[string]*EnvironmentState
	stateOrder  []*EnvironmentState
	currentState *EnvironmentState

	actions map[string]*Action
}

// NewRegistry constructs an empty, named model registry.
func NewRegistry(name string) *Registry {
	return &Registry{
		name:    name,
		types:   map[string]*EntityStateType{},
		states:  map[string]*EnvironmentState{},
		actions: map[string]*Action{},
	}
}

func (r *Registry) Name() string { return r.name }

// DefineEntityType creates (or, if typeName already exists, replaces) an
// entity state type. parentTypeName may be empty for a root type.
func (r *Registry) DefineEntityType(
	parentTypeName, typeName string,
	defaultPropertyValues map[string]string,
	possiblePropertyValues map[string][]string,
	links []string,
) *EntityStateType {
	r.mu.Lock()
	defer r.mu.Unlock()

	var parent *EntityStateType
	if parentTypeName != "" {
		parent = r.types[parentTypeName]
	}
	t := newEntityStateType(r.name, parentTypeName, typeName, defaultPropertyValues, possiblePropertyValues, links, parent)
	if _, exists := r.types[typeName]; !exists {
		r.typeOrder = append(r.typeOrder, typeName)
	}
	r.types[typeName] = t
	return t
}

// EntityStateType returns the type with the given name, or nil.
func (r *Registry) EntityStateType(typeName string) *EntityStateType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.types[typeName]
}

// EntityStateTypeNames returns type names in declaration order.
func (r *Registry) EntityStateTypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.typeOrder...)
}

// ClearEntityStateTypes drops every defined type. Existing EntityState
// values keep their type-name string but it will no longer resolve.
func (r *Registry) ClearEntityStateTypes() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = map[string]*EntityStateType{}
	r.typeOrder = nil
}

// NewEntityState builds an entity state of typeName, seeded with that type's
// effective default property values (including inherited defaults). The
// returned value is not yet interned into any EnvironmentState.
func (r *Registry) NewEntityState(typeName string) *EntityState {
	r.mu.RLock()
	t := r.types[typeName]
	r.mu.RUnlock()

	var defaults map[string]string
	if t != nil {
		defaults = t.DefaultPropertyValues()
	}
	return newEntityState(r.name, typeName, defaults)
}

// ContainsState reports whether an equal state is already interned.
func (r *Registry) ContainsState(state *EnvironmentState) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.states[state.canonicalKey()]
	return ok
}

// FindState returns the interned state equal to state, or nil.
func (r *Registry) FindState(state *EnvironmentState) *EnvironmentState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[state.canonicalKey()]
}

// GetStoredState interns state: if an equal state is already stored its
// pointer is returned, otherwise state itself is stored and returned. This
// is the canonicalization step every produced EnvironmentState must pass
// through before being used as a Transition endpoint or StateActionRef key.
func (r *Registry) GetStoredState(state *EnvironmentState) *EnvironmentState {
	key := state.canonicalKey()

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.states[key]; ok {
		return existing
	}
	r.states[key] = state
	r.stateOrder = append(r.stateOrder, state)
	return state
}

// GetStoredStateAt returns the state stored at position index, or nil if out
// of range.
func (r *Registry) GetStoredStateAt(index int) *EnvironmentState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.stateOrder) {
		return nil
	}
	return r.stateOrder[index]
}

// IndexOfState returns the storage index of state, or -1.
func (r *Registry) IndexOfState(state *EnvironmentState) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, s := range r.stateOrder {
		if s == state {
			return i
		}
	}
	return -1
}

// NumStates returns the number of interned states.
func (r *Registry) NumStates() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stateOrder)
}

// AllStates returns every interned state, in storage order.
func (r *Registry) AllStates() []*EnvironmentState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*EnvironmentState(nil), r.stateOrder...)
}

// ClearStoredStates drops every interned state. Existing pointers held by
// callers remain valid Go values but are no longer reachable from the
// registry's lookup tables.
func (r *Registry) ClearStoredStates() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = map[string]*EnvironmentState{}
	r.stateOrder = nil
	r.currentState = nil
}

// ChangeState applies stateChanges on top of originalState (entity states
// and features present in stateChanges override those of originalState) and
// interns the result.
func (r *Registry) ChangeState(originalState *EnvironmentState, stateChanges *EnvironmentState) *EnvironmentState {
	next := originalState.Clone()
	for id, e := range stateChanges.EntityStates() {
		next.SetEntityState(id, e.Clone())
	}
	for k, v := range stateChanges.Features() {
		next.SetFeature(k, v)
	}
	return r.GetStoredState(next)
}

// ChangeCurrentState applies stateChanges to the current state and makes the
// result the new current state.
func (r *Registry) ChangeCurrentState(stateChanges *EnvironmentState) *EnvironmentState {
	base := r.currentState
	if base == nil {
		base = NewEnvironmentState()
	}
	next := r.ChangeState(base, stateChanges)
	r.mu.Lock()
	r.currentState = next
	r.mu.Unlock()
	return next
}

// SetCurrentState interns and installs environmentState as the current
// state, returning the interned pointer.
func (r *Registry) SetCurrentState(environmentState *EnvironmentState) *EnvironmentState {
	stored := r.GetStoredState(environmentState)
	r.mu.Lock()
	r.currentState = stored
	r.mu.Unlock()
	return stored
}

// CurrentState returns the registry's current state, or nil if unset.
func (r *Registry) CurrentState() *EnvironmentState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentState
}

// EncodeAction interns action by its canonical encoding, returning the
// stored pointer (a pre-existing one if the same encoding was seen before).
func (r *Registry) EncodeAction(action *Action) *Action {
	enc := action.Encode()

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.actions[enc]; ok {
		return existing
	}
	r.actions[enc] = action
	return action
}

// DecodeAction parses the canonical "type|p1|p2|..." encoding, returning the
// interned action if that exact encoding was already stored, otherwise a
// freshly decoded (and then interned) one.
func (r *Registry) DecodeAction(actionString string) *Action {
	r.mu.RLock()
	existing, ok := r.actions[actionString]
	r.mu.RUnlock()
	if ok {
		return existing
	}

	typeID := actionString
	var params []string
	for i := 0; i < len(actionString); i++ {
		if actionString[i] == '|' {
			typeID = actionString[:i]
			params = splitParams(actionString[i+1:])
			break
		}
	}
	return r.EncodeAction(&Action{TypeID: typeID, Params: params})
}

func splitParams(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
