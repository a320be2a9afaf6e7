package model

import "sort"

// EnvironmentState is a snapshot of every tracked entity's state plus a set
// of scalar features. EnvironmentStates are value-comparable: two states
// with the same entity states and features are equal regardless of where
// they came from, which is what lets Registry intern them into shared
// pointers usable as map keys.
type EnvironmentState struct {
	entityStates map[string]*EntityState
	features     map[string]string
}

// NewEnvironmentState returns an empty, uninterned environment state. Callers
// that want interning (so the result can be compared by pointer and used as
// a Transition/StateActionRef endpoint) should pass it through
// Registry.GetStoredState.
func NewEnvironmentState() *EnvironmentState {
	return &EnvironmentState{
		entityStates: map[string]*EntityState{},
		features:     map[string]string{},
	}
}

func (s *EnvironmentState) ContainsEntity(entityID string) bool {
	_, ok := s.entityStates[entityID]
	return ok
}

// EntityStates returns a copy of the entity-id to entity-state map.
func (s *EnvironmentState) EntityStates() map[string]*EntityState {
	out := make(map[string]*EntityState, len(s.entityStates))
	for k, v := range s.entityStates {
		out[k] = v
	}
	return out
}

func (s *EnvironmentState) GetEntityState(entityID string) *EntityState {
	return s.entityStates[entityID]
}

func (s *EnvironmentState) SetEntityState(entityID string, entityState *EntityState) {
	s.entityStates[entityID] = entityState
}

func (s *EnvironmentState) RemoveEntityState(entityID string) {
	delete(s.entityStates, entityID)
}

func (s *EnvironmentState) HasFeature(name string) bool {
	_, ok := s.features[name]
	return ok
}

func (s *EnvironmentState) FeatureIs(name, value string) bool {
	v, ok := s.features[name]
	return ok && v == value
}

// Features returns a copy of the feature map.
func (s *EnvironmentState) Features() map[string]string {
	out := make(map[string]string, len(s.features))
	for k, v := range s.features {
		out[k] = v
	}
	return out
}

// GetFeature returns the feature value, or "" if undefined, matching the
// original's "empty string means absent" convention.
func (s *EnvironmentState) GetFeature(name string) string {
	return s.features[name]
}

func (s *EnvironmentState) SetFeature(name, value string) {
	s.features[name] = value
}

func (s *EnvironmentState) RemoveFeature(name string) {
	delete(s.features, name)
}

func (s *EnvironmentState) Clear() {
	s.entityStates = map[string]*EntityState{}
	s.features = map[string]string{}
}

// Clone returns a deep, independent copy of this state.
func (s *EnvironmentState) Clone() *EnvironmentState {
	c := NewEnvironmentState()
	for id, e := range s.entityStates {
		c.entityStates[id] = e.Clone()
	}
	for k, v := range s.features {
		c.features[k] = v
	}
	return c
}

// Equal reports structural equality: same entity ids each with an equal
// entity state, and the same feature values.
func (s *EnvironmentState) Equal(other *EnvironmentState) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	if len(s.entityStates) != len(other.entityStates) || len(s.features) != len(other.features) {
		return false
	}
	for id, e := range s.entityStates {
		oe, ok := other.entityStates[id]
		if !ok || !e.Equal(oe) {
			return false
		}
	}
	for k, v := range s.features {
		if ov, ok := other.features[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// canonicalKey builds a stable, order-independent string for use as an
// interning map key: value equality of EnvironmentState must map to equal
// keys regardless of map iteration order, so entity ids and feature names
// are sorted before encoding.
func (s *EnvironmentState) canonicalKey() string {
	entityIDs := make([]string, 0, len(s.entityStates))
	for id := range s.entityStates {
		entityIDs = append(entityIDs, id)
	}
	sort.Strings(entityIDs)

	key := "E{"
	for _, id := range entityIDs {
		e := s.entityStates[id]
		key += id + ":["
		propNames := make([]string, 0, len(e.properties))
		for p := range e.properties {
			propNames = append(propNames, p)
		}
		sort.Strings(propNames)
		for _, p := range propNames {
			key += p + "=" + e.properties[p] + ";"
		}
		linkNames := make([]string, 0, len(e.relationships))
		for l := range e.relationships {
			linkNames = append(linkNames, l)
		}
		sort.Strings(linkNames)
		for _, l := range linkNames {
			rel := e.relationships[l]
			key += l + "->" + rel.EntityID + "#" + rel.LinkID + ";"
		}
		key += "]"
	}
	key += "}F{"

	featureNames := make([]string, 0, len(s.features))
	for f := range s.features {
		featureNames = append(featureNames, f)
	}
	sort.Strings(featureNames)
	for _, f := range featureNames {
		key += f + "=" + s.features[f] + ";"
	}
	key += "}"
	return key
}
