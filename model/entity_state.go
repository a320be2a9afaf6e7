package model

// RelationshipLink points to a related entity and the named link of that
// entity the relationship is attached to.
type RelationshipLink struct {
	EntityID string
	LinkID   string
}

// EntityState holds the properties and relationships of one entity inside an
// EnvironmentState. Entity states are built through Registry.NewEntityState
// so that declared type defaults are always seeded; a zero-value EntityState
// (no type name) is deliberately invalid and should not be stored.
type EntityState struct {
	typeName      string
	modelName     string
	properties    map[string]string
	relationships map[string]RelationshipLink
}

func newEntityState(modelName, typeName string, seedDefaults map[string]string) *EntityState {
	e := &EntityState{
		typeName:      typeName,
		modelName:     modelName,
		properties:    map[string]string{},
		relationships: map[string]RelationshipLink{},
	}
	for k, v := range seedDefaults {
		e.properties[k] = v
	}
	return e
}

func (e *EntityState) TypeName() string  { return e.typeName }
func (e *EntityState) ModelName() string { return e.modelName }

// IsOfType reports whether this entity's declared type name matches
// typeName. It does not walk a type's inheritance chain (EntityState only
// carries a flat type name, not a pointer to its EntityStateType); callers
// that need inheritance-aware matching should resolve the type through a
// Registry first.
func (e *EntityState) IsOfType(typeName string) bool {
	if typeName == "" {
		return e.typeName == ""
	}
	return e.typeName == typeName
}

// PropertyValues returns a copy of this entity's property values.
func (e *EntityState) PropertyValues() map[string]string {
	out := make(map[string]string, len(e.properties))
	for k, v := range e.properties {
		out[k] = v
	}
	return out
}

func (e *EntityState) SetProperty(name, value string) {
	e.properties[name] = value
}

func (e *EntityState) GetProperty(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

func (e *EntityState) HasProperty(name string) bool {
	_, ok := e.properties[name]
	return ok
}

func (e *EntityState) HasPropertySet(name, value string) bool {
	v, ok := e.properties[name]
	return ok && v == value
}

func (e *EntityState) ClearProperties() {
	e.properties = map[string]string{}
}

// Relationships returns a copy of this entity's relationship links, keyed by
// the local link name.
func (e *EntityState) Relationships() map[string]RelationshipLink {
	out := make(map[string]RelationshipLink, len(e.relationships))
	for k, v := range e.relationships {
		out[k] = v
	}
	return out
}

func (e *EntityState) SetRelationship(linkID string, link RelationshipLink) {
	e.relationships[linkID] = link
}

func (e *EntityState) GetRelationship(linkID string) (RelationshipLink, bool) {
	v, ok := e.relationships[linkID]
	return v, ok
}

func (e *EntityState) RemoveRelationship(linkID string) {
	delete(e.relationships, linkID)
}

func (e *EntityState) ClearRelationships() {
	e.relationships = map[string]RelationshipLink{}
}

// Equal compares properties and relationships only; type/model identity is
// implied by property/relationship shape and is not itself part of equality,
// matching EntityState::operator== in the original.
func (e *EntityState) Equal(other *EntityState) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil {
		return false
	}
	if len(e.properties) != len(other.properties) || len(e.relationships) != len(other.relationships) {
		return false
	}
	for k, v := range e.properties {
		if ov, ok := other.properties[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range e.relationships {
		if ov, ok := other.relationships[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Clone returns a deep, independent copy of this entity state.
func (e *EntityState) Clone() *EntityState {
	c := &EntityState{
		typeName:      e.typeName,
		modelName:     e.modelName,
		properties:    make(map[string]string, len(e.properties)),
		relationships: make(map[string]RelationshipLink, len(e.relationships)),
	}
	for k, v := range e.properties {
		c.properties[k] = v
	}
	for k, v := range e.relationships {
		c.relationships[k] = v
	}
	return c
}
