package model

// EntityStateType defines the default and possible property values, and the
// declared link names, shared by every entity state of a given type. Types
// can inherit from a parent type; inherited defaults and possible values are
// overridden, not merged, by anything the child type redeclares.
//
// Use Registry.DefineEntityType to create instances; there is no exported
// constructor, matching how the original keeps entity type construction
// behind its model registry.
type EntityStateType struct {
	modelName      string
	typeName       string
	parentTypeName string

	defaultPropertyValues  map[string]string
	possiblePropertyValues map[string][]string
	links                  []string

	parent *EntityStateType
}

func newEntityStateType(
	modelName, parentTypeName, typeName string,
	defaultPropertyValues map[string]string,
	possiblePropertyValues map[string][]string,
	links []string,
	parent *EntityStateType,
) *EntityStateType {
	t := &EntityStateType{
		modelName:              modelName,
		typeName:               typeName,
		parentTypeName:         parentTypeName,
		defaultPropertyValues:  map[string]string{},
		possiblePropertyValues: map[string][]string{},
		links:                  append([]string(nil), links...),
		parent:                 parent,
	}
	for k, v := range defaultPropertyValues {
		t.defaultPropertyValues[k] = v
	}
	for k, v := range possiblePropertyValues {
		t.possiblePropertyValues[k] = append([]string(nil), v...)
	}
	return t
}

func (t *EntityStateType) ModelName() string      { return t.modelName }
func (t *EntityStateType) TypeName() string       { return t.typeName }
func (t *EntityStateType) ParentTypeName() string { return t.parentTypeName }

// DerivesFrom reports whether parentTypeName appears anywhere in this type's
// ancestor chain (not including itself).
func (t *EntityStateType) DerivesFrom(parentTypeName string) bool {
	for p := t.parent; p != nil; p = p.parent {
		if p.typeName == parentTypeName {
			return true
		}
	}
	return false
}

// IsA reports whether this type is, or derives from, typeName.
func (t *EntityStateType) IsA(typeName string) bool {
	return t.typeName == typeName || t.DerivesFrom(typeName)
}

// DefaultPropertyValues returns the effective default property values for
// this type, with inherited defaults visible unless overridden.
func (t *EntityStateType) DefaultPropertyValues() map[string]string {
	result := map[string]string{}
	if t.parent != nil {
		for k, v := range t.parent.DefaultPropertyValues() {
			result[k] = v
		}
	}
	for k, v := range t.defaultPropertyValues {
		result[k] = v
	}
	return result
}

// PossiblePropertyValues returns the effective possible-value lists for this
// type, with inherited lists visible unless overridden by this type.
func (t *EntityStateType) PossiblePropertyValues() map[string][]string {
	result := map[string][]string{}
	if t.parent != nil {
		for k, v := range t.parent.PossiblePropertyValues() {
			result[k] = append([]string(nil), v...)
		}
	}
	for k, v := range t.possiblePropertyValues {
		result[k] = append([]string(nil), v...)
	}
	return result
}

// HasPossiblePropertyValuesDefined reports whether this type (ignoring its
// ancestors) declares any possible-value constraints.
func (t *EntityStateType) HasPossiblePropertyValuesDefined() bool {
	return len(t.possiblePropertyValues) > 0
}

// Links returns the effective declared link names for this type, including
// those inherited from ancestor types.
func (t *EntityStateType) Links() []string {
	seen := map[string]bool{}
	var result []string
	if t.parent != nil {
		for _, l := range t.parent.Links() {
			if !seen[l] {
				seen[l] = true
				result = append(result, l)
			}
		}
	}
	for _, l := range t.links {
		if !seen[l] {
			seen[l] = true
			result = append(result, l)
		}
	}
	return result
}

// HasLink reports whether linkName is declared by this type or an ancestor.
func (t *EntityStateType) HasLink(linkName string) bool {
	for _, l := range t.Links() {
		if l == linkName {
			return true
		}
	}
	return false
}
