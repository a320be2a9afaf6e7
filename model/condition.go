package model

// PropertyCondition compares one entity property against a reference value.
type PropertyCondition struct {
	PropertyName string
	PropertyValue string
	Op           CompOp
}

// NewPropertyCondition builds an equality PropertyCondition.
func NewPropertyCondition(propertyName, propertyValue string) PropertyCondition {
	return PropertyCondition{PropertyName: propertyName, PropertyValue: propertyValue, Op: Equal}
}

// Evaluate checks this condition against one entity state.
func (c PropertyCondition) Evaluate(entity *EntityState) bool {
	if entity == nil {
		return c.Op == Defined && false
	}
	v, ok := entity.GetProperty(c.PropertyName)
	return compare(c.Op, v, ok, c.PropertyValue)
}

// FeatureCondition compares one environment-state feature against a
// reference value.
type FeatureCondition struct {
	FeatureName string
	FeatureValue string
	Op          CompOp
}

func NewFeatureCondition(featureName, featureValue string) FeatureCondition {
	return FeatureCondition{FeatureName: featureName, FeatureValue: featureValue, Op: Equal}
}

func (c FeatureCondition) Evaluate(state *EnvironmentState) bool {
	if state == nil {
		return false
	}
	v, ok := state.features[c.FeatureName]
	return compare(c.Op, v, ok, c.FeatureValue)
}

// RelationshipCondition checks whether a named local link relates to a given
// target entity/link, or (if Unrelated) checks the opposite.
//
// An empty RelatingLinkId means "any link of this entity that targets the
// given entity id", ignoring which local link carries the relationship and
// which link id the target side uses; this mirrors the original's handling
// of an unspecified relating link.
type RelationshipCondition struct {
	RelatingLinkID string
	Related        RelationshipLink
	Unrelated      bool
}

// Evaluate checks whether the link named relatingLink on an entity, pointing
// to relatedLink, satisfies this condition.
func (c RelationshipCondition) Evaluate(relatingLink string, relatedLink RelationshipLink) bool {
	var related bool
	if c.RelatingLinkID == "" {
		related = c.Related.EntityID == relatedLink.EntityID
	} else {
		related = c.RelatingLinkID == relatingLink && c.Related == relatedLink
	}
	if c.Unrelated {
		return !related
	}
	return related
}

// Reserved entity ids accepted by EntityCondition.EntityID.
const (
	AnyEntity = "ANY"
	AllEntities = "ALL"
)

// EntityCondition bundles property and relationship conditions that must all
// hold (implicitly AND-ed) for a single entity, optionally restricted to a
// declared type.
type EntityCondition struct {
	EntityID   string
	TypeName   string
	PropConditions []PropertyCondition
	RelConditions  []RelationshipCondition
}

// Equal performs a structural comparison (EntityCondition holds slices, so
// it is not comparable with ==).
func (c EntityCondition) Equal(other EntityCondition) bool {
	if c.EntityID != other.EntityID || c.TypeName != other.TypeName {
		return false
	}
	if len(c.PropConditions) != len(other.PropConditions) || len(c.RelConditions) != len(other.RelConditions) {
		return false
	}
	for i := range c.PropConditions {
		if c.PropConditions[i] != other.PropConditions[i] {
			return false
		}
	}
	for i := range c.RelConditions {
		if c.RelConditions[i] != other.RelConditions[i] {
			return false
		}
	}
	return true
}

// Defined reports whether this condition carries any constraint at all.
func (c EntityCondition) Defined() bool {
	return c.EntityID != "" && (c.TypeName != "" || len(c.PropConditions) > 0 || len(c.RelConditions) > 0)
}

func (c EntityCondition) evaluatePropConditions(entity *EntityState) bool {
	for _, pc := range c.PropConditions {
		if !pc.Evaluate(entity) {
			return false
		}
	}
	return true
}

func (c EntityCondition) evaluateRelConditions(entity *EntityState) bool {
	for _, rc := range c.RelConditions {
		satisfied := false
		for linkID, link := range entity.Relationships() {
			if rc.Evaluate(linkID, link) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			// An Unrelated condition with no matching link at all is still
			// satisfied (there is nothing related to contradict it).
			if rc.Unrelated && len(entity.Relationships()) == 0 {
				satisfied = true
			} else if rc.Unrelated {
				satisfied = allUnrelated(rc, entity)
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}

func allUnrelated(rc RelationshipCondition, entity *EntityState) bool {
	for linkID, link := range entity.Relationships() {
		if !rc.Evaluate(linkID, link) {
			return false
		}
	}
	return true
}

// Evaluate checks this condition against an environment state, resolving
// EntityID (including the ANY/ALL reserved ids) to one or more concrete
// entities.
func (c EntityCondition) Evaluate(state *EnvironmentState) bool {
	if state == nil {
		return false
	}
	switch c.EntityID {
	case AllEntities:
		for _, e := range state.EntityStates() {
			if c.typeMatches(e) && !c.evaluateEntity(e) {
				return false
			}
		}
		return true
	case AnyEntity:
		for _, e := range state.EntityStates() {
			if c.typeMatches(e) && c.evaluateEntity(e) {
				return true
			}
		}
		return false
	default:
		e := state.GetEntityState(c.EntityID)
		if e == nil || !c.typeMatches(e) {
			return false
		}
		return c.evaluateEntity(e)
	}
}

// typeMatches reports whether e satisfies this condition's TypeName filter.
// It compares the entity's own declared type name directly; callers needing
// inheritance-aware matching (e.g. "is a Vehicle" matching a "Car" entity)
// should resolve TypeName through a Registry's EntityStateType hierarchy
// before evaluating, since EntityState itself only carries a flat type name.
func (c EntityCondition) typeMatches(e *EntityState) bool {
	return c.TypeName == "" || e.TypeName() == c.TypeName
}

func (c EntityCondition) evaluateEntity(e *EntityState) bool {
	return c.evaluatePropConditions(e) && c.evaluateRelConditions(e)
}

// RelatedCondition is one entry of a Condition's tree of related
// sub-conditions, joined to the parent by a logical operator.
type RelatedCondition struct {
	Op   LogicOp
	Cond *Condition
}

// Condition is the root of the condition tree: a list of entity conditions
// and feature conditions, implicitly AND-ed together, optionally extended
// with related sub-conditions folded in left to right with AND/OR.
type Condition struct {
	EntityConditions  []EntityCondition
	FeatureConditions []FeatureCondition
	RelatedConditions []RelatedCondition
}

// Defined reports whether this condition (or a related condition) carries
// any constraint.
func (c *Condition) Defined() bool {
	if c == nil {
		return false
	}
	return len(c.EntityConditions) > 0 || len(c.FeatureConditions) > 0 || len(c.RelatedConditions) > 0
}

// AddCondition folds relatedCondition into this one, joined by op.
func (c *Condition) AddCondition(op LogicOp, relatedCondition *Condition) {
	c.RelatedConditions = append(c.RelatedConditions, RelatedCondition{Op: op, Cond: relatedCondition})
}

// Evaluate walks the condition tree against state: all entity and feature
// conditions at this level must hold (AND), then each related condition is
// folded in left to right using its logical operator.
func (c *Condition) Evaluate(state *EnvironmentState) bool {
	if c == nil {
		return false
	}
	result := true
	for _, ec := range c.EntityConditions {
		if !ec.Evaluate(state) {
			result = false
			break
		}
	}
	if result {
		for _, fc := range c.FeatureConditions {
			if !fc.Evaluate(state) {
				result = false
				break
			}
		}
	}
	for _, rc := range c.RelatedConditions {
		sub := rc.Cond.Evaluate(state)
		switch rc.Op {
		case And:
			result = result && sub
		case Or:
			result = result || sub
		}
	}
	return result
}

// Equal performs a structural (value) comparison of two condition trees.
func (c *Condition) Equal(other *Condition) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	if len(c.EntityConditions) != len(other.EntityConditions) ||
		len(c.FeatureConditions) != len(other.FeatureConditions) ||
		len(c.RelatedConditions) != len(other.RelatedConditions) {
		return false
	}
	for i := range c.EntityConditions {
		if !c.EntityConditions[i].Equal(other.EntityConditions[i]) {
			return false
		}
	}
	for i := range c.FeatureConditions {
		if c.FeatureConditions[i] != other.FeatureConditions[i] {
			return false
		}
	}
	for i := range c.RelatedConditions {
		if c.RelatedConditions[i].Op != other.RelatedConditions[i].Op ||
			!c.RelatedConditions[i].Cond.Equal(other.RelatedConditions[i].Cond) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the condition tree.
func (c *Condition) Clone() *Condition {
	if c == nil {
		return nil
	}
	clone := &Condition{
		EntityConditions:  append([]EntityCondition(nil), c.EntityConditions...),
		FeatureConditions: append([]FeatureCondition(nil), c.FeatureConditions...),
	}
	for i, ec := range clone.EntityConditions {
		clone.EntityConditions[i].PropConditions = append([]PropertyCondition(nil), ec.PropConditions...)
		clone.EntityConditions[i].RelConditions = append([]RelationshipCondition(nil), ec.RelConditions...)
	}
	for _, rc := range c.RelatedConditions {
		clone.RelatedConditions = append(clone.RelatedConditions, RelatedCondition{Op: rc.Op, Cond: rc.Cond.Clone()})
	}
	return clone
}
