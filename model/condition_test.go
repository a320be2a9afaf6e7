package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPropertyCondition(t *testing.T) {
	Convey("Given an entity state with a health property", t, func() {
		reg := NewRegistry("test")
		entity := reg.NewEntityState("unit")
		entity.SetProperty("health", "10")

		Convey("An equal condition matches the current value", func() {
			cond := NewPropertyCondition("health", "10")
			So(cond.Evaluate(entity), ShouldBeTrue)
		})

		Convey("A greater condition compares numerically", func() {
			cond := PropertyCondition{PropertyName: "health", PropertyValue: "5", Op: Greater}
			So(cond.Evaluate(entity), ShouldBeTrue)
		})

		Convey("A defined condition ignores the reference value", func() {
			cond := PropertyCondition{PropertyName: "health", Op: Defined}
			So(cond.Evaluate(entity), ShouldBeTrue)

			missing := PropertyCondition{PropertyName: "mana", Op: Defined}
			So(missing.Evaluate(entity), ShouldBeFalse)
		})
	})
}

func TestEntityConditionReservedIds(t *testing.T) {
	Convey("Given a state with two entities of the same type", t, func() {
		reg := NewRegistry("test")
		state := NewEnvironmentState()

		a := reg.NewEntityState("unit")
		a.SetProperty("alive", "true")
		b := reg.NewEntityState("unit")
		b.SetProperty("alive", "true")
		state.SetEntityState("a", a)
		state.SetEntityState("b", b)

		Convey("ALL requires every matching entity to satisfy the condition", func() {
			cond := EntityCondition{
				EntityID:       AllEntities,
				PropConditions: []PropertyCondition{NewPropertyCondition("alive", "true")},
			}
			So(cond.Evaluate(state), ShouldBeTrue)

			b.SetProperty("alive", "false")
			So(cond.Evaluate(state), ShouldBeFalse)
		})

		Convey("ANY requires at least one matching entity", func() {
			b.SetProperty("alive", "false")
			cond := EntityCondition{
				EntityID:       AnyEntity,
				PropConditions: []PropertyCondition{NewPropertyCondition("alive", "true")},
			}
			So(cond.Evaluate(state), ShouldBeTrue)
		})
	})
}

func TestRelationshipConditionEmptyRelatingLink(t *testing.T) {
	Convey("Given a relationship condition with no relating link specified", t, func() {
		cond := RelationshipCondition{Related: RelationshipLink{EntityID: "target"}}

		Convey("Any local link pointing at the target entity satisfies it", func() {
			So(cond.Evaluate("anyLink", RelationshipLink{EntityID: "target", LinkID: "whatever"}), ShouldBeTrue)
		})

		Convey("A link pointing elsewhere does not", func() {
			So(cond.Evaluate("anyLink", RelationshipLink{EntityID: "other"}), ShouldBeFalse)
		})
	})

	Convey("Given an Unrelated condition", t, func() {
		cond := RelationshipCondition{Related: RelationshipLink{EntityID: "target"}, Unrelated: true}

		Convey("It inverts the match", func() {
			So(cond.Evaluate("anyLink", RelationshipLink{EntityID: "target"}), ShouldBeFalse)
			So(cond.Evaluate("anyLink", RelationshipLink{EntityID: "other"}), ShouldBeTrue)
		})
	})
}

func TestConditionTreeFolding(t *testing.T) {
	Convey("Given a root condition ANDed implicitly and OR-extended explicitly", t, func() {
		reg := NewRegistry("test")
		state := NewEnvironmentState()
		unit := reg.NewEntityState("unit")
		unit.SetProperty("health", "0")
		state.SetEntityState("u", unit)

		root := &Condition{
			EntityConditions: []EntityCondition{
				{EntityID: "u", PropConditions: []PropertyCondition{NewPropertyCondition("health", "100")}},
			},
		}
		rescue := &Condition{
			EntityConditions: []EntityCondition{
				{EntityID: "u", PropConditions: []PropertyCondition{NewPropertyCondition("health", "0")}},
			},
		}

		Convey("Without the related condition, root alone fails", func() {
			So(root.Evaluate(state), ShouldBeFalse)
		})

		Convey("OR-ing in the rescue condition makes the tree succeed", func() {
			root.AddCondition(Or, rescue)
			So(root.Evaluate(state), ShouldBeTrue)
		})
	})
}
