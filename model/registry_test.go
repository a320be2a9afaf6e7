package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistryEntityTypeInheritance(t *testing.T) {
	Convey("Given a parent and child entity state type", t, func() {
		reg := NewRegistry("test")
		reg.DefineEntityType("", "vehicle", map[string]string{"speed": "0"}, nil, []string{"driver"})
		reg.DefineEntityType("vehicle", "car", map[string]string{"wheels": "4"}, nil, nil)

		Convey("The child type reports both its own and the parent's defaults", func() {
			car := reg.EntityStateType("car")
			So(car.IsA("vehicle"), ShouldBeTrue)
			So(car.DefaultPropertyValues()["speed"], ShouldEqual, "0")
			So(car.DefaultPropertyValues()["wheels"], ShouldEqual, "4")
		})

		Convey("The child inherits declared links", func() {
			car := reg.EntityStateType("car")
			So(car.HasLink("driver"), ShouldBeTrue)
		})

		Convey("A new entity state of the child type is seeded with inherited defaults", func() {
			e := reg.NewEntityState("car")
			v, ok := e.GetProperty("speed")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "0")
		})
	})
}

func TestRegistryStateInterning(t *testing.T) {
	Convey("Given two structurally equal environment states built independently", t, func() {
		reg := NewRegistry("test")

		build := func() *EnvironmentState {
			s := NewEnvironmentState()
			e := reg.NewEntityState("unit")
			e.SetProperty("x", "1")
			s.SetEntityState("a", e)
			s.SetFeature("turn", "1")
			return s
		}

		s1 := reg.GetStoredState(build())
		s2 := reg.GetStoredState(build())

		Convey("Interning returns the same pointer for both", func() {
			So(s2, ShouldEqual, s1)
		})

		Convey("The registry reports a single stored state", func() {
			So(reg.NumStates(), ShouldEqual, 1)
		})

		Convey("A structurally different state interns separately", func() {
			other := NewEnvironmentState()
			other.SetFeature("turn", "2")
			s3 := reg.GetStoredState(other)
			So(s3, ShouldNotEqual, s1)
			So(reg.NumStates(), ShouldEqual, 2)
		})
	})
}

func TestRegistryActionEncoding(t *testing.T) {
	Convey("Given an action with parameters", t, func() {
		reg := NewRegistry("test")
		a := reg.EncodeAction(NewAction("move", "north", "2"))

		Convey("Its canonical encoding joins type and params with |", func() {
			So(a.Encode(), ShouldEqual, "move|north|2")
		})

		Convey("Decoding the same string returns the interned action", func() {
			decoded := reg.DecodeAction("move|north|2")
			So(decoded, ShouldEqual, a)
		})

		Convey("Re-encoding an equal action returns the same pointer", func() {
			same := reg.EncodeAction(NewAction("move", "north", "2"))
			So(same, ShouldEqual, a)
		})
	})
}
