package assistant

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"cyberxp/model"
)

func TestSharedArenaBroadcastsTransitionsToOtherActors(t *testing.T) {
	Convey("Given two actors sharing one line system", t, func() {
		registry := model.NewRegistry("shared-model")
		system := newLineSystem(registry, 5)
		So(system.Initialize(false), ShouldBeNil)
		role := lineRole(registry, 5)

		mover := NewCyberSystemAssistant("mover", registry, system)
		So(mover.AddNewGoal("reach-end", role), ShouldBeNil)

		observer := NewCyberSystemAssistant("observer", registry, system)
		So(observer.AddNewGoal("reach-end", role), ShouldBeNil)

		arena := NewSharedArena()
		So(arena.AddActor(mover), ShouldBeNil)
		So(arena.AddActor(observer), ShouldBeNil)

		Convey("HasActor reports true for a registered actor", func() {
			So(arena.HasActor("mover"), ShouldBeTrue)
			So(arena.HasActor("ghost"), ShouldBeFalse)
		})

		Convey("Adding the same actor twice is an error", func() {
			So(arena.AddActor(mover), ShouldNotBeNil)
		})

		Convey("TakeAction updates both actors' episodes even though only one acted", func() {
			state, err := system.InterpretSystemState()
			So(err, ShouldBeNil)
			arena.NewEpisode(state)

			_, err = arena.TakeAction("mover", model.NewAction("advance"))
			So(err, ShouldBeNil)

			So(len(mover.CurrentEpisode.Transitions), ShouldEqual, 1)
			So(len(observer.CurrentEpisode.Transitions), ShouldEqual, 1)
			So(observer.CurrentEpisode.LastState, ShouldEqual, mover.CurrentEpisode.LastState)
		})

		Convey("TakeAction from an unregistered actor fails", func() {
			_, err := arena.TakeAction("ghost", model.NewAction("advance"))
			So(err, ShouldNotBeNil)
		})

		Convey("RemoveActor drops it from future broadcasts", func() {
			arena.RemoveActor("observer")
			So(arena.HasActor("observer"), ShouldBeFalse)

			state, err := system.InterpretSystemState()
			So(err, ShouldBeNil)
			arena.NewEpisode(state)
			_, err = arena.TakeAction("mover", model.NewAction("advance"))
			So(err, ShouldBeNil)
			So(observer.CurrentEpisode, ShouldBeNil)
		})
	})
}
