package assistant

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"cyberxp/model"
	"cyberxp/xp"
)

func newTestRole(registry *model.Registry) *xp.Role {
	role := xp.NewRole("reach-goal", registry.Name())
	success := &model.Condition{FeatureConditions: []model.FeatureCondition{model.NewFeatureCondition("pos", "done")}}
	role.SetSuccessCondition(success)
	return role
}

func TestNewAssistantGeneratesIDWhenEmpty(t *testing.T) {
	Convey("Given no id", t, func() {
		registry := model.NewRegistry("test-model")

		Convey("NewAssistant fills in a generated, non-empty id", func() {
			a := NewAssistant("", registry)
			So(a.ID, ShouldNotBeEmpty)
		})

		Convey("two anonymous assistants get distinct ids", func() {
			a1 := NewAssistant("", registry)
			a2 := NewAssistant("", registry)
			So(a1.ID, ShouldNotEqual, a2.ID)
		})
	})
}

func TestAssistantGoalManagement(t *testing.T) {
	Convey("Given an assistant with no goals", t, func() {
		registry := model.NewRegistry("test-model")
		a := NewAssistant("asst", registry)
		role := newTestRole(registry)

		Convey("AddNewGoal registers it and makes it current", func() {
			err := a.AddNewGoal("goal-a", role)
			So(err, ShouldBeNil)
			So(a.CurrentGoal(), ShouldEqual, "goal-a")
			So(a.GoalNames(), ShouldResemble, []string{"goal-a"})
		})

		Convey("Adding the same goal twice is an error", func() {
			So(a.AddNewGoal("goal-a", role), ShouldBeNil)
			So(a.AddNewGoal("goal-a", role), ShouldNotBeNil)
		})

		Convey("RenameCurrentGoal carries the experience along", func() {
			So(a.AddNewGoal("goal-a", role), ShouldBeNil)
			xpr := a.CurrentExperience()
			So(a.RenameCurrentGoal("goal-b"), ShouldBeNil)
			So(a.CurrentGoal(), ShouldEqual, "goal-b")
			So(a.CurrentExperience(), ShouldEqual, xpr)
		})

		Convey("SetCurrentGoal rejects an unknown goal", func() {
			So(a.SetCurrentGoal("nope"), ShouldNotBeNil)
		})
	})
}

func TestAssistantEpisodeLifecycle(t *testing.T) {
	Convey("Given an assistant with one goal", t, func() {
		registry := model.NewRegistry("test-model")
		a := NewAssistant("asst", registry)
		role := newTestRole(registry)
		So(a.AddNewGoal("goal", role), ShouldBeNil)

		start := model.NewEnvironmentState()
		start.SetFeature("pos", "start")

		Convey("StartEpisode seeds an in-progress episode from the interned initial state", func() {
			a.StartEpisode(start)
			So(a.CurrentEpisode, ShouldNotBeNil)
			So(a.CurrentEpisode.InitialState, ShouldEqual, registry.FindState(start))
			So(a.CurrentEpisode.Result, ShouldEqual, xp.InProgress)
		})

		Convey("AcquireTransition classifies the end state and advances the episode", func() {
			a.StartEpisode(start)
			startState := a.CurrentEpisode.InitialState

			goalState := model.NewEnvironmentState()
			goalState.SetFeature("pos", "done")
			end := registry.GetStoredState(goalState)

			t := model.Transition{StartState: startState, ActionTaken: registry.EncodeAction(model.NewAction("advance")), EndState: end}
			info := a.AcquireTransition(t, role)

			So(info.Result, ShouldEqual, xp.Succeeded)
			So(a.CurrentEpisode.Result, ShouldEqual, xp.Succeeded)
			So(len(a.CurrentEpisode.Transitions), ShouldEqual, 1)
		})

		Convey("Re-observing the same end state does not double-count the transition", func() {
			a.StartEpisode(start)
			startState := a.CurrentEpisode.InitialState
			end := registry.GetStoredState(func() *model.EnvironmentState {
				s := model.NewEnvironmentState()
				s.SetFeature("pos", "mid")
				return s
			}())
			act := registry.EncodeAction(model.NewAction("advance"))
			t := model.Transition{StartState: startState, ActionTaken: act, EndState: end}

			a.AcquireTransition(t, role)
			a.AcquireTransition(t, role)

			So(len(a.CurrentEpisode.Transitions), ShouldEqual, 1)
		})

		Convey("EvaluateEpisode promotes None to Trainee on the first completed episode, and to Assistant once it succeeds", func() {
			a.StartEpisode(start)
			xpr := a.CurrentExperience()
			So(xpr.Level, ShouldEqual, xp.None)

			goalState := model.NewEnvironmentState()
			goalState.SetFeature("pos", "done")
			end := registry.GetStoredState(goalState)
			act := registry.EncodeAction(model.NewAction("advance"))
			a.AcquireTransition(model.Transition{StartState: a.CurrentEpisode.InitialState, ActionTaken: act, EndState: end}, role)

			a.EvaluateEpisode(10)

			So(xpr.Level, ShouldEqual, xp.Assistant)
			So(a.CurrentEpisode.Performance, ShouldEqual, 10)
		})

		Convey("ProcessCurrentEpisode stores a completed episode but not an in-progress one", func() {
			a.StartEpisode(start)
			xpr := a.CurrentExperience()

			a.ProcessCurrentEpisode()
			So(xpr.Valid(), ShouldBeFalse)

			goalState := model.NewEnvironmentState()
			goalState.SetFeature("pos", "done")
			end := registry.GetStoredState(goalState)
			act := registry.EncodeAction(model.NewAction("advance"))
			a.AcquireTransition(model.Transition{StartState: a.CurrentEpisode.InitialState, ActionTaken: act, EndState: end}, role)
			a.EvaluateEpisode(10)
			a.ProcessCurrentEpisode()

			So(xpr.Valid(), ShouldBeTrue)
		})

		Convey("ProcessCurrentEpisode is a no-op once the experience reaches Trainer level", func() {
			a.StartEpisode(start)
			a.CurrentExperience().Level = xp.Trainer

			goalState := model.NewEnvironmentState()
			goalState.SetFeature("pos", "done")
			end := registry.GetStoredState(goalState)
			act := registry.EncodeAction(model.NewAction("advance"))
			a.AcquireTransition(model.Transition{StartState: a.CurrentEpisode.InitialState, ActionTaken: act, EndState: end}, role)
			a.EvaluateEpisode(10)
			a.ProcessCurrentEpisode()

			So(a.CurrentExperience().Valid(), ShouldBeFalse)
		})
	})
}
