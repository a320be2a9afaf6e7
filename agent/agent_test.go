package agent

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"cyberxp/model"
)

func TestQAgentChoosesKnownBestByDefault(t *testing.T) {
	Convey("Given an agent with epsilon zero and a known best action", t, func() {
		cfg := DefaultConfig()
		cfg.Epsilon = 0
		a := NewQAgent(cfg)

		reg := model.NewRegistry("test")
		state := reg.GetStoredState(model.NewEnvironmentState())
		good := reg.EncodeAction(model.NewAction("good"))
		bad := reg.EncodeAction(model.NewAction("bad"))

		a.QLearn(state, good, 10, state, nil)
		a.QLearn(state, bad, -10, state, nil)

		Convey("ChooseAction returns the higher-valued action", func() {
			chosen, err := a.ChooseAction(state, []*model.Action{good, bad})
			So(err, ShouldBeNil)
			So(chosen, ShouldEqual, good)
		})
	})
}

func TestQAgentOptimisticInitialCyclesThroughUnseenActions(t *testing.T) {
	Convey("Given an agent with a positive InitialValue, epsilon zero, and three unseen actions", t, func() {
		cfg := DefaultConfig()
		cfg.Epsilon = 0
		cfg.InitialValue = 1
		cfg.FixedStepSize = 1.0
		a := NewQAgent(cfg)

		reg := model.NewRegistry("test")
		state := reg.GetStoredState(model.NewEnvironmentState())
		actA := reg.EncodeAction(model.NewAction("a"))
		actB := reg.EncodeAction(model.NewAction("b"))
		actC := reg.EncodeAction(model.NewAction("c"))
		possible := []*model.Action{actA, actB, actC}

		Convey("it picks a, then learning a's value below InitialValue still lets b and c be chosen before a repeats", func() {
			chosen, err := a.ChooseAction(state, possible)
			So(err, ShouldBeNil)
			So(chosen, ShouldEqual, actA)

			a.QLearn(state, actA, 0, state, nil)

			chosen, err = a.ChooseAction(state, possible)
			So(err, ShouldBeNil)
			So(chosen, ShouldEqual, actB)

			a.QLearn(state, actB, 0, state, nil)

			chosen, err = a.ChooseAction(state, possible)
			So(err, ShouldBeNil)
			So(chosen, ShouldEqual, actC)
		})
	})
}

func TestQAgentEmptyActionsReturnsNil(t *testing.T) {
	Convey("Given an agent with no possible actions", t, func() {
		a := NewQAgent(DefaultConfig())
		chosen, err := a.ChooseAction(nil, nil)

		Convey("It reports no action instead of erroring", func() {
			So(err, ShouldBeNil)
			So(chosen, ShouldBeNil)
		})
	})
}

func TestQAgentBackUpPropagatesReverseOrder(t *testing.T) {
	Convey("Given a three-step episode ending in a terminal reward", t, func() {
		cfg := DefaultConfig()
		cfg.FixedStepSize = 1.0
		cfg.DiscountRate = 1.0
		a := NewQAgent(cfg)

		reg := model.NewRegistry("test")
		s0 := reg.GetStoredState(model.NewEnvironmentState())
		s1 := reg.GetStoredState(func() *model.EnvironmentState {
			s := model.NewEnvironmentState()
			s.SetFeature("step", "1")
			return s
		}())
		s2 := reg.GetStoredState(func() *model.EnvironmentState {
			s := model.NewEnvironmentState()
			s.SetFeature("step", "2")
			return s
		}())
		act := reg.EncodeAction(model.NewAction("advance"))

		transitions := []model.Transition{
			{StartState: s0, ActionTaken: act, EndState: s1},
			{StartState: s1, ActionTaken: act, EndState: s2},
		}
		rewards := []int{-1, 10}
		nextActions := [][]*model.Action{{act}, {act}}

		a.BackUp(transitions, rewards, nextActions)

		Convey("The terminal step's value reflects its own reward", func() {
			v, ok := a.Value(s1, act)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 10.0)
		})

		Convey("The earlier step's value is pulled up by the back-propagated terminal value", func() {
			v, ok := a.Value(s0, act)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, -1.0+10.0)
		})
	})
}

func TestConfigClampsExceptEpsilonReduction(t *testing.T) {
	Convey("Given an out-of-range configuration", t, func() {
		cfg := Config{FixedStepSize: 2, DiscountRate: -1, Epsilon: 5, EpsilonReduction: 3}
		cfg.CheckParameters()

		Convey("FixedStepSize, DiscountRate and Epsilon are clamped into [0,1]", func() {
			So(cfg.FixedStepSize, ShouldEqual, 1)
			So(cfg.DiscountRate, ShouldEqual, 0)
			So(cfg.Epsilon, ShouldEqual, 1)
		})

		Convey("EpsilonReduction is left untouched", func() {
			So(cfg.EpsilonReduction, ShouldEqual, 3)
		})
	})
}
