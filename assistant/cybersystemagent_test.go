package assistant

import (
	"strconv"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"cyberxp/agent"
	"cyberxp/model"
	"cyberxp/xp"
)

// lineSystem is a minimal cybersys.CyberSystem: a one-dimensional track of
// positions 0..size-1, with a single "advance" action that steps forward by
// one (clamped at the end), used to exercise CyberSystemAgent without a real
// pluggable system.
type lineSystem struct {
	registry *model.Registry
	size     int
	pos      int
	logOn    bool
}

func newLineSystem(registry *model.Registry, size int) *lineSystem {
	return &lineSystem{registry: registry, size: size}
}

func (l *lineSystem) stateAt(pos int) *model.EnvironmentState {
	s := model.NewEnvironmentState()
	s.SetFeature("pos", strconv.Itoa(pos))
	return l.registry.GetStoredState(s)
}

func (l *lineSystem) Name() string                    { return "line" }
func (l *lineSystem) Initialize(rebuild bool) error    { l.pos = 0; return nil }
func (l *lineSystem) Clear()                           { l.pos = 0 }
func (l *lineSystem) IsInitialized() bool              { return true }
func (l *lineSystem) Reset() error                     { l.pos = 0; return nil }
func (l *lineSystem) InitialState() *model.EnvironmentState { return l.stateAt(0) }
func (l *lineSystem) LastState() *model.EnvironmentState    { return l.stateAt(l.pos) }

func (l *lineSystem) SynchronizeState(state *model.EnvironmentState) error {
	p, err := strconv.Atoi(state.GetFeature("pos"))
	if err != nil {
		return err
	}
	l.pos = p
	return nil
}

func (l *lineSystem) InterpretSystemState() (*model.EnvironmentState, error) {
	return l.stateAt(l.pos), nil
}

func (l *lineSystem) AvailableActions(roleID string, smartSelection bool) []*model.Action {
	if l.pos >= l.size-1 {
		return nil
	}
	return []*model.Action{model.NewAction("advance")}
}

func (l *lineSystem) ExecuteAction(action *model.Action) (bool, error) {
	if action.TypeID != "advance" {
		return false, nil
	}
	if l.pos < l.size-1 {
		l.pos++
	}
	return true, nil
}

func (l *lineSystem) FailureCondition() *model.Condition          { return &model.Condition{} }
func (l *lineSystem) InitRoles(registry *model.Registry) error    { return nil }
func (l *lineSystem) SetConfiguration(config string) error        { return nil }
func (l *lineSystem) Configuration() string                       { return "" }
func (l *lineSystem) ReadEntityConfiguration(id string) (string, error) { return "", nil }
func (l *lineSystem) WriteEntityConfiguration(id, config string) error { return nil }
func (l *lineSystem) ConfigureEntity(id, typ, config string) error { return nil }
func (l *lineSystem) RemoveEntity(id string) error                 { return nil }
func (l *lineSystem) Info(infoID string) string                    { return "" }
func (l *lineSystem) SetLogEnabled(enabled bool)                   { l.logOn = enabled }
func (l *lineSystem) LogEnabled() bool                             { return l.logOn }

func lineRole(registry *model.Registry, size int) *xp.Role {
	role := xp.NewRole("reach-end", registry.Name())
	role.SetSuccessCondition(&model.Condition{
		FeatureConditions: []model.FeatureCondition{model.NewFeatureCondition("pos", strconv.Itoa(size-1))},
	})
	return role
}

func TestCyberSystemAgentTrainReachesGoal(t *testing.T) {
	Convey("Given an agent driving a five-position line system", t, func() {
		registry := model.NewRegistry("line-model")
		system := newLineSystem(registry, 5)
		So(system.Initialize(false), ShouldBeNil)

		csAgent := NewCyberSystemAgent("trainer", registry, system)
		role := lineRole(registry, 5)
		So(csAgent.AddNewGoal("reach-end", role), ShouldBeNil)

		Convey("Training for enough episodes consistently reaches the goal", func() {
			result, err := csAgent.Train(20, true)
			So(err, ShouldBeNil)
			So(result, ShouldEqual, xp.Succeeded)

			stats := csAgent.GetStatistics()
			So(stats.EpisodeCount, ShouldEqual, 20)
			So(stats.SuccessCount, ShouldBeGreaterThan, 0)
		})
	})
}

func TestCyberSystemAgentDeadEndReportsDeadlock(t *testing.T) {
	Convey("Given a system parked at its last reachable position, with an unreachable goal", t, func() {
		registry := model.NewRegistry("stuck-model")
		system := newLineSystem(registry, 2)
		So(system.Initialize(false), ShouldBeNil)
		system.pos = 1 // the last position; the system offers no action from here

		csAgent := NewCyberSystemAgent("stuck", registry, system)
		role := xp.NewRole("unreachable", registry.Name())
		role.SetSuccessCondition(&model.Condition{
			FeatureConditions: []model.FeatureCondition{model.NewFeatureCondition("pos", "99")},
		})
		So(csAgent.AddNewGoal("reach-end", role), ShouldBeNil)

		Convey("Act reports deadlock rather than a false success", func() {
			state, err := system.InterpretSystemState()
			So(err, ShouldBeNil)
			csAgent.StartEpisode(state)

			info, err := csAgent.Act()
			So(err, ShouldBeNil)
			So(info.Result, ShouldEqual, xp.Deadlock)

			stats := csAgent.GetStatistics()
			So(stats.DeadlockCount, ShouldEqual, 1)
		})
	})
}

func TestCyberSystemAgentCustomAgentMaker(t *testing.T) {
	Convey("Given a custom agent maker", t, func() {
		registry := model.NewRegistry("line-model")
		system := newLineSystem(registry, 3)
		So(system.Initialize(false), ShouldBeNil)

		csAgent := NewCyberSystemAgent("custom", registry, system)
		role := lineRole(registry, 3)
		So(csAgent.AddNewGoal("reach-end", role), ShouldBeNil)

		var built int
		cfg := agent.DefaultConfig()
		cfg.Epsilon = 0
		csAgent.SetCustomAgentMaker(func(goal string) agent.Agent {
			built++
			return agent.NewQAgent(cfg)
		})

		Convey("It is used in place of the default QAgent", func() {
			_, err := csAgent.Train(1, true)
			So(err, ShouldBeNil)
			So(built, ShouldEqual, 1)
		})
	})
}
