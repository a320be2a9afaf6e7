package persist

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"cyberxp/agent"
	"cyberxp/model"
	"cyberxp/xp"
)

func buildTestRegistry() *model.Registry {
	registry := model.NewRegistry("door-model")
	registry.DefineEntityType("", "door", map[string]string{"state": "closed"}, map[string][]string{"state": {"closed", "open"}}, nil)
	return registry
}

func TestSlug(t *testing.T) {
	Convey("Slug collapses non-alphanumerics and lowercases", t, func() {
		So(Slug("Door Model v2!"), ShouldEqual, "door_model_v2")
		So(Slug("already_ok"), ShouldEqual, "already_ok")
	})
}

func TestModelAndKnowledgeRoundTrip(t *testing.T) {
	Convey("Given a registry with a declared type and two interned states", t, func() {
		registry := buildTestRegistry()

		open := registry.NewEntityState("door")
		open.SetProperty("state", "open")
		s1 := model.NewEnvironmentState()
		s1.SetEntityState("front", open)
		s1 = registry.GetStoredState(s1)

		s2 := model.NewEnvironmentState()
		s2.SetFeature("visits", "3")
		s2 = registry.GetStoredState(s2)

		dir := t.TempDir()

		Convey("SaveModel/SaveKnowledge then loading into a fresh registry reproduces the same state order", func() {
			cid, err := SaveModel(dir, registry)
			So(err, ShouldBeNil)
			So(cid, ShouldEqual, "door_model")

			So(SaveKnowledge(dir, cid, registry), ShouldBeNil)

			modelDoc, err := LoadModelDoc(dir, cid)
			So(err, ShouldBeNil)
			So(len(modelDoc.Types), ShouldEqual, 1)
			So(modelDoc.Types[0].TypeName, ShouldEqual, "door")

			knowledgeDoc, err := LoadKnowledgeDoc(dir, cid)
			So(err, ShouldBeNil)
			So(len(knowledgeDoc.States), ShouldEqual, 2)

			loaded := model.NewRegistry(modelDoc.Name)
			ApplyModelDoc(loaded, modelDoc)
			ApplyKnowledgeDoc(loaded, knowledgeDoc)

			loadedStates := loaded.AllStates()
			So(len(loadedStates), ShouldEqual, 2)

			front := loadedStates[0].GetEntityState("front")
			So(front, ShouldNotBeNil)
			So(front.TypeName(), ShouldEqual, "door")
			v, ok := front.GetProperty("state")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "open")

			So(loadedStates[1].GetFeature("visits"), ShouldEqual, "3")
		})
	})
}

func TestExperienceBundleRoundTrip(t *testing.T) {
	Convey("Given an experience with episodes, failed transitions and a value table", t, func() {
		registry := buildTestRegistry()

		start := registry.GetStoredState(model.NewEnvironmentState())
		goalState := model.NewEnvironmentState()
		goalState.SetFeature("pos", "done")
		end := registry.GetStoredState(goalState)

		action := registry.EncodeAction(model.NewAction("advance"))

		role := xp.NewRole("reach-goal", registry.Name())
		role.SetSuccessCondition(&model.Condition{FeatureConditions: []model.FeatureCondition{model.NewFeatureCondition("pos", "done")}})

		experience := xp.NewExperience(registry.Name(), "reach-goal", role.Name, "asst-1")
		episode := &xp.Episode{InitialState: start}
		episode.AppendTransition(model.Transition{StartState: start, ActionTaken: action, EndState: end})
		episode.Result = xp.Succeeded
		episode.Performance = 10
		So(experience.StoreEpisode(episode, true), ShouldBeTrue)

		experience.SetStateActionValue(model.StateActionRef{State: start, Action: action}, 4.5)

		cfg := agent.DefaultConfig()
		cfg.Epsilon = 0.3

		path := filepath.Join(t.TempDir(), "reach-goal.json")

		Convey("SaveExperience then LoadExperience reproduces the experience, role and config", func() {
			So(SaveExperience(path, registry, experience, role, cfg), ShouldBeNil)

			loadedRegistry, loadedXp, loadedRole, loadedCfg, err := LoadExperience(path)
			So(err, ShouldBeNil)

			So(loadedXp.Model, ShouldEqual, registry.Name())
			So(loadedXp.Goal, ShouldEqual, "reach-goal")
			So(len(loadedXp.Episodes), ShouldEqual, 1)
			So(loadedXp.Episodes[0].Result, ShouldEqual, xp.Succeeded)
			So(loadedXp.Episodes[0].Performance, ShouldEqual, 10)
			So(loadedXp.BestEpisode, ShouldNotBeNil)

			loadedStates := loadedRegistry.AllStates()
			loadedStart := loadedStates[0]
			loadedAction := loadedRegistry.DecodeAction("advance")
			value := loadedXp.GetStateActionValue(model.StateActionRef{State: loadedStart, Action: loadedAction})
			So(value, ShouldEqual, 4.5)

			So(loadedRole.Name, ShouldEqual, "reach-goal")
			So(loadedRole.SuccessCondition.Defined(), ShouldBeTrue)

			if diff := cmp.Diff(cfg, loadedCfg); diff != "" {
				t.Errorf("agent config round-trip mismatch (-want +got):\n%s", diff)
			}
		})
	})
}
