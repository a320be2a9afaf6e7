package tictactoe

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"cyberxp/assistant"
	"cyberxp/model"
	"cyberxp/xp"
)

func move(cell int) *model.Action {
	return model.NewAction(MoveAction, string(rune('0'+cell)))
}

func TestAvailableActionsGatesOnTurn(t *testing.T) {
	Convey("Given a fresh board, with X to move first", t, func() {
		registry := model.NewRegistry("tictactoe-model")
		sys := NewSystem(registry)
		So(sys.Initialize(false), ShouldBeNil)

		Convey("X's goal has actions available, O's does not", func() {
			So(len(sys.AvailableActions(GoalName(X), false)), ShouldEqual, 9)
			So(sys.AvailableActions(GoalName(O), false), ShouldBeNil)
		})

		Convey("after X moves, the turn flips to O", func() {
			ok, err := sys.ExecuteAction(move(1))
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			So(sys.AvailableActions(GoalName(X), false), ShouldBeNil)
			So(len(sys.AvailableActions(GoalName(O), false)), ShouldEqual, 8)
		})
	})
}

func TestSmartSelectionPrefersTheWinningMove(t *testing.T) {
	Convey("Given X one move away from completing the top row", t, func() {
		registry := model.NewRegistry("tictactoe-model")
		sys := NewSystem(registry)
		So(sys.Initialize(false), ShouldBeNil)

		ok, err := sys.ExecuteAction(move(1)) // X
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		ok, err = sys.ExecuteAction(move(4)) // O
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		ok, err = sys.ExecuteAction(move(2)) // X
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		ok, err = sys.ExecuteAction(move(5)) // O
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)

		Convey("smart selection narrows X's move down to cell 3", func() {
			actions := sys.AvailableActions(GoalName(X), true)
			So(len(actions), ShouldEqual, 1)
			So(actions[0].Params[0], ShouldEqual, "3")
		})
	})
}

func TestSharedArenaPlaysOutAWin(t *testing.T) {
	Convey("Given two assistants sharing one board, one per mark", t, func() {
		registry := model.NewRegistry("tictactoe-model")
		sys := NewSystem(registry)
		So(sys.InitRoles(registry), ShouldBeNil)
		So(sys.Initialize(false), ShouldBeNil)

		playerX := assistant.NewCyberSystemAssistant("player1", registry, sys)
		So(playerX.AddNewGoal(GoalName(X), DefaultRole(registry.Name(), X)), ShouldBeNil)

		playerO := assistant.NewCyberSystemAssistant("player2", registry, sys)
		So(playerO.AddNewGoal(GoalName(O), DefaultRole(registry.Name(), O)), ShouldBeNil)

		arena := assistant.NewSharedArena()
		So(arena.AddActor(playerX), ShouldBeNil)
		So(arena.AddActor(playerO), ShouldBeNil)

		state, err := sys.InterpretSystemState()
		So(err, ShouldBeNil)
		arena.NewEpisode(state)

		Convey("X completing the top row is a success for X and a failure for O", func() {
			_, err := arena.TakeAction("player1", move(1))
			So(err, ShouldBeNil)
			_, err = arena.TakeAction("player2", move(4))
			So(err, ShouldBeNil)
			_, err = arena.TakeAction("player1", move(2))
			So(err, ShouldBeNil)
			_, err = arena.TakeAction("player2", move(5))
			So(err, ShouldBeNil)
			info, err := arena.TakeAction("player1", move(3))
			So(err, ShouldBeNil)

			So(info.Result, ShouldEqual, xp.Succeeded)
			So(playerX.CurrentEpisode.Result, ShouldEqual, xp.Succeeded)
			So(playerO.CurrentEpisode.Result, ShouldEqual, xp.Failed)
		})
	})
}
