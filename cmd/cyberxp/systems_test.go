package main

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"cyberxp/assistant"
	"cyberxp/plugins/gridworld"
	"cyberxp/plugins/tictactoe"
)

func TestBuildSystemGridworld(t *testing.T) {
	Convey("Given a track file on disk", t, func() {
		f, err := os.CreateTemp("", "track-*.txt")
		So(err, ShouldBeNil)
		defer os.Remove(f.Name())
		_, err = f.WriteString("3 2\nE #\nS  \n")
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		Convey("buildSystem wires up a ready-to-train gridworld system", func() {
			build, err := buildSystem("gridworld", f.Name(), "")
			So(err, ShouldBeNil)
			So(build.Goal, ShouldEqual, gridworld.GoalName)
			So(build.System.IsInitialized(), ShouldBeTrue)
		})

		Convey("buildSystem rejects gridworld with no track", func() {
			_, err := buildSystem("gridworld", "", "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestBuildSystemTicTacToe(t *testing.T) {
	Convey("buildSystem wires up tictactoe for the requested mark", t, func() {
		buildX, err := buildSystem("tictactoe", "", "X")
		So(err, ShouldBeNil)
		So(buildX.Goal, ShouldEqual, tictactoe.GoalName(tictactoe.X))

		buildO, err := buildSystem("tictactoe", "", "O")
		So(err, ShouldBeNil)
		So(buildO.Goal, ShouldEqual, tictactoe.GoalName(tictactoe.O))
	})

	Convey("buildSystem rejects an unknown system name", t, func() {
		_, err := buildSystem("chess", "", "")
		So(err, ShouldNotBeNil)
	})
}

func TestDelta(t *testing.T) {
	Convey("Given two cumulative stats snapshots", t, func() {
		prev := assistant.AgentStats{EpisodeCount: 5, SuccessCount: 3, TotalSteps: 40, StatesVisited: 12}
		cur := assistant.AgentStats{EpisodeCount: 8, SuccessCount: 5, TotalSteps: 70, StatesVisited: 20}

		Convey("delta reports the increments, not the running totals", func() {
			d := delta(prev, cur)
			So(d.EpisodeCount, ShouldEqual, 3)
			So(d.SuccessCount, ShouldEqual, 2)
			So(d.TotalSteps, ShouldEqual, 30)
			So(d.StatesVisited, ShouldEqual, 20)
		})
	})
}
