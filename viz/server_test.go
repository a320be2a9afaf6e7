package viz

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"cyberxp/assistant"
)

func TestStatsUpdates(t *testing.T) {
	Convey("Given a stats snapshot for one goal", t, func() {
		stats := map[string]assistant.AgentStats{
			"reach-end": {EpisodeCount: 3, SuccessCount: 2, TotalSteps: 11},
		}

		Convey("StatsUpdates produces one EleUpdate per tracked field", func() {
			updates := StatsUpdates(stats)
			So(len(updates), ShouldEqual, 5)

			var episodesValue string
			for _, u := range updates {
				if u.EleID == "goal-reach-end-episodes" {
					episodesValue = u.Ops[0].Value
				}
			}
			So(episodesValue, ShouldEqual, "3")
		})
	})
}

func TestServerIndexAndWebsocketPush(t *testing.T) {
	Convey("Given a server seeded with an initial update and a channel of further updates", t, func() {
		updates := make(chan []EleUpdate, 4)
		server, err := NewServer(":0", []EleUpdate{{EleID: "goal-x-episodes", Ops: textOp("0")}}, updates)
		So(err, ShouldBeNil)

		httpSrv := httptest.NewServer(server.Handler())
		defer httpSrv.Close()

		Convey("The index page renders the seeded element id", func() {
			resp, err := httpSrv.Client().Get(httpSrv.URL + "/")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			buf := make([]byte, 4096)
			n, _ := resp.Body.Read(buf)
			So(string(buf[:n]), ShouldContainSubstring, "goal-x-episodes")
		})

		Convey("A connected websocket client receives a pushed batch", func() {
			wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			So(err, ShouldBeNil)
			defer conn.Close()

			updates <- []EleUpdate{{EleID: "goal-x-episodes", Ops: textOp("1")}}

			var received []EleUpdate
			So(conn.SetReadDeadline(time.Now().Add(2*time.Second)), ShouldBeNil)
			err = conn.ReadJSON(&received)
			So(err, ShouldBeNil)
			So(len(received), ShouldEqual, 1)
			So(received[0].EleID, ShouldEqual, "goal-x-episodes")
		})
	})
}
