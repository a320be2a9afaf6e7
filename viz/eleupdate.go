package viz

import (
	"strconv"

	"cyberxp/assistant"
)

// Op is one DOM attribute (or the reserved "textContent") to set, and the
// value to set it to.
type Op struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EleUpdate names the element to update and the ops to apply to it. The
// client's job is mechanical: find the element by id, apply each op.
type EleUpdate struct {
	EleID string `json:"eleId"`
	Ops   []Op   `json:"ops"`
}

func textOp(value string) []Op {
	return []Op{{Key: "textContent", Value: value}}
}

// StatsUpdates turns a snapshot of per-goal agent statistics into the
// EleUpdate set that brings the dashboard's per-goal rows up to date. Each
// goal gets one element per field (five in all), addressed by
// "goal-<goal>-<field>" element ids; the index page renders each as a row.
func StatsUpdates(stats map[string]assistant.AgentStats) []EleUpdate {
	updates := make([]EleUpdate, 0, len(stats)*5)
	for goal, s := range stats {
		updates = append(updates,
			EleUpdate{EleID: "goal-" + goal + "-episodes", Ops: textOp(strconv.Itoa(s.EpisodeCount))},
			EleUpdate{EleID: "goal-" + goal + "-successes", Ops: textOp(strconv.Itoa(s.SuccessCount))},
			EleUpdate{EleID: "goal-" + goal + "-failures", Ops: textOp(strconv.Itoa(s.FailureCount))},
			EleUpdate{EleID: "goal-" + goal + "-deadlocks", Ops: textOp(strconv.Itoa(s.DeadlockCount))},
			EleUpdate{EleID: "goal-" + goal + "-steps", Ops: textOp(strconv.Itoa(s.TotalSteps))},
		)
	}
	return updates
}
