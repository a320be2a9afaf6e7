package assistant

import (
	"context"
	"fmt"

	channerics "github.com/niceyeti/channerics/channels"

	"cyberxp/agent"
	"cyberxp/cybersys"
	"cyberxp/model"
	"cyberxp/xp"
)

// SystemFactory builds one independently-instantiated cyber system for
// training worker workerID. Each worker needs its own live system - they
// must never share mutable system state - but all workers learn into the
// same model registry, role and agent.
type SystemFactory func(workerID int) (cybersys.CyberSystem, error)

// episodeResult is what a training worker hands back to the estimator: the
// completed trajectory plus the per-transition reward and next-action set
// BackUp needs.
type episodeResult struct {
	episode     *xp.Episode
	rewards     []int
	nextActions [][]*model.Action
}

// TrainConcurrently runs nworkers independent episode-generating loops
// against goal, each driving its own SystemFactory-built system, and funnels
// their completed episodes through channerics.Merge to a single estimator
// loop that is the only thing that ever calls ag.BackUp - serializing
// value-table updates the same way the teacher's vanilla alpha-MC estimator
// serializes its state-value updates, so concurrently generated experience
// never interleaves into a corrupted reverse-order back-up.
func TrainConcurrently(
	ctx context.Context,
	registry *model.Registry,
	role *xp.Role,
	xpr *xp.Experience,
	ag agent.Agent,
	goal string,
	makeSystem SystemFactory,
	nworkers, episodesPerWorker int,
) (AgentStats, error) {
	done := ctx.Done()

	workers := make([]<-chan episodeResult, 0, nworkers)
	for i := 0; i < nworkers; i++ {
		system, err := makeSystem(i)
		if err != nil {
			return AgentStats{}, fmt.Errorf("building worker %d system: %w", i, err)
		}
		if err := system.Initialize(false); err != nil {
			return AgentStats{}, fmt.Errorf("initializing worker %d system: %w", i, err)
		}

		worker := NewCyberSystemAgent(fmt.Sprintf("worker-%d", i), registry, system)
		if err := worker.AddNewGoal(goal, role); err != nil {
			return AgentStats{}, fmt.Errorf("registering goal for worker %d: %w", i, err)
		}
		worker.Agents[goal] = ag
		worker.LearningEnabled = false

		workers = append(workers, runTrainingWorker(done, worker, role, episodesPerWorker))
	}

	results := channerics.Merge(done, workers...)

	stats := AgentStats{}
	for result := range results {
		ag.BackUp(result.episode.Transitions, result.rewards, result.nextActions)
		xpr.StoreEpisode(result.episode, true)

		stats.EpisodeCount++
		stats.TotalSteps += len(result.episode.Transitions)
		switch result.episode.Result {
		case xp.Succeeded:
			stats.SuccessCount++
		case xp.Failed:
			stats.FailureCount++
		case xp.Deadlock:
			stats.DeadlockCount++
		}
	}
	return stats, nil
}

// runTrainingWorker drives worker through episodesPerWorker episodes,
// emitting each one as soon as it terminates.
func runTrainingWorker(done <-chan struct{}, worker *CyberSystemAgent, role *xp.Role, episodes int) <-chan episodeResult {
	out := make(chan episodeResult)
	go func() {
		defer close(out)
		for i := 0; i < episodes; i++ {
			select {
			case <-done:
				return
			default:
			}

			if err := worker.System.Reset(); err != nil {
				return
			}
			state, err := worker.System.InterpretSystemState()
			if err != nil {
				return
			}
			worker.StartEpisode(state)

			for {
				info, err := worker.Act()
				if err != nil {
					return
				}
				if info.IsTerminal() {
					break
				}
			}

			episode := worker.CurrentEpisode
			if episode == nil || len(episode.Transitions) == 0 {
				continue
			}

			n := len(episode.Transitions)
			rewards := make([]int, n)
			nextActions := make([][]*model.Action, n)
			for j, t := range episode.Transitions {
				rewards[j] = role.GetStateInfo(t.EndState).Reward
				nextActions[j] = worker.System.AvailableActions(worker.CurrentGoal(), worker.SmartActionSelection)
			}

			select {
			case out <- episodeResult{episode: episode, rewards: rewards, nextActions: nextActions}:
			case <-done:
				return
			}
		}
	}()
	return out
}
