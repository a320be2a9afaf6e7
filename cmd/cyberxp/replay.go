package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cyberxp/agent"
	"cyberxp/assistant"
	"cyberxp/logx"
	"cyberxp/persist"
)

var replayFlags struct {
	system   string
	track    string
	mark     string
	episodes int
	in       string
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Load a saved experience bundle and run it in inference-only mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, experience, role, cfg, err := persist.LoadExperience(replayFlags.in)
		if err != nil {
			return fmt.Errorf("loading experience bundle: %w", err)
		}

		build, err := buildSystemOn(registry, replayFlags.system, replayFlags.track, replayFlags.mark)
		if err != nil {
			return err
		}
		build.Role = role

		agentID := fmt.Sprintf("%s-replay", replayFlags.system)
		csAgent := assistant.NewCyberSystemAgent(agentID, registry, build.System)
		loaded := agent.NewQAgent(cfg)
		loaded.LoadValues(experience.StateActionValues())
		csAgent.SetCustomAgentMaker(func(goal string) agent.Agent { return loaded })
		if err := csAgent.AddNewGoal(build.Goal, build.Role); err != nil {
			return fmt.Errorf("registering goal %q: %w", build.Goal, err)
		}

		episodes := replayFlags.episodes
		if episodes <= 0 {
			episodes = 10
		}
		result, err := csAgent.Train(episodes, false)
		if err != nil {
			return fmt.Errorf("replaying: %w", err)
		}
		stats := csAgent.GetStatistics()
		logx.Log("replayed %d episodes against %q: last result %s, %d succeeded, %d failed, %d deadlocked",
			episodes, build.Goal, result, stats.SuccessCount, stats.FailureCount, stats.DeadlockCount)
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayFlags.in, "in", "", "path to the saved experience bundle (required)")
	replayCmd.Flags().StringVar(&replayFlags.system, "system", "", "system to replay: gridworld or tictactoe (required)")
	replayCmd.Flags().StringVar(&replayFlags.track, "track", "", "path to a gridworld track file (required for --system gridworld)")
	replayCmd.Flags().StringVar(&replayFlags.mark, "mark", "X", "mark to replay as, X or O (tictactoe only)")
	replayCmd.Flags().IntVar(&replayFlags.episodes, "episodes", 10, "number of episodes to run")
	_ = replayCmd.MarkFlagRequired("in")
	_ = replayCmd.MarkFlagRequired("system")

	rootCmd.AddCommand(replayCmd)
}
