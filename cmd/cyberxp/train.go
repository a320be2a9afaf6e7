package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cyberxp/agent"
	"cyberxp/assistant"
	"cyberxp/logx"
	"cyberxp/persist"
)

var trainFlags struct {
	system   string
	track    string
	mark     string
	episodes int
	out      string
	smart    bool
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run training episodes against a system's goal and save the experience",
	RunE: func(cmd *cobra.Command, args []string) error {
		episodes := trainFlags.episodes
		if episodes <= 0 {
			episodes = appConfig.Training.Episodes
		}

		build, err := buildSystem(trainFlags.system, trainFlags.track, trainFlags.mark)
		if err != nil {
			return err
		}

		agentID := fmt.Sprintf("%s-trainer", trainFlags.system)
		csAgent := assistant.NewCyberSystemAgent(agentID, build.Registry, build.System)
		csAgent.SmartActionSelection = trainFlags.smart
		if err := csAgent.AddNewGoal(build.Goal, build.Role); err != nil {
			return fmt.Errorf("registering goal %q: %w", build.Goal, err)
		}

		result, err := csAgent.Train(episodes, true)
		if err != nil {
			return fmt.Errorf("training: %w", err)
		}
		stats := csAgent.GetStatistics()
		logx.Log("trained %d episodes against %q: last result %s, %d succeeded, %d failed, %d deadlocked",
			episodes, build.Goal, result, stats.SuccessCount, stats.FailureCount, stats.DeadlockCount)

		if trainFlags.out != "" {
			if err := persist.SaveExperience(trainFlags.out, build.Registry, csAgent.CurrentExperience(), csAgent.CurrentRole(), agent.DefaultConfig()); err != nil {
				return fmt.Errorf("saving experience: %w", err)
			}
			logx.Log("saved experience bundle to %s", trainFlags.out)
		}
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainFlags.system, "system", "", "system to train: gridworld or tictactoe (required)")
	trainCmd.Flags().StringVar(&trainFlags.track, "track", "", "path to a gridworld track file (required for --system gridworld)")
	trainCmd.Flags().StringVar(&trainFlags.mark, "mark", "X", "mark to train as, X or O (tictactoe only)")
	trainCmd.Flags().IntVar(&trainFlags.episodes, "episodes", 0, "number of episodes to run (defaults to the configured training.episodes)")
	trainCmd.Flags().StringVar(&trainFlags.out, "out", "", "path to save the trained experience bundle to")
	trainCmd.Flags().BoolVar(&trainFlags.smart, "smart", true, "narrow available actions to the agent's heuristic best guess")
	_ = trainCmd.MarkFlagRequired("system")

	rootCmd.AddCommand(trainCmd)
}
