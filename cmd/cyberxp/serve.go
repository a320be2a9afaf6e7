package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"cyberxp/assistant"
	"cyberxp/logx"
	"cyberxp/metrics"
	"cyberxp/viz"
)

const metricsShutdownTimeout = 2 * time.Second

var serveFlags struct {
	system      string
	track       string
	mark        string
	addr        string
	metricsAddr string
	smart       bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Train a goal continuously while serving a live dashboard and metrics endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		build, err := buildSystem(serveFlags.system, serveFlags.track, serveFlags.mark)
		if err != nil {
			return err
		}

		agentID := fmt.Sprintf("%s-live", serveFlags.system)
		csAgent := assistant.NewCyberSystemAgent(agentID, build.Registry, build.System)
		csAgent.SmartActionSelection = serveFlags.smart
		if err := csAgent.AddNewGoal(build.Goal, build.Role); err != nil {
			return fmt.Errorf("registering goal %q: %w", build.Goal, err)
		}

		addr := serveFlags.addr
		if addr == "" {
			addr = appConfig.Server.Addr
		}
		metricsAddr := serveFlags.metricsAddr
		if metricsAddr == "" {
			metricsAddr = appConfig.Metrics.Addr
		}

		updates := make(chan []viz.EleUpdate, 8)
		initial := viz.StatsUpdates(map[string]assistant.AgentStats{build.Goal: csAgent.GetStatistics()})
		dashboard, err := viz.NewServer(addr, initial, updates)
		if err != nil {
			return fmt.Errorf("building dashboard server: %w", err)
		}

		registry := prometheus.NewRegistry()
		collectors := metrics.NewCollectors(registry)

		var metricsServer *http.Server
		if appConfig.Metrics.Enabled {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			metricsServer = &http.Server{Addr: metricsAddr, Handler: mux}
			go func() {
				logx.Log("serving metrics on %s", metricsAddr)
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logx.Error("metrics server: %v", err)
				}
			}()
		}

		go trainForever(ctx, csAgent, build.Goal, updates, collectors)

		logx.Log("serving dashboard on %s for goal %q", addr, build.Goal)
		err = dashboard.Serve(ctx)
		if metricsServer != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer shutdownCancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

// trainForever runs one episode at a time against goal until ctx is
// canceled, pushing each episode's updated stats to the dashboard and
// folding the delta into the Prometheus collectors.
func trainForever(ctx context.Context, csAgent *assistant.CyberSystemAgent, goal string, updates chan<- []viz.EleUpdate, collectors *metrics.Collectors) {
	prev := csAgent.GetStatistics()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := csAgent.Train(1, true); err != nil {
			logx.Error("training episode: %v", err)
			return
		}

		stats := csAgent.GetStatistics()
		collectors.Observe(goal, delta(prev, stats))
		prev = stats

		select {
		case updates <- viz.StatsUpdates(map[string]assistant.AgentStats{goal: stats}):
		case <-ctx.Done():
			return
		}
	}
}

func delta(prev, cur assistant.AgentStats) assistant.AgentStats {
	return assistant.AgentStats{
		EpisodeCount:  cur.EpisodeCount - prev.EpisodeCount,
		SuccessCount:  cur.SuccessCount - prev.SuccessCount,
		FailureCount:  cur.FailureCount - prev.FailureCount,
		DeadlockCount: cur.DeadlockCount - prev.DeadlockCount,
		StatesVisited: cur.StatesVisited,
		TotalSteps:    cur.TotalSteps - prev.TotalSteps,
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.system, "system", "", "system to serve: gridworld or tictactoe (required)")
	serveCmd.Flags().StringVar(&serveFlags.track, "track", "", "path to a gridworld track file (required for --system gridworld)")
	serveCmd.Flags().StringVar(&serveFlags.mark, "mark", "X", "mark to train as, X or O (tictactoe only)")
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "dashboard listen address (defaults to the configured server.addr)")
	serveCmd.Flags().StringVar(&serveFlags.metricsAddr, "metrics-addr", "", "metrics listen address (defaults to the configured metrics.addr)")
	serveCmd.Flags().BoolVar(&serveFlags.smart, "smart", true, "narrow available actions to the agent's heuristic best guess")
	_ = serveCmd.MarkFlagRequired("system")

	rootCmd.AddCommand(serveCmd)
}
