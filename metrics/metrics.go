// Package metrics exposes training progress as Prometheus collectors, so an
// operator can watch episode throughput and success rate the same way they'd
// watch any other long-running service rather than tailing logs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cyberxp/assistant"
)

// Collectors holds every metric cyberxp publishes, labeled by goal so a
// multi-goal agent's dashboards can be sliced per goal.
type Collectors struct {
	episodes      *prometheus.CounterVec
	successes     *prometheus.CounterVec
	failures      *prometheus.CounterVec
	deadlocks     *prometheus.CounterVec
	statesVisited *prometheus.GaugeVec
	totalSteps    *prometheus.GaugeVec
	episodeLength prometheus.Histogram
}

// NewCollectors registers a fresh set of collectors against registry.
func NewCollectors(registry prometheus.Registerer) *Collectors {
	factory := promauto.With(registry)
	return &Collectors{
		episodes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyberxp",
			Name:      "episodes_total",
			Help:      "Episodes completed, by goal.",
		}, []string{"goal"}),
		successes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyberxp",
			Name:      "episode_successes_total",
			Help:      "Episodes that ended in success, by goal.",
		}, []string{"goal"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyberxp",
			Name:      "episode_failures_total",
			Help:      "Episodes that ended in failure, by goal.",
		}, []string{"goal"}),
		deadlocks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyberxp",
			Name:      "episode_deadlocks_total",
			Help:      "Episodes cut short by deadlock detection, by goal.",
		}, []string{"goal"}),
		statesVisited: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cyberxp",
			Name:      "states_visited",
			Help:      "Distinct states visited so far, by goal.",
		}, []string{"goal"}),
		totalSteps: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cyberxp",
			Name:      "total_steps",
			Help:      "Total steps taken across all episodes, by goal.",
		}, []string{"goal"}),
		episodeLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cyberxp",
			Name:      "episode_length_steps",
			Help:      "Distribution of steps-per-episode across every goal.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// Observe folds stats for goal into the collectors. Episode, outcome and
// step counts are added to running totals, while StatesVisited replaces the
// gauge's value; so stats is either the increment since the previous Observe
// for goal or a single cumulative snapshot observed once. Observing the same
// cumulative snapshot twice double-counts.
func (c *Collectors) Observe(goal string, stats assistant.AgentStats) {
	c.episodes.WithLabelValues(goal).Add(float64(stats.EpisodeCount))
	c.successes.WithLabelValues(goal).Add(float64(stats.SuccessCount))
	c.failures.WithLabelValues(goal).Add(float64(stats.FailureCount))
	c.deadlocks.WithLabelValues(goal).Add(float64(stats.DeadlockCount))
	c.statesVisited.WithLabelValues(goal).Set(float64(stats.StatesVisited))
	c.totalSteps.WithLabelValues(goal).Add(float64(stats.TotalSteps))
	if stats.EpisodeCount > 0 {
		c.episodeLength.Observe(float64(stats.TotalSteps) / float64(stats.EpisodeCount))
	}
}

// ObserveEpisode records a single just-finished episode's step count,
// independent of the cumulative Observe snapshot above.
func (c *Collectors) ObserveEpisode(steps int) {
	c.episodeLength.Observe(float64(steps))
}

// Handler returns the http.Handler to mount at a metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
