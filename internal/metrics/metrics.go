package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_resolver",
			Name:      "transitions_total",
			Help:      "Total number of applied workflow transitions, partitioned by source and target state.",
		},
		[]string{"from", "to"},
	)

	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_resolver",
			Name:      "analyses_total",
			Help:      "Total number of completed analyses, partitioned by confidence level.",
		},
		[]string{"confidence"},
	)

	ticketsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_resolver",
			Name:      "tickets_total",
			Help:      "Total number of escalation tickets composed, partitioned by whether a remediation was attempted.",
		},
		[]string{"attempted"},
	)

	helpPromptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mirador_resolver",
			Name:      "help_prompts_total",
			Help:      "Total number of recorded failures that crossed the proactive help threshold.",
		},
	)

	commandDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mirador_resolver",
			Name:      "command_seconds",
			Help:      "Resolver command handling latency in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"command"},
	)
)

// Register attaches mirador-resolver collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		transitionsTotal,
		analysesTotal,
		ticketsTotal,
		helpPromptsTotal,
		commandDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveTransition counts one applied workflow transition.
func ObserveTransition(from, to string) {
	transitionsTotal.WithLabelValues(from, to).Inc()
}

// ObserveAnalysis counts a completed analysis by confidence level.
func ObserveAnalysis(confidence string) {
	if confidence == "" {
		confidence = "unknown"
	}
	analysesTotal.WithLabelValues(confidence).Inc()
}

// ObserveTicket counts a composed escalation ticket.
func ObserveTicket(attempted bool) {
	ticketsTotal.WithLabelValues(strconv.FormatBool(attempted)).Inc()
}

// ObserveHelpPrompt counts a failure that triggered proactive help.
func ObserveHelpPrompt() {
	helpPromptsTotal.Inc()
}

// ObserveCommand records how long a resolver command took to handle.
func ObserveCommand(command string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}
