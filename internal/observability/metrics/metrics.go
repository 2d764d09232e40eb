package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "powerwatch_"

// Label values for the result and kind labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	// ResultDenied marks a status query refused by the approval check.
	ResultDenied = "denied"
	// ResultDropped marks a status query that got no answer: stale, or
	// nothing to report yet.
	ResultDropped = "dropped"

	KindOutage       = "outage"
	KindBriefRestart = "brief_restart"
)

var (
	registerOnce sync.Once

	heartbeatWrites *prometheus.CounterVec
	lastHeartbeat   prometheus.Gauge

	reconciliations *prometheus.CounterVec
	lastOutage      prometheus.Gauge
	lastUptime      prometheus.Gauge

	commandsTotal *prometheus.CounterVec
)

// Init registers the service metrics with the default registry.  Calls to
// the Observe/Inc helpers before Init are no-ops.
func Init() {
	registerOnce.Do(func() {
		heartbeatWrites = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "heartbeat_writes_total",
				Help: "Heartbeat writes by result",
			},
			[]string{"result"},
		)
		lastHeartbeat = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "last_heartbeat_timestamp_seconds",
				Help: "Unix time of the last successful heartbeat write",
			},
		)

		reconciliations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconciliations_total",
				Help: "Startup reconciliations by kind (outage, brief_restart)",
			},
			[]string{"kind"},
		)
		lastOutage = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "last_outage_seconds",
				Help: "Power-off duration computed by the last reconciliation",
			},
		)
		lastUptime = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "last_uptime_seconds",
				Help: "Power-on duration computed by the last reconciliation",
			},
		)

		commandsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commands_total",
				Help: "Handled chat messages by command and result",
			},
			[]string{"command", "result"},
		)

		prometheus.MustRegister(
			heartbeatWrites,
			lastHeartbeat,
			reconciliations,
			lastOutage,
			lastUptime,
			commandsTotal,
		)
	})
}

// ObserveHeartbeat records one heartbeat write attempt made at t.
func ObserveHeartbeat(err error, t time.Time) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	if heartbeatWrites != nil {
		heartbeatWrites.WithLabelValues(result).Inc()
	}
	if err == nil && lastHeartbeat != nil {
		lastHeartbeat.Set(float64(t.Unix()))
	}
}

// ObserveReconciliation records the outcome of the startup reconciliation.
func ObserveReconciliation(kind string, timeOff, timeOn time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if reconciliations != nil {
		reconciliations.WithLabelValues(kind).Inc()
	}
	if lastOutage != nil {
		lastOutage.Set(timeOff.Seconds())
	}
	if lastUptime != nil {
		lastUptime.Set(timeOn.Seconds())
	}
}

// IncCommand counts one handled message.
func IncCommand(command, result string) {
	if command == "" {
		command = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if commandsTotal != nil {
		commandsTotal.WithLabelValues(command, result).Inc()
	}
}
