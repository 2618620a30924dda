package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	GuardDecisions *prometheus.CounterVec
	SignIns        *prometheus.CounterVec
	SignUps        *prometheus.CounterVec
	ChatSends      *prometheus.CounterVec
	ChatLatency    *prometheus.HistogramVec
	ProfileResets  prometheus.Counter
}

// New creates the metrics on reg. A nil reg leaves them unregistered; tests
// pass a fresh registry so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GuardDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sahayak_guard_decisions_total",
			Help: "Route guard outcomes by requirement and decision",
		}, []string{"requirement", "decision"}),
		SignIns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sahayak_sign_ins_total",
			Help: "Sign-in attempts by result code",
		}, []string{"result"}),
		SignUps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sahayak_sign_ups_total",
			Help: "Sign-up attempts by result code",
		}, []string{"result"}),
		ChatSends: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sahayak_chat_sends_total",
			Help: "Chat messages sent by topic kind and outcome",
		}, []string{"kind", "outcome"}),
		ChatLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sahayak_chat_send_duration_seconds",
			Help:    "Time to get an assistant reply",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		ProfileResets: f.NewCounter(prometheus.CounterOpts{
			Name: "sahayak_profile_resets_total",
			Help: "Stored profiles cleared because they were missing or unreadable",
		}),
	}
}

// Result is the label for an attempt that ended in err. code is the error's
// classification, empty when it has none.
func Result(err error, code string) string {
	switch {
	case err == nil:
		return "ok"
	case code != "":
		return code
	default:
		return "error"
	}
}
