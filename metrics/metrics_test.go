package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.SignIns.WithLabelValues(Result(nil, "")).Inc()
	m.ProfileResets.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SignIns.WithLabelValues("ok")))
	n, err := testutil.GatherAndCount(reg, "sahayak_sign_ins_total", "sahayak_profile_resets_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
	assert.NotPanics(t, func() { New(nil); New(nil) })
}

func TestResult(t *testing.T) {
	boom := errors.New("boom")
	assert.Equal(t, "ok", Result(nil, ""))
	assert.Equal(t, "auth/weak-password", Result(boom, "auth/weak-password"))
	assert.Equal(t, "error", Result(boom, ""))
}
