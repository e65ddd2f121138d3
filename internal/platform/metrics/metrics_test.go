package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew_IsolatedRegistries(t *testing.T) {
	a := New(prometheus.NewRegistry())
	b := New(prometheus.NewRegistry())

	a.MessagesSent.WithLabelValues("ride").Inc()
	a.IncrementDenial("send_in_thread", "kyc_required")

	assert.InDelta(t, 1, testutil.ToFloat64(a.MessagesSent.WithLabelValues("ride")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.MessagesSent.WithLabelValues("ride")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(a.Denials.WithLabelValues("send_in_thread", "kyc_required")), 0)
}
