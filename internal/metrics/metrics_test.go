package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterDomainMetrics_Idempotent(t *testing.T) {
	RegisterDomainMetrics()
	RegisterDomainMetrics()

	SearchesTotal.WithLabelValues("simple", "internal").Inc()
	if v := testutil.ToFloat64(SearchesTotal.WithLabelValues("simple", "internal")); v < 1 {
		t.Errorf("expected searches_total >= 1, got %f", v)
	}
}
