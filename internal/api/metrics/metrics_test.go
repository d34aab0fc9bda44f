package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveToolCall(t *testing.T) {
	before := testutil.ToFloat64(ToolCallsTotal.WithLabelValues("get_roles", TransportMCP, "ok"))
	ObserveToolCall("get_roles", TransportMCP, "ok", time.Now())
	after := testutil.ToFloat64(ToolCallsTotal.WithLabelValues("get_roles", TransportMCP, "ok"))
	assert.Equal(t, before+1, after)
}

func TestObserveSeed(t *testing.T) {
	ObserveSeed("startup", true)
	ObserveSeed("call", false)
	assert.Equal(t, 1.0, testutil.ToFloat64(SeedRunsTotal.WithLabelValues("startup", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(SeedRunsTotal.WithLabelValues("call", "error")))
}
