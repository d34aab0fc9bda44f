package handler

import (
	"time"

	"github.com/accessdesk/mediation-gateway/internal/api/metrics"
	"github.com/accessdesk/mediation-gateway/internal/gateway"
)

const outcomeOK = "ok"

// track records a finished tool call. outcome is "ok" or a gateway error code.
func track(tool, transport, outcome string, started time.Time) {
	metrics.ObserveToolCall(tool, transport, outcome, started)
	if tool == gateway.OpSeedDatabase {
		metrics.ObserveSeed("call", outcome == outcomeOK)
	}
}
