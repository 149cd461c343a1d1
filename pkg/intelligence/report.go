package intelligence

import "github.com/mcpcrawl/mcpcrawl/pkg/model"

// handshakeResult carries what the initialize response told us.
type handshakeResult struct {
	protocolVersion string
	capabilities    map[string]any
	durationMS      int64
}

// probeOutcome is the result of invoking every listed tool with minimal
// arguments to classify it as working or failing.
type probeOutcome struct {
	working        []string
	failing        []string
	avgResponseMS  int64
	observedErrors []string
	authRequired   bool
}

// classifyHealth implements the four-valued health classification: it only
// ever sees a completed handshake (an earlier failure short-circuits to
// HealthUnknown in Collect before this is reached), so handshakeOK reflects
// that explicitly for testability rather than being inferred.
func classifyHealth(handshakeOK bool, toolCount, working, failing int, authRequired bool) model.HealthStatus {
	if !handshakeOK {
		return model.HealthUnknown
	}
	if authRequired {
		return model.HealthDegraded
	}
	if toolCount == 0 {
		return model.HealthHealthy
	}
	if failing == 0 {
		return model.HealthHealthy
	}
	if working == 0 {
		return model.HealthDown
	}
	return model.HealthDegraded
}
