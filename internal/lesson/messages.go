package lesson

import (
	"github.com/lexikid/lexikid/internal/gateway"
)

// maxErrorDetailLength caps the diagnostic detail kept for unknown failures.
const maxErrorDetailLength = 200

// failureMessage maps a gateway failure kind to the message shown to the
// user. An unauthorized failure additionally makes the serving layer clear
// the stored credential; the other kinds keep it.
func failureMessage(kind gateway.FailureKind) string {
	switch kind {
	case gateway.FailureUnauthorized:
		return "Your magic key didn't work. Please ask a grown-up to enter it again."
	case gateway.FailureRateLimited:
		return "We're learning super fast! Let's take a little break and try again shortly."
	case gateway.FailureUnavailable:
		return "The word wizard is busy right now. Please try again in a moment."
	case gateway.FailureMalformed:
		return "Something went wrong making your words. Please try again."
	default:
		return "Oops, something unexpected happened. Please try again."
	}
}

func truncateDetail(detail string) string {
	if len(detail) <= maxErrorDetailLength {
		return detail
	}
	return detail[:maxErrorDetailLength] + "..."
}
