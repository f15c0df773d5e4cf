package receiver

import (
	"time"

	"github.com/llehouerou/notibus/internal/notification"
)

// Outcome is what happened to a single event.
type Outcome int

const (
	// OutcomeDelivered means the sink accepted the notification.
	OutcomeDelivered Outcome = iota
	// OutcomeRejected means the notification was not addressed to us.
	OutcomeRejected
	// OutcomeMalformed means the signal could not be decoded at all.
	OutcomeMalformed
	// OutcomeFailed means the sink returned an error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeRejected:
		return "rejected"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Record describes one handled event.
type Record struct {
	ReceivedAt     time.Time
	Sender         string
	Notification   notification.Notification // zero when Outcome is OutcomeMalformed
	Outcome        Outcome
	NotificationID uint32 // sink id, set when delivered
	Err            error
}
