package attendance

import "time"

// Record is one work session: created on check-in, closed on check-out or by
// the auto-checkout job. TotalHours is set only once CheckOutTime is set and
// always equals round2(min(out-in, daily cap)).
type Record struct {
	ID               string
	UserID           string
	CheckInTime      time.Time
	CheckOutTime     *time.Time
	TotalHours       *float64
	AutoCheckout     bool
	AdjustedBy       *string
	AdjustmentReason *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Join
	UserName *string
}

type ExceptionType string

const (
	ExceptionAbsent         ExceptionType = "absent"
	ExceptionLate           ExceptionType = "late"
	ExceptionForgotCheckout ExceptionType = "forgot_checkout"
	ExceptionPattern        ExceptionType = "pattern"
)

type ExceptionStatus string

const (
	ExceptionStatusNew          ExceptionStatus = "new"
	ExceptionStatusAcknowledged ExceptionStatus = "acknowledged"
	ExceptionStatusResolved     ExceptionStatus = "resolved"
)

// Exception classifies one user-day anomaly. Rows are upserted by the
// detector on report generation, so acknowledgements survive re-detection.
type Exception struct {
	ID        string
	UserID    string
	Date      time.Time
	Type      ExceptionType
	Details   string
	Status    ExceptionStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	UserName *string
}

// ValidExceptionTypes lists the accepted values of the type query filter.
var ValidExceptionTypes = []string{
	string(ExceptionAbsent),
	string(ExceptionLate),
	string(ExceptionForgotCheckout),
	string(ExceptionPattern),
}

// ValidExceptionStatuses lists the accepted exception workflow states.
var ValidExceptionStatuses = []string{
	string(ExceptionStatusNew),
	string(ExceptionStatusAcknowledged),
	string(ExceptionStatusResolved),
}
