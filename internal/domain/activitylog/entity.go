package activitylog

import "time"

// Entry is one append-only audit row, written as a side effect of every
// mutating operation. Entries are never updated or deleted.
type Entry struct {
	ID          string
	Action      string
	EntityType  string
	EntityID    string
	Description string
	UserID      string
	CreatedAt   time.Time
}

// Actions recorded by the in-scope mutations.
const (
	ActionAttendanceCheckIn     = "attendance.check_in"
	ActionAttendanceCheckOut    = "attendance.check_out"
	ActionAttendanceAdjust      = "attendance.adjust"
	ActionAttendanceAutoClose   = "attendance.auto_checkout"
	ActionExceptionStatusChange = "attendance.exception_status"
	ActionPermissionGrant       = "permission.grant"
	ActionPermissionRevoke      = "permission.revoke"
)
