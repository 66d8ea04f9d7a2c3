package permission

import "time"

// Grant is one (role, permission) row. System grants are seeded at startup
// and cannot be deleted through the API.
type Grant struct {
	ID         string
	Role       string
	Permission string
	IsSystem   bool
	CreatedAt  time.Time
}

// Matrix maps role name to the sorted permission names it holds. The admin
// role never appears here; it is short-circuited to allow everything.
type Matrix map[string][]string

// Permission names used by the server-side guards.
const (
	PermAttendanceViewOwn = "attendance.view_own"
	PermAttendanceCheckIn = "attendance.check_in"
	PermAttendanceViewAll = "attendance.view_all"
	PermAttendanceAdjust  = "attendance.adjust"
	PermExceptionsView    = "exceptions.view"
	PermExceptionsManage  = "exceptions.manage"
	PermAnalyticsView     = "analytics.view"
	PermPermissionsView   = "permissions.view"
	PermPermissionsManage = "permissions.manage"
)

// DefaultGrants are the built-in role grants, seeded as system rows. Admin is
// intentionally absent: it resolves true without a lookup.
var DefaultGrants = []Grant{
	{Role: "manager", Permission: PermAttendanceViewOwn, IsSystem: true},
	{Role: "manager", Permission: PermAttendanceCheckIn, IsSystem: true},
	{Role: "manager", Permission: PermAttendanceViewAll, IsSystem: true},
	{Role: "manager", Permission: PermAttendanceAdjust, IsSystem: true},
	{Role: "manager", Permission: PermExceptionsView, IsSystem: true},
	{Role: "manager", Permission: PermExceptionsManage, IsSystem: true},
	{Role: "manager", Permission: PermAnalyticsView, IsSystem: true},
	{Role: "manager", Permission: PermPermissionsView, IsSystem: true},

	{Role: "member", Permission: PermAttendanceViewOwn, IsSystem: true},
	{Role: "member", Permission: PermAttendanceCheckIn, IsSystem: true},
}
