package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/user"
)

func findByType(findings []attendance.Exception, typ attendance.ExceptionType) []attendance.Exception {
	var matched []attendance.Exception
	for _, f := range findings {
		if f.Type == typ {
			matched = append(matched, f)
		}
	}
	return matched
}

func TestDetectExceptions_WeekScenario(t *testing.T) {
	rules := testRules()
	members := []user.User{{ID: "u1", FullName: "Ada"}}

	// Mon worked normally, Tue checked in late at 09:20, rest of the week
	// no records. Report runs on Sunday.
	records := []attendance.Record{
		record(t, "u1", "2024-01-01T08:55:00Z", 8),
		record(t, "u1", "2024-01-02T09:20:00Z", 8),
	}

	start := mustTime(t, "2024-01-01T00:00:00Z")
	end := mustTime(t, "2024-01-07T00:00:00Z")
	now := mustTime(t, "2024-01-07T10:00:00Z")

	findings := DetectExceptions(members, records, start, end, now, rules)

	absents := findByType(findings, attendance.ExceptionAbsent)
	require.Len(t, absents, 3)
	var absentDays []string
	for _, a := range absents {
		absentDays = append(absentDays, a.Date.Format("2006-01-02"))
	}
	// Wed through Fri only: the weekend never counts and Sunday is today.
	assert.Equal(t, []string{"2024-01-03", "2024-01-04", "2024-01-05"}, absentDays)

	lates := findByType(findings, attendance.ExceptionLate)
	require.Len(t, lates, 1)
	assert.Equal(t, "2024-01-02", lates[0].Date.Format("2006-01-02"))
	assert.Contains(t, lates[0].Details, "09:20")

	assert.Empty(t, findByType(findings, attendance.ExceptionForgotCheckout))
	assert.Empty(t, findByType(findings, attendance.ExceptionPattern))

	counts := CountExceptions(findings)
	assert.Equal(t, attendance.ExceptionCounts{Absent: 3, Late: 1}, counts)
}

func TestDetectExceptions_TodayIsNeverAbsent(t *testing.T) {
	rules := testRules()
	members := []user.User{{ID: "u1", FullName: "Ada"}}

	// Report run on Tuesday morning before the user checked in. Monday is
	// absent, Tuesday is not: the day is still in progress.
	start := mustTime(t, "2024-01-01T00:00:00Z")
	end := mustTime(t, "2024-01-02T00:00:00Z")
	now := mustTime(t, "2024-01-02T08:00:00Z")

	findings := DetectExceptions(members, nil, start, end, now, rules)

	absents := findByType(findings, attendance.ExceptionAbsent)
	require.Len(t, absents, 1)
	assert.Equal(t, "2024-01-01", absents[0].Date.Format("2006-01-02"))
}

func TestDetectExceptions_LateIsPerRecord(t *testing.T) {
	rules := testRules()
	members := []user.User{{ID: "u1", FullName: "Ada"}}

	// Two late check-ins on the same day are two findings.
	records := []attendance.Record{
		record(t, "u1", "2024-01-02T09:30:00Z", 3),
		record(t, "u1", "2024-01-02T14:00:00Z", 3),
	}

	start := mustTime(t, "2024-01-02T00:00:00Z")
	end := mustTime(t, "2024-01-02T00:00:00Z")
	now := mustTime(t, "2024-01-02T18:00:00Z")

	findings := DetectExceptions(members, records, start, end, now, rules)
	assert.Len(t, findByType(findings, attendance.ExceptionLate), 2)
}

func TestDetectExceptions_PatternAtThreshold(t *testing.T) {
	rules := testRules()
	members := []user.User{{ID: "u1", FullName: "Ada"}}

	records := []attendance.Record{
		record(t, "u1", "2024-01-01T09:30:00Z", 8),
		record(t, "u1", "2024-01-02T09:45:00Z", 8),
		record(t, "u1", "2024-01-03T10:00:00Z", 8),
	}

	start := mustTime(t, "2024-01-01T00:00:00Z")
	end := mustTime(t, "2024-01-05T00:00:00Z")
	now := mustTime(t, "2024-01-05T12:00:00Z")

	findings := DetectExceptions(members, records, start, end, now, rules)

	// Exactly three lates produce exactly one pattern finding, dated today.
	patterns := findByType(findings, attendance.ExceptionPattern)
	require.Len(t, patterns, 1)
	assert.Equal(t, "2024-01-05", patterns[0].Date.Format("2006-01-02"))
	assert.Contains(t, patterns[0].Details, "3 times")
	assert.Len(t, findByType(findings, attendance.ExceptionLate), 3)
}

func TestDetectExceptions_BelowPatternThreshold(t *testing.T) {
	rules := testRules()
	members := []user.User{{ID: "u1", FullName: "Ada"}}

	records := []attendance.Record{
		record(t, "u1", "2024-01-01T09:30:00Z", 8),
		record(t, "u1", "2024-01-02T09:45:00Z", 8),
		record(t, "u1", "2024-01-03T08:30:00Z", 8),
	}

	start := mustTime(t, "2024-01-01T00:00:00Z")
	end := mustTime(t, "2024-01-03T00:00:00Z")
	now := mustTime(t, "2024-01-04T00:00:00Z")

	findings := DetectExceptions(members, records, start, end, now, rules)
	assert.Empty(t, findByType(findings, attendance.ExceptionPattern))
}

func TestDetectExceptions_ForgotCheckout(t *testing.T) {
	rules := testRules()
	members := []user.User{{ID: "u1", FullName: "Ada"}}

	rec := record(t, "u1", "2024-01-02T09:00:00Z", 12)
	rec.AutoCheckout = true

	start := mustTime(t, "2024-01-02T00:00:00Z")
	end := mustTime(t, "2024-01-02T00:00:00Z")
	now := mustTime(t, "2024-01-03T00:00:00Z")

	findings := DetectExceptions(members, []attendance.Record{rec}, start, end, now, rules)

	forgotten := findByType(findings, attendance.ExceptionForgotCheckout)
	require.Len(t, forgotten, 1)
	assert.Equal(t, "2024-01-02", forgotten[0].Date.Format("2006-01-02"))
}

func TestDetectExceptions_MultipleUsersIndependent(t *testing.T) {
	rules := testRules()
	members := []user.User{
		{ID: "u1", FullName: "Ada"},
		{ID: "u2", FullName: "Grace"},
	}

	records := []attendance.Record{
		record(t, "u1", "2024-01-02T09:30:00Z", 8),
		record(t, "u2", "2024-01-02T08:30:00Z", 8),
	}

	start := mustTime(t, "2024-01-02T00:00:00Z")
	end := mustTime(t, "2024-01-02T00:00:00Z")
	now := mustTime(t, "2024-01-02T18:00:00Z")

	findings := DetectExceptions(members, records, start, end, now, rules)

	lates := findByType(findings, attendance.ExceptionLate)
	require.Len(t, lates, 1)
	assert.Equal(t, "u1", lates[0].UserID)
	require.NotNil(t, lates[0].UserName)
	assert.Equal(t, "Ada", *lates[0].UserName)
}

func TestDedupeFindings(t *testing.T) {
	day := mustTime(t, "2024-01-02T00:00:00Z")

	findings := []attendance.Exception{
		{UserID: "u1", Date: day, Type: attendance.ExceptionLate},
		{UserID: "u1", Date: day, Type: attendance.ExceptionLate},
		{UserID: "u1", Date: day, Type: attendance.ExceptionForgotCheckout},
		{UserID: "u2", Date: day, Type: attendance.ExceptionLate},
	}

	deduped := dedupeFindings(findings)
	assert.Len(t, deduped, 3)
}
