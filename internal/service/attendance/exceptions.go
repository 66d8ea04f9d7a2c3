package attendance

import (
	"fmt"
	"time"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/config"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/user"
)

// DetectExceptions runs the four detection rules over the inclusive
// [start, end] window and returns every finding. Results carry no IDs or
// workflow status: persistence assigns those on upsert.
//
// Rule order matters only for readability of the output. Absent findings come
// first, then late, then forgotten checkouts, then the repeated-lateness
// pattern.
func DetectExceptions(members []user.User, records []attendance.Record, start, end, now time.Time, rules config.AttendanceRules) []attendance.Exception {
	start = dateOnly(start)
	end = dateOnly(end)
	today := dateOnly(now)

	perUser := make(map[string][]attendance.Record, len(members))
	for _, rec := range records {
		perUser[rec.UserID] = append(perUser[rec.UserID], rec)
	}

	var findings []attendance.Exception

	for _, member := range members {
		name := member.FullName
		userRecords := perUser[member.ID]

		recordedDays := make(map[string]bool)
		for _, rec := range userRecords {
			recordedDays[dayKey(rec.CheckInTime)] = true
		}

		// Absent: a business day strictly before today with no records at
		// all. Today is excluded because the user may simply not have
		// checked in yet. Weekends never produce absences.
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if rules.IsWeekend(d) || !d.Before(today) {
				continue
			}
			if recordedDays[dayKey(d)] {
				continue
			}
			findings = append(findings, attendance.Exception{
				UserID:   member.ID,
				UserName: &name,
				Date:     d,
				Type:     attendance.ExceptionAbsent,
				Details:  "no check-in recorded",
			})
		}

		// Late: evaluated per record, not per day. Two late check-ins on
		// the same day are two findings.
		lateCount := 0
		for _, rec := range userRecords {
			if isOnTime(rec.CheckInTime, rules) {
				continue
			}
			lateCount++
			findings = append(findings, attendance.Exception{
				UserID:   member.ID,
				UserName: &name,
				Date:     dateOnly(rec.CheckInTime),
				Type:     attendance.ExceptionLate,
				Details: fmt.Sprintf("checked in at %s, expected by %02d:%02d",
					rec.CheckInTime.Format("15:04"), rules.WorkStartHour, rules.LateThresholdMinutes),
			})
		}

		// Forgot checkout: the session was closed by the scheduler, not
		// the user.
		for _, rec := range userRecords {
			if !rec.AutoCheckout {
				continue
			}
			findings = append(findings, attendance.Exception{
				UserID:   member.ID,
				UserName: &name,
				Date:     dateOnly(rec.CheckInTime),
				Type:     attendance.ExceptionForgotCheckout,
				Details:  "session closed automatically",
			})
		}

		// Pattern: reaching the late threshold within the window produces
		// exactly one finding, dated today.
		if lateCount >= rules.PatternLateThreshold {
			findings = append(findings, attendance.Exception{
				UserID:   member.ID,
				UserName: &name,
				Date:     today,
				Type:     attendance.ExceptionPattern,
				Details:  fmt.Sprintf("late %d times in the reporting window", lateCount),
			})
		}
	}

	return findings
}

// CountExceptions tallies findings by type.
func CountExceptions(findings []attendance.Exception) attendance.ExceptionCounts {
	var counts attendance.ExceptionCounts
	for _, f := range findings {
		switch f.Type {
		case attendance.ExceptionAbsent:
			counts.Absent++
		case attendance.ExceptionLate:
			counts.Late++
		case attendance.ExceptionForgotCheckout:
			counts.ForgotCheckout++
		case attendance.ExceptionPattern:
			counts.Pattern++
		}
	}
	return counts
}
