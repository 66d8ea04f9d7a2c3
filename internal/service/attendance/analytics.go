package attendance

import (
	"math"
	"sort"
	"time"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/config"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/user"
)

// round2 rounds half away from zero to 2 decimal places. All hour and
// percentage outputs pass through here.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// dateOnly truncates a timestamp to its calendar day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// isOnTime applies the work-start rule to a single check-in: on time iff the
// check-in hour is before WorkStartHour, or inside the grace period.
func isOnTime(checkIn time.Time, rules config.AttendanceRules) bool {
	if checkIn.Hour() < rules.WorkStartHour {
		return true
	}
	return checkIn.Hour() == rules.WorkStartHour && checkIn.Minute() <= rules.LateThresholdMinutes
}

// businessDays counts non-weekend days in the inclusive [start, end] window.
func businessDays(start, end time.Time, rules config.AttendanceRules) int {
	count := 0
	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		if !rules.IsWeekend(d) {
			count++
		}
	}
	return count
}

// dayAggregate collects one user's records for one calendar day.
type dayAggregate struct {
	hours    float64
	earliest time.Time
}

// groupByUserDay indexes records by user and calendar day of check-in.
// Hours are summed per day. The cap is NOT applied here: it applies after
// summing, so several short sessions cannot jointly exceed the daily limit.
func groupByUserDay(records []attendance.Record) map[string]map[string]*dayAggregate {
	perUser := make(map[string]map[string]*dayAggregate)
	for _, rec := range records {
		days, ok := perUser[rec.UserID]
		if !ok {
			days = make(map[string]*dayAggregate)
			perUser[rec.UserID] = days
		}

		key := dayKey(rec.CheckInTime)
		agg, ok := days[key]
		if !ok {
			agg = &dayAggregate{earliest: rec.CheckInTime}
			days[key] = agg
		}

		if rec.TotalHours != nil {
			agg.hours += *rec.TotalHours
		}
		if rec.CheckInTime.Before(agg.earliest) {
			agg.earliest = rec.CheckInTime
		}
	}
	return perUser
}

// BuildTeamAnalytics computes per-user and team-wide statistics over the
// inclusive [start, end] window. The on-time determination for a user-day is
// made only from that day's earliest check-in; the per-record late signal the
// exception detector emits is a different consumer and deliberately kept
// separate (see DetectExceptions).
func BuildTeamAnalytics(members []user.User, records []attendance.Record, start, end, now time.Time, rules config.AttendanceRules) attendance.TeamAnalytics {
	start = dateOnly(start)
	end = dateOnly(end)
	today := dateOnly(now)

	perUser := groupByUserDay(records)
	window := businessDays(start, end, rules)

	analytics := attendance.TeamAnalytics{
		TotalMembers: len(members),
		DailyStats:   make([]attendance.DailyStat, 0),
		UserStats:    make([]attendance.UserStat, 0, len(members)),
	}

	// Daily stats across every calendar day in the window.
	type dailyTotals struct {
		present int
		onTime  int
		hours   float64
	}
	daily := make(map[string]*dailyTotals)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		daily[dayKey(d)] = &dailyTotals{}
	}

	var (
		teamHours       float64
		presentUserDays int
		onTimeUserDays  int
	)

	for _, member := range members {
		days := perUser[member.ID]
		if len(days) > 0 {
			analytics.ActiveMembers++
		}

		stat := attendance.UserStat{
			UserID:   member.ID,
			UserName: member.FullName,
		}

		for key, agg := range days {
			capped := agg.hours
			if capped > rules.MaxDailyHours {
				capped = rules.MaxDailyHours
			}

			stat.DaysPresent++
			stat.TotalHours += capped
			teamHours += capped
			presentUserDays++

			onTime := isOnTime(agg.earliest, rules)
			if onTime {
				onTimeUserDays++
			} else {
				stat.DaysLate++
			}

			if totals, ok := daily[key]; ok {
				totals.present++
				totals.hours += capped
				if onTime {
					totals.onTime++
				}
			}
		}

		// Absent days mirror the exception rule: business days strictly
		// before today with no records. Weekends never count.
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if rules.IsWeekend(d) || !d.Before(today) {
				continue
			}
			if _, present := days[dayKey(d)]; !present {
				stat.DaysAbsent++
			}
		}

		if window > 0 {
			stat.AttendanceRate = round2(float64(stat.DaysPresent) / float64(window) * 100)
		}
		if stat.DaysPresent > 0 {
			stat.OnTimeRate = round2(float64(stat.DaysPresent-stat.DaysLate) / float64(stat.DaysPresent) * 100)
		}
		stat.TotalHours = round2(stat.TotalHours)

		analytics.UserStats = append(analytics.UserStats, stat)
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		totals := daily[dayKey(d)]
		analytics.DailyStats = append(analytics.DailyStats, attendance.DailyStat{
			Date:         dayKey(d),
			PresentCount: totals.present,
			OnTimeCount:  totals.onTime,
			LateCount:    totals.present - totals.onTime,
			TotalHours:   round2(totals.hours),
		})
	}

	analytics.TotalHours = round2(teamHours)
	if len(members) > 0 && window > 0 {
		analytics.AttendanceRate = round2(float64(presentUserDays) / float64(len(members)*window) * 100)
	}
	if presentUserDays > 0 {
		analytics.OnTimeRate = round2(float64(onTimeUserDays) / float64(presentUserDays) * 100)
	}

	// Stable order for user stats regardless of map iteration.
	sort.Slice(analytics.UserStats, func(i, j int) bool {
		return analytics.UserStats[i].UserName < analytics.UserStats[j].UserName
	})

	return analytics
}

// SessionHours computes the stored total for a closed session: the elapsed
// time capped at the daily limit, rounded to 2 decimals.
func SessionHours(checkIn, checkOut time.Time, rules config.AttendanceRules) float64 {
	hours := checkOut.Sub(checkIn).Hours()
	if hours > rules.MaxDailyHours {
		hours = rules.MaxDailyHours
	}
	if hours < 0 {
		hours = 0
	}
	return round2(hours)
}
