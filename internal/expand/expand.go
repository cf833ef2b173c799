// Package expand turns a declarative event schedule into the concrete
// occurrences of one game day. Expansion is a pure function of
// (event, game day): it holds no state, reads no clock, and never fails at
// query time once the catalog has passed validation.
package expand

import (
	"time"

	"gamecal/internal/gameclock"
	"gamecal/internal/model"
)

// DayOccurrences expands ev for the given game day, returning every
// occurrence whose start lies within the day's reset-to-reset window.
//
// Schedules are authored against calendar days, but the game day spans
// 05:00→05:00 game time, so occurrences near the boundary may be authored on
// the calendar day before or after. Candidates are generated for calendar
// offsets -1, 0 and +1 and then filtered to the window; duplicates sharing a
// start instant (possible near the boundary) are removed. Order of the
// result is unspecified.
func DayOccurrences(ev *model.EventDescriptor, day model.CivilDate) []model.Occurrence {
	if !ExistsOn(ev, day) {
		return nil
	}
	if ev.BiWeeklyRotation != "" && gameclock.DayParity(day) != ev.BiWeeklyRotation {
		return nil
	}

	dayStart := gameclock.DayStart(day)
	dayEnd := gameclock.DayEnd(day)

	var candidates []model.Occurrence
	for offset := -1; offset <= 1; offset++ {
		candidates = append(candidates, calendarDayOccurrences(ev, day.AddDays(offset))...)
	}

	seen := make(map[time.Time]bool, len(candidates))
	out := make([]model.Occurrence, 0, len(candidates))
	for _, occ := range candidates {
		if occ.Start.Before(dayStart) || !occ.Start.Before(dayEnd) {
			continue
		}
		if seen[occ.Start] {
			continue
		}
		seen[occ.Start] = true
		out = append(out, occ)
	}
	return out
}

// ExistsOn is the existence gate: availability bounds when set, otherwise
// the seasonal date ranges, otherwise always. Availability and date ranges
// are mutually exclusive gates by construction of the catalog; when both are
// present availability wins.
func ExistsOn(ev *model.EventDescriptor, day model.CivilDate) bool {
	if ev.Availability != nil {
		return ev.Availability.Contains(day)
	}
	if ranges := ev.Ranges(); len(ranges) > 0 {
		for _, r := range ranges {
			if r.Contains(day) {
				return true
			}
		}
		return false
	}
	// No gate fields means always available, not never.
	return true
}

// calendarDayOccurrences expands the schedule for one authored calendar day.
func calendarDayOccurrences(ev *model.EventDescriptor, date model.CivilDate) []model.Occurrence {
	s := ev.Schedule
	var out []model.Occurrence

	switch s.Kind {
	case model.ScheduleHourly:
		for hour := 0; hour < 24; hour++ {
			out = append(out, timed(ev, at(date, hour, s.Minute)))
		}

	case model.ScheduleMultiHourly:
		for k := 0; ; k++ {
			hour := s.OffsetHours + k*s.Hours
			if hour >= 24 {
				break
			}
			out = append(out, timed(ev, at(date, hour, s.Minute)))
		}

	case model.ScheduleDailySpecific:
		if !s.OnWeekday(date.Weekday()) {
			break
		}
		for _, t := range s.Times {
			out = append(out, timed(ev, at(date, t.Hour, t.Minute)))
		}

	case model.ScheduleDailyIntervals:
		out = append(out, intervalOccurrences(s.Intervals, date)...)

	case model.ScheduleDailyIntervalsSpecific:
		if s.OnWeekday(date.Weekday()) {
			out = append(out, intervalOccurrences(s.Intervals, date)...)
		}

	case model.ScheduleNone:
		// The event is represented purely by its existence window.
	}
	return out
}

func intervalOccurrences(intervals []model.Interval, date model.CivilDate) []model.Occurrence {
	out := make([]model.Occurrence, 0, len(intervals))
	for _, iv := range intervals {
		start := at(date, iv.Start.Hour, iv.Start.Minute)
		end := at(date, iv.End.Hour, iv.End.Minute)
		if end.Before(start) {
			// The interval crosses midnight: the end belongs to the next
			// calendar day, the start stays on the authored one.
			end = end.AddDate(0, 0, 1)
		}
		out = append(out, model.Occurrence{Start: start, End: &end})
	}
	return out
}

// timed builds an occurrence for a schedule shape without an explicit end,
// inferring one from the event's duration when present.
func timed(ev *model.EventDescriptor, start time.Time) model.Occurrence {
	occ := model.Occurrence{Start: start}
	if ev.DurationMinutes > 0 {
		end := start.Add(time.Duration(ev.DurationMinutes) * time.Minute)
		occ.End = &end
	}
	return occ
}

// at returns the game-time instant of a wall-clock point on a calendar day.
func at(date model.CivilDate, hour, minute int) time.Time {
	return time.Date(date.Year, date.Month, date.Day, hour, minute, 0, 0, time.UTC)
}
