// Package gameclock holds the pure time conversions between real time, the
// game's fixed-offset clock, and the logical "game day" that rolls over at
// the daily reset rather than at midnight.
//
// Game-time instants are represented as time.Time values in UTC whose wall
// clock reads game time; ToLocalTime undoes the shift to recover the true
// instant. All reset arithmetic happens in plain UTC.
package gameclock

import (
	"fmt"
	"time"

	"gamecal/internal/model"
)

const (
	// TimezoneOffsetHours is the fixed offset of the game clock from UTC;
	// game time trails UTC by two hours.
	TimezoneOffsetHours = -2

	// DailyResetHour is the hour of day, in game time, at which the logical
	// game day rolls over.
	DailyResetHour = 5

	// resetHourUTC is the daily reset expressed in true UTC: 05:00 game time
	// at UTC-2 is 07:00 UTC.
	resetHourUTC = DailyResetHour - TimezoneOffsetHours
)

// biWeeklyReference anchors the fixed 14-day cadence; it is a known reset
// boundary instant.
var biWeeklyReference = time.Date(2024, time.July, 29, resetHourUTC, 0, 0, 0, time.UTC)

// GameTime shifts a real instant onto the game clock.
func GameTime(real time.Time) time.Time {
	return real.UTC().Add(TimezoneOffsetHours * time.Hour)
}

// ToLocalTime recovers the true instant a game-time value corresponds to; it
// is the exact inverse of GameTime. The caller renders it in whatever
// display timezone it likes.
func ToLocalTime(game time.Time) time.Time {
	return game.Add(-TimezoneOffsetHours * time.Hour)
}

// GameDay returns the logical game day of a real instant. Game-time hours
// before the daily reset still belong to the previous day's schedule.
func GameDay(real time.Time) model.CivilDate {
	g := GameTime(real)
	if g.Hour() < DailyResetHour {
		g = g.AddDate(0, 0, -1)
	}
	return model.DateOf(g)
}

// DayStart returns the game-time instant at which the given game day begins.
func DayStart(day model.CivilDate) time.Time {
	return time.Date(day.Year, day.Month, day.Day, DailyResetHour, 0, 0, 0, time.UTC)
}

// DayEnd returns the exclusive end of the game day, 24 hours after DayStart.
func DayEnd(day model.CivilDate) time.Time {
	return DayStart(day).Add(24 * time.Hour)
}

// NextDailyReset returns the next daily reset boundary strictly after from.
// An instant exactly on a boundary advances to the following one.
func NextDailyReset(from time.Time) time.Time {
	from = from.UTC()
	next := time.Date(from.Year(), from.Month(), from.Day(), resetHourUTC, 0, 0, 0, time.UTC)
	if !from.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextWeeklyReset returns the next Monday daily-reset boundary strictly
// after from.
func NextWeeklyReset(from time.Time) time.Time {
	from = from.UTC()
	next := time.Date(from.Year(), from.Month(), from.Day(), resetHourUTC, 0, 0, 0, time.UTC)

	daysUntilMonday := (int(time.Monday) + 7 - int(next.Weekday())) % 7
	if daysUntilMonday == 0 && !from.Before(next) {
		daysUntilMonday = 7
	}
	return next.AddDate(0, 0, daysUntilMonday)
}

// NextBiWeeklyReset returns the next boundary of the fixed 14-day cadence at
// or after from, stepping forward from the reference reset instant.
func NextBiWeeklyReset(from time.Time) time.Time {
	next := biWeeklyReference
	for next.Before(from) {
		next = next.Add(14 * 24 * time.Hour)
	}
	return next
}

// WeekParity returns the parity of the ISO week number (Monday-start) that
// the instant falls in, under game time.
func WeekParity(real time.Time) model.Rotation {
	return DayParity(model.DateOf(GameTime(real)))
}

// DayParity is WeekParity for an already-resolved game day.
func DayParity(day model.CivilDate) model.Rotation {
	_, week := day.Time().ISOWeek()
	if week%2 == 0 {
		return model.RotationEven
	}
	return model.RotationOdd
}

// WeekStart returns the Monday of the ISO week containing day.
func WeekStart(day model.CivilDate) model.CivilDate {
	back := (int(day.Weekday()) + 6) % 7 // Monday is 0
	return day.AddDays(-back)
}

// FormatDuration renders a countdown as HH:MM:SS. Negative durations clamp
// to zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatDurationDays renders a long countdown as "Nd HHh MMm", dropping the
// day part when it is zero.
func FormatDurationDays(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	if days > 0 {
		return fmt.Sprintf("%dd %02dh %02dm", days, hours, minutes)
	}
	return fmt.Sprintf("%02dh %02dm", hours, minutes)
}
