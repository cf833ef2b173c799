// Package feed renders the event catalog as an iCalendar document so
// players can subscribe to it from a regular calendar client. Recurring
// schedules are expressed as RRULEs rather than pre-expanded instances,
// which keeps the feed small and lets the client do the recurrence math.
package feed

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"gamecal/internal/catalog"
	"gamecal/internal/gameclock"
	"gamecal/internal/model"
)

const (
	productID = "-//gamecal//event feed//EN"
	uidDomain = "gamecal"
)

// Calendar builds the iCalendar document for the whole catalog. All emitted
// times are real UTC instants; from anchors unbounded recurring schedules so
// clients are not asked to expand rules reaching arbitrarily far back.
func Calendar(cat *catalog.Catalog, from model.CivilDate) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Game Events")
	cal.SetXWRTimezone("UTC")

	stamp := gameclock.ToLocalTime(from.Time())
	for i := range cat.Events {
		ev := &cat.Events[i]
		addEvent(cal, ev, from, stamp)
	}
	return cal
}

func addEvent(cal *ical.Calendar, ev *model.EventDescriptor, from model.CivilDate, stamp time.Time) {
	if ev.Schedule.Kind == model.ScheduleNone {
		addAllDay(cal, ev, stamp)
		return
	}
	for i, w := range windows(ev, from) {
		addRecurring(cal, ev, w, i, stamp)
	}
}

// window is one contiguous span of days an event exists on. An open window
// has no Until.
type window struct {
	Start model.CivilDate
	Until time.Time // exclusive real instant, zero when open-ended
}

func windows(ev *model.EventDescriptor, from model.CivilDate) []window {
	if ranges := ev.Ranges(); len(ranges) > 0 {
		out := make([]window, 0, len(ranges))
		for _, r := range ranges {
			out = append(out, window{
				Start: r.Start,
				Until: gameclock.ToLocalTime(r.End.AddDays(1).Time()),
			})
		}
		return out
	}
	if ev.Availability != nil {
		w := window{Start: ev.Availability.Added}
		if w.Start.IsZero() || w.Start.Before(from) {
			w.Start = from
		}
		if !ev.Availability.Removed.IsZero() {
			w.Until = gameclock.ToLocalTime(ev.Availability.Removed.AddDays(1).Time())
		}
		return []window{w}
	}
	return []window{{Start: from}}
}

// addAllDay emits one all-day VEVENT per date range of an existence-only
// event. Availability-gated events get a single-day marker on the day they
// appeared.
func addAllDay(cal *ical.Calendar, ev *model.EventDescriptor, stamp time.Time) {
	ranges := ev.Ranges()
	if len(ranges) == 0 {
		if ev.Availability == nil || ev.Availability.Added.IsZero() {
			return
		}
		ranges = []model.DateRange{{Start: ev.Availability.Added, End: ev.Availability.Added}}
	}
	for i, r := range ranges {
		ve := cal.AddEvent(uid(ev.Name, "range", i))
		ve.SetDtStampTime(stamp)
		ve.SetSummary(ev.Name)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		ve.SetAllDayStartAt(r.Start.Time())
		ve.SetAllDayEndAt(r.End.AddDays(1).Time())
	}
}

// addRecurring emits the recurring VEVENTs of one window. A schedule
// generally produces one VEVENT per in-day slot: RRULEs can only step one
// fixed interval, so a 6-hourly schedule becomes four daily rules rather
// than an hourly rule that would bleed across the day boundary.
func addRecurring(cal *ical.Calendar, ev *model.EventDescriptor, w window, wi int, stamp time.Time) {
	s := ev.Schedule

	// Pure hourly repeats cleanly, everything else goes slot by slot.
	if s.Kind == model.ScheduleHourly && ev.BiWeeklyRotation == "" {
		start := slotStart(w.Start, model.ClockTime{Hour: 0, Minute: s.Minute})
		rule, ok := ruleString(rrule.ROption{Freq: rrule.HOURLY, Dtstart: start, Until: w.Until})
		if !ok {
			return
		}
		emit(cal, ev, uid(ev.Name, fmt.Sprintf("w%d", wi), 0), start, duration(ev, 0), rule, stamp)
		return
	}

	byday := weekdayRules(s)
	for si, slot := range slots(s) {
		day := firstMatching(w.Start, s, ev.BiWeeklyRotation)
		start := slotStart(day, slot.at)

		opt := rrule.ROption{Dtstart: start, Until: w.Until}
		switch {
		case ev.BiWeeklyRotation != "":
			opt.Freq = rrule.WEEKLY
			opt.Interval = 2
			opt.Byweekday = byday
			if len(opt.Byweekday) == 0 {
				opt.Byweekday = allWeekdays
			}
		case len(byday) > 0 && len(byday) < 7:
			opt.Freq = rrule.WEEKLY
			opt.Byweekday = byday
		default:
			opt.Freq = rrule.DAILY
		}

		rule, ok := ruleString(opt)
		if !ok {
			continue
		}
		emit(cal, ev, uid(ev.Name, fmt.Sprintf("w%d", wi), si), start, slot.dur(ev), rule, stamp)
	}
}

func emit(cal *ical.Calendar, ev *model.EventDescriptor, id string, start time.Time, dur time.Duration, rule string, stamp time.Time) {
	ve := cal.AddEvent(id)
	ve.SetDtStampTime(stamp)
	ve.SetSummary(ev.Name)
	if ev.Description != "" {
		ve.SetDescription(ev.Description)
	}
	ve.SetStartAt(start)
	if dur > 0 {
		ve.SetEndAt(start.Add(dur))
	}
	ve.AddRrule(rule)
}

// slot is one in-day start time and, for interval schedules, its length.
type slot struct {
	at  model.ClockTime
	end *model.ClockTime
}

func (sl slot) dur(ev *model.EventDescriptor) time.Duration {
	if sl.end != nil {
		d := time.Duration(sl.end.Hour-sl.at.Hour)*time.Hour +
			time.Duration(sl.end.Minute-sl.at.Minute)*time.Minute
		if d <= 0 {
			d += 24 * time.Hour
		}
		return d
	}
	return duration(ev, 0)
}

func duration(ev *model.EventDescriptor, fallback time.Duration) time.Duration {
	if ev.DurationMinutes > 0 {
		return time.Duration(ev.DurationMinutes) * time.Minute
	}
	return fallback
}

func slots(s model.Schedule) []slot {
	var out []slot
	switch s.Kind {
	case model.ScheduleHourly:
		for hour := 0; hour < 24; hour++ {
			out = append(out, slot{at: model.ClockTime{Hour: hour, Minute: s.Minute}})
		}
	case model.ScheduleMultiHourly:
		for k := 0; ; k++ {
			hour := s.OffsetHours + k*s.Hours
			if hour >= 24 {
				break
			}
			out = append(out, slot{at: model.ClockTime{Hour: hour, Minute: s.Minute}})
		}
	case model.ScheduleDailySpecific:
		for _, t := range s.Times {
			out = append(out, slot{at: t})
		}
	case model.ScheduleDailyIntervals, model.ScheduleDailyIntervalsSpecific:
		for _, iv := range s.Intervals {
			end := iv.End
			out = append(out, slot{at: iv.Start, end: &end})
		}
	}
	return out
}

var allWeekdays = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// weekdayRules maps catalog weekdays (0=Sunday) to RRULE BYDAY values.
func weekdayRules(s model.Schedule) []rrule.Weekday {
	if s.Kind != model.ScheduleDailySpecific && s.Kind != model.ScheduleDailyIntervalsSpecific {
		return nil
	}
	byNum := [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}
	seen := make(map[int]bool)
	var out []rrule.Weekday
	for _, d := range s.Days {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, byNum[d])
	}
	return out
}

// firstMatching advances the anchor day until the schedule runs on it and,
// for rotating events, until the containing week has the wanted parity.
// DTSTART must be an actual instance or clients disagree on the first hit.
func firstMatching(day model.CivilDate, s model.Schedule, rot model.Rotation) model.CivilDate {
	for i := 0; i < 21; i++ {
		d := day.AddDays(i)
		if rot != "" && gameclock.DayParity(d) != rot {
			continue
		}
		if s.RunsEveryDay() || s.OnWeekday(d.Weekday()) {
			return d
		}
	}
	return day
}

// slotStart converts a game-time wall clock point on a game day to the real
// UTC instant clients consume.
func slotStart(day model.CivilDate, at model.ClockTime) time.Time {
	game := time.Date(day.Year, day.Month, day.Day, at.Hour, at.Minute, 0, 0, time.UTC)
	return gameclock.ToLocalTime(game)
}

func ruleString(opt rrule.ROption) (string, bool) {
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return "", false
	}
	return r.OrigOptions.RRuleString(), true
}

// uid builds a stable VEVENT identifier from the event name.
func uid(name, part string, i int) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, name)
	return fmt.Sprintf("%s-%s-%d@%s", slug, part, i, uidDomain)
}
