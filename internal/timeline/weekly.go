package timeline

import (
	"sort"

	"gamecal/internal/catalog"
	"gamecal/internal/expand"
	"gamecal/internal/gameclock"
	"gamecal/internal/model"
)

// WeekOptions filter the week view.
type WeekOptions struct {
	// HideAllWeek drops every-day events whose bar spans the whole visible
	// week, which would otherwise crowd out the things that actually vary day
	// to day. Time-limited events keep their bar even when it covers the week.
	HideAllWeek bool
	// LimitedOnly keeps only time-limited (date-ranged) events.
	LimitedOnly bool
}

// WeekSchedule is the Monday-aligned week view: per-day single-day slots
// grouped by category plus bars for events running several days in a row.
type WeekSchedule struct {
	WeekStart    model.CivilDate `json:"week_start"`
	GameWeek     int             `json:"game_week"`
	CalendarWeek int             `json:"calendar_week"`
	Parity       model.Rotation  `json:"parity"`

	Days     [7]WeekDay `json:"days"`
	MultiDay []WeekBar  `json:"multi_day"`
}

// WeekDay is one column of the week view. PreLaunch days precede the game's
// launch and carry no slots.
type WeekDay struct {
	Date      model.CivilDate `json:"date"`
	PreLaunch bool            `json:"pre_launch,omitempty"`
	Slots     []WeekSlot      `json:"slots,omitempty"`
}

// WeekSlot groups a day's single-day events by category.
type WeekSlot struct {
	Category model.Category `json:"category"`
	Events   []EventInfo    `json:"events"`
}

// WeekBar is an event active on two or more consecutive days. StartDay
// indexes into Days and Span counts days.
type WeekBar struct {
	Event    EventInfo `json:"event"`
	StartDay int       `json:"start_day"`
	Span     int       `json:"span"`
}

// Week builds the week view containing the given game day. Boss-category
// events and existence-only events (schedule kind none) are excluded; the
// bi-weekly rotation gate is applied against the viewed week's parity, not
// the current one.
func Week(cat *catalog.Catalog, day model.CivilDate, opts WeekOptions) WeekSchedule {
	weekStart := gameclock.WeekStart(day)
	launchWeek := gameclock.WeekStart(GameLaunch)

	sched := WeekSchedule{
		WeekStart: weekStart,
		GameWeek:  weekStart.DaysSince(launchWeek)/7 + 1,
		Parity:    gameclock.DayParity(weekStart),
	}
	_, sched.CalendarWeek = weekStart.Time().ISOWeek()

	firstVisible := 0
	for i := range sched.Days {
		d := weekStart.AddDays(i)
		sched.Days[i].Date = d
		if d.Before(GameLaunch) {
			sched.Days[i].PreLaunch = true
			firstVisible = i + 1
		}
	}

	type slotKey struct {
		day      int
		category model.Category
	}
	slots := make(map[slotKey][]EventInfo)

	for i := range cat.Events {
		ev := &cat.Events[i]
		if ev.Category == model.CategoryBoss || ev.Schedule.Kind == model.ScheduleNone {
			continue
		}
		if opts.LimitedOnly && !ev.TimeLimited() {
			continue
		}
		if ev.BiWeeklyRotation != "" && ev.BiWeeklyRotation != sched.Parity {
			continue
		}

		var active [7]bool
		for d := 0; d < 7; d++ {
			if sched.Days[d].PreLaunch {
				continue
			}
			active[d] = activeOn(ev, sched.Days[d].Date)
		}

		// Contiguous runs become bars; isolated days become category slots.
		for d := 0; d < 7; {
			if !active[d] {
				d++
				continue
			}
			span := 1
			for d+span < 7 && active[d+span] {
				span++
			}
			if span > 1 {
				hidden := opts.HideAllWeek && ev.Schedule.RunsEveryDay() &&
					d == firstVisible && d+span == 7
				if !hidden {
					sched.MultiDay = append(sched.MultiDay, WeekBar{
						Event:    infoOf(ev),
						StartDay: d,
						Span:     span,
					})
				}
			} else {
				k := slotKey{day: d, category: ev.Category}
				slots[k] = append(slots[k], infoOf(ev))
			}
			d += span
		}
	}

	for d := 0; d < 7; d++ {
		var daySlots []WeekSlot
		for key, evs := range slots {
			if key.day != d {
				continue
			}
			sort.Slice(evs, func(a, b int) bool { return evs[a].Name < evs[b].Name })
			daySlots = append(daySlots, WeekSlot{Category: key.category, Events: evs})
		}
		sort.Slice(daySlots, func(a, b int) bool {
			return rankOf(daySlots[a].Category) < rankOf(daySlots[b].Category)
		})
		sched.Days[d].Slots = daySlots
	}

	// Short bars first so the week-long backdrop events sink to the bottom.
	sort.Slice(sched.MultiDay, func(a, b int) bool {
		ba, bb := sched.MultiDay[a], sched.MultiDay[b]
		if ba.Span != bb.Span {
			return ba.Span < bb.Span
		}
		return infoLess(ba.Event, bb.Event)
	})
	return sched
}

// activeOn reports whether the event has at least one occurrence rooted on
// the given game day: it must exist that day and its schedule must run on
// that weekday.
func activeOn(ev *model.EventDescriptor, day model.CivilDate) bool {
	if !expand.ExistsOn(ev, day) {
		return false
	}
	return ev.Schedule.RunsEveryDay() || ev.Schedule.OnWeekday(day.Weekday())
}
