package timeline

import (
	"testing"
	"time"

	"gamecal/internal/catalog"
	"gamecal/internal/model"
)

func intervalSchedule() model.Schedule {
	return model.Schedule{
		Kind: model.ScheduleDailyIntervals,
		Intervals: []model.Interval{{
			Start: model.ClockTime{Hour: 12, Minute: 0},
			End:   model.ClockTime{Hour: 13, Minute: 0},
		}},
	}
}

func TestWeekLaunchWeek(t *testing.T) {
	cat := &catalog.Catalog{}

	sched := Week(cat, date(2025, time.October, 9), WeekOptions{})
	if sched.WeekStart != date(2025, time.October, 6) {
		t.Fatalf("WeekStart = %v", sched.WeekStart)
	}
	if sched.GameWeek != 1 {
		t.Errorf("GameWeek = %d, want 1", sched.GameWeek)
	}
	for i, d := range sched.Days {
		wantPre := i < 3 // Monday..Wednesday precede the Thursday launch
		if d.PreLaunch != wantPre {
			t.Errorf("day %d PreLaunch = %v, want %v", i, d.PreLaunch, wantPre)
		}
	}
}

func TestWeekMetadata(t *testing.T) {
	sched := Week(&catalog.Catalog{}, date(2025, time.October, 15), WeekOptions{})
	if sched.WeekStart != date(2025, time.October, 13) {
		t.Fatalf("WeekStart = %v", sched.WeekStart)
	}
	if sched.GameWeek != 2 {
		t.Errorf("GameWeek = %d, want 2", sched.GameWeek)
	}
	if sched.CalendarWeek != 42 {
		t.Errorf("CalendarWeek = %d, want 42", sched.CalendarWeek)
	}
	if sched.Parity != model.RotationEven {
		t.Errorf("Parity = %v, want even", sched.Parity)
	}
}

func TestWeekSpanGrouping(t *testing.T) {
	cat := &catalog.Catalog{Events: []model.EventDescriptor{
		{
			// Runs Wednesday through Friday of the viewed week: one bar.
			Name:     "Three Day Run",
			Category: model.CategoryEvent,
			Schedule: intervalSchedule(),
			DateRange: &model.DateRange{
				Start: date(2025, time.October, 15),
				End:   date(2025, time.October, 17),
			},
		},
		{
			// Only live on Tuesdays: a single-day category slot.
			Name:     "Tuesday Only",
			Category: model.CategorySocial,
			Schedule: model.Schedule{
				Kind: model.ScheduleDailyIntervalsSpecific,
				Days: []int{2},
				Intervals: []model.Interval{{
					Start: model.ClockTime{Hour: 14, Minute: 0},
					End:   model.ClockTime{Hour: 15, Minute: 0},
				}},
			},
		},
	}}

	sched := Week(cat, date(2025, time.October, 13), WeekOptions{})

	if len(sched.MultiDay) != 1 {
		t.Fatalf("got %d bars, want 1", len(sched.MultiDay))
	}
	bar := sched.MultiDay[0]
	if bar.Event.Name != "Three Day Run" || bar.StartDay != 2 || bar.Span != 3 {
		t.Errorf("bar = %+v", bar)
	}

	// Tuesday is index 1 of a Monday-aligned week.
	slots := sched.Days[1].Slots
	if len(slots) != 1 || slots[0].Category != model.CategorySocial {
		t.Fatalf("Tuesday slots = %+v", slots)
	}
	if len(slots[0].Events) != 1 || slots[0].Events[0].Name != "Tuesday Only" {
		t.Errorf("Tuesday slot events = %+v", slots[0].Events)
	}
	for i, d := range sched.Days {
		if i == 1 {
			continue
		}
		if len(d.Slots) != 0 {
			t.Errorf("day %d has unexpected slots %+v", i, d.Slots)
		}
	}
}

func TestWeekExclusions(t *testing.T) {
	cat := &catalog.Catalog{Events: []model.EventDescriptor{
		{
			Name:     "Boarlet",
			Category: model.CategoryBoss,
			Schedule: model.Schedule{
				Kind:  model.ScheduleDailySpecific,
				Days:  allDays(),
				Times: []model.ClockTime{{Hour: 10, Minute: 0}},
			},
		},
		{
			Name:     "Season Banner",
			Category: model.CategoryEvent,
			Schedule: model.Schedule{Kind: model.ScheduleNone},
			DateRange: &model.DateRange{
				Start: date(2025, time.October, 9),
				End:   date(2025, time.November, 10),
			},
		},
		{
			// Odd rotation viewed in an even week: gated out entirely.
			Name:             "Crusade",
			Category:         model.CategoryWorldBossCrusade,
			Schedule:         intervalSchedule(),
			BiWeeklyRotation: model.RotationOdd,
		},
	}}

	sched := Week(cat, date(2025, time.October, 13), WeekOptions{})
	if len(sched.MultiDay) != 0 {
		t.Errorf("bars = %+v, want none", sched.MultiDay)
	}
	for i, d := range sched.Days {
		if len(d.Slots) != 0 {
			t.Errorf("day %d slots = %+v, want none", i, d.Slots)
		}
	}

	// The same rotation passes in the following, odd week.
	sched = Week(cat, date(2025, time.October, 20), WeekOptions{})
	found := false
	for _, bar := range sched.MultiDay {
		if bar.Event.Name == "Crusade" {
			found = true
			if bar.StartDay != 0 || bar.Span != 7 {
				t.Errorf("crusade bar = %+v, want full week", bar)
			}
		}
	}
	if !found {
		t.Error("crusade missing from its own rotation week")
	}
}

func TestWeekOptions(t *testing.T) {
	cat := &catalog.Catalog{Events: []model.EventDescriptor{
		{
			// Permanent, every day: a full-week bar.
			Name:     "Daily Grind",
			Category: model.CategoryGuild,
			Schedule: intervalSchedule(),
		},
		{
			Name:     "Limited Run",
			Category: model.CategoryEvent,
			Schedule: intervalSchedule(),
			DateRange: &model.DateRange{
				Start: date(2025, time.October, 14),
				End:   date(2025, time.October, 16),
			},
		},
	}}
	day := date(2025, time.October, 13)

	sched := Week(cat, day, WeekOptions{})
	if len(sched.MultiDay) != 2 {
		t.Fatalf("got %d bars, want 2", len(sched.MultiDay))
	}

	sched = Week(cat, day, WeekOptions{HideAllWeek: true})
	if len(sched.MultiDay) != 1 || sched.MultiDay[0].Event.Name != "Limited Run" {
		t.Errorf("HideAllWeek bars = %+v", sched.MultiDay)
	}

	sched = Week(cat, day, WeekOptions{LimitedOnly: true})
	if len(sched.MultiDay) != 1 || sched.MultiDay[0].Event.Name != "Limited Run" {
		t.Errorf("LimitedOnly bars = %+v", sched.MultiDay)
	}
}

func TestWeekHideAllWeekSparesPartialSchedules(t *testing.T) {
	cat := &catalog.Catalog{Events: []model.EventDescriptor{
		{
			// Every-day schedule spanning the visible launch week: hidden.
			Name:     "Daily Grind",
			Category: model.CategoryGuild,
			Schedule: intervalSchedule(),
		},
		{
			// Thursday through Sunday also fills the visible launch week, but
			// the schedule itself is weekday-bound, so the bar stays.
			Name:     "Weekend Hunt",
			Category: model.CategoryGuild,
			Schedule: model.Schedule{
				Kind: model.ScheduleDailyIntervalsSpecific,
				Days: []int{4, 5, 6, 0},
				Intervals: []model.Interval{{
					Start: model.ClockTime{Hour: 14, Minute: 0},
					End:   model.ClockTime{Hour: 16, Minute: 0},
				}},
			},
		},
	}}

	sched := Week(cat, date(2025, time.October, 9), WeekOptions{HideAllWeek: true})
	if len(sched.MultiDay) != 1 || sched.MultiDay[0].Event.Name != "Weekend Hunt" {
		t.Fatalf("HideAllWeek bars = %+v, want only Weekend Hunt", sched.MultiDay)
	}
	bar := sched.MultiDay[0]
	if bar.StartDay != 3 || bar.Span != 4 {
		t.Errorf("bar = %+v, want Thursday through Sunday", bar)
	}
}

func TestWeekBarOrder(t *testing.T) {
	threeDays := func(start, end int) *model.DateRange {
		return &model.DateRange{
			Start: date(2025, time.October, start),
			End:   date(2025, time.October, end),
		}
	}
	cat := &catalog.Catalog{Events: []model.EventDescriptor{
		{
			Name:     "Daily Grind",
			Category: model.CategoryGuild,
			Schedule: intervalSchedule(),
		},
		{
			Name:      "Zither Recital",
			Category:  model.CategoryEvent,
			Schedule:  intervalSchedule(),
			DateRange: threeDays(15, 17),
		},
		{
			Name:      "Autumn Hunt",
			Category:  model.CategoryEvent,
			Schedule:  intervalSchedule(),
			DateRange: threeDays(14, 16),
		},
	}}

	sched := Week(cat, date(2025, time.October, 13), WeekOptions{})
	if len(sched.MultiDay) != 3 {
		t.Fatalf("got %d bars, want 3", len(sched.MultiDay))
	}
	// Shorter bars first; equal spans fall back to category then name, not to
	// the day they start on.
	want := []string{"Autumn Hunt", "Zither Recital", "Daily Grind"}
	for i, name := range want {
		if sched.MultiDay[i].Event.Name != name {
			t.Errorf("bar %d = %q, want %q", i, sched.MultiDay[i].Event.Name, name)
		}
	}
}
