package feed

import (
	"strings"
	"testing"
	"time"

	"gamecal/internal/catalog"
	"gamecal/internal/model"
)

func date(y int, m time.Month, d int) model.CivilDate {
	return model.CivilDate{Year: y, Month: m, Day: d}
}

func serialize(t *testing.T, cat *catalog.Catalog) string {
	t.Helper()
	return Calendar(cat, date(2025, time.October, 13)).Serialize()
}

func TestAllDayRangeEvent(t *testing.T) {
	cat := &catalog.Catalog{Events: []model.EventDescriptor{{
		Name:     "Silverstar Carnival",
		Category: model.CategoryEvent,
		Schedule: model.Schedule{Kind: model.ScheduleNone},
		DateRange: &model.DateRange{
			Start: date(2025, time.October, 9),
			End:   date(2025, time.November, 10),
		},
	}}}

	out := serialize(t, cat)
	if !strings.Contains(out, "SUMMARY:Silverstar Carnival") {
		t.Error("summary missing")
	}
	if !strings.Contains(out, "DTSTART;VALUE=DATE:20251009") {
		t.Errorf("all-day start missing:\n%s", out)
	}
	// DTEND is exclusive for all-day events.
	if !strings.Contains(out, "DTEND;VALUE=DATE:20251111") {
		t.Errorf("all-day end missing:\n%s", out)
	}
	if strings.Contains(out, "RRULE") {
		t.Error("existence-only event should not recur")
	}
}

func TestWeekdayScheduleEmitsWeeklyRule(t *testing.T) {
	cat := &catalog.Catalog{Events: []model.EventDescriptor{{
		Name:     "Dance Novice",
		Category: model.CategorySocial,
		Schedule: model.Schedule{
			Kind: model.ScheduleDailyIntervalsSpecific,
			Days: []int{1, 3},
			Intervals: []model.Interval{{
				Start: model.ClockTime{Hour: 14, Minute: 0},
				End:   model.ClockTime{Hour: 15, Minute: 0},
			}},
		},
	}}}

	out := serialize(t, cat)
	if !strings.Contains(out, "FREQ=WEEKLY") {
		t.Errorf("weekly rule missing:\n%s", out)
	}
	if !strings.Contains(out, "MO") || !strings.Contains(out, "WE") {
		t.Errorf("weekday list missing:\n%s", out)
	}
	// 14:00 game time is 16:00 UTC.
	if !strings.Contains(out, "T160000Z") {
		t.Errorf("start not shifted to real UTC:\n%s", out)
	}
}

func TestMultiHourlyBecomesPerSlotDailyRules(t *testing.T) {
	cat := &catalog.Catalog{Events: []model.EventDescriptor{{
		Name:     "Supply Drop",
		Category: model.CategoryEvent,
		Schedule: model.Schedule{Kind: model.ScheduleMultiHourly, Hours: 8, OffsetHours: 2},
	}}}

	out := serialize(t, cat)
	// Slots 02, 10, 18: three separate daily-recurring VEVENTs.
	if got := strings.Count(out, "FREQ=DAILY"); got != 3 {
		t.Errorf("got %d daily rules, want 3:\n%s", got, out)
	}
	if got := strings.Count(out, "BEGIN:VEVENT"); got != 3 {
		t.Errorf("got %d VEVENTs, want 3", got)
	}
}

func TestBoundedScheduleCarriesUntil(t *testing.T) {
	cat := &catalog.Catalog{Events: []model.EventDescriptor{{
		Name:     "Starlight Fireworks",
		Category: model.CategorySocial,
		Schedule: model.Schedule{
			Kind:  model.ScheduleDailySpecific,
			Days:  []int{0, 1, 2, 3, 4, 5, 6},
			Times: []model.ClockTime{{Hour: 1, Minute: 0}},
		},
		DurationMinutes: 10,
		DateRange: &model.DateRange{
			Start: date(2025, time.October, 9),
			End:   date(2025, time.October, 12),
		},
	}}}

	out := serialize(t, cat)
	if !strings.Contains(out, "UNTIL=") {
		t.Errorf("bounded schedule has no UNTIL:\n%s", out)
	}
	if !strings.Contains(out, "DTEND") {
		t.Error("duration did not produce DTEND")
	}
}

func TestRotationUsesTwoWeekInterval(t *testing.T) {
	cat := &catalog.Catalog{Events: []model.EventDescriptor{{
		Name:     "Crusade",
		Category: model.CategoryWorldBossCrusade,
		Schedule: model.Schedule{
			Kind: model.ScheduleDailyIntervals,
			Intervals: []model.Interval{{
				Start: model.ClockTime{Hour: 16, Minute: 0},
				End:   model.ClockTime{Hour: 22, Minute: 0},
			}},
		},
		BiWeeklyRotation: model.RotationOdd,
	}}}

	out := serialize(t, cat)
	if !strings.Contains(out, "FREQ=WEEKLY") || !strings.Contains(out, "INTERVAL=2") {
		t.Errorf("rotation rule wrong:\n%s", out)
	}
	// Anchored from 2025-10-13 (even week): first instance must slide into
	// the odd week starting 2025-10-20.
	if !strings.Contains(out, "DTSTART:20251020") {
		t.Errorf("rotation anchor not in matching week:\n%s", out)
	}
}

func TestStableUIDs(t *testing.T) {
	cat := &catalog.Catalog{Events: []model.EventDescriptor{{
		Name:      "Trickster's Candy Jar",
		Category:  model.CategoryEvent,
		Schedule:  model.Schedule{Kind: model.ScheduleNone},
		DateRange: &model.DateRange{Start: date(2025, time.October, 30), End: date(2025, time.November, 10)},
	}}}

	a := serialize(t, cat)
	b := serialize(t, cat)
	if a != b {
		t.Error("feed output is not deterministic")
	}
	if !strings.Contains(a, "tricksters-candy-jar-range-0@gamecal") {
		t.Errorf("uid not slugged as expected:\n%s", a)
	}
}
