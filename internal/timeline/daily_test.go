package timeline

import (
	"testing"
	"time"

	"gamecal/internal/catalog"
	"gamecal/internal/model"
)

func date(y int, m time.Month, d int) model.CivilDate {
	return model.CivilDate{Year: y, Month: m, Day: d}
}

func allDays() []int { return []int{0, 1, 2, 3, 4, 5, 6} }

func TestDayGroupsAndSortsRows(t *testing.T) {
	cat := &catalog.Catalog{Events: []model.EventDescriptor{
		{
			Name:     "Evening Patrol",
			Category: model.CategoryPatrol,
			Schedule: model.Schedule{
				Kind: model.ScheduleDailyIntervals,
				Intervals: []model.Interval{{
					Start: model.ClockTime{Hour: 18, Minute: 0},
					End:   model.ClockTime{Hour: 19, Minute: 0},
				}},
			},
		},
		{
			Name:     "Crusade",
			Category: model.CategoryWorldBossCrusade,
			Schedule: model.Schedule{
				Kind: model.ScheduleDailyIntervals,
				Intervals: []model.Interval{{
					Start: model.ClockTime{Hour: 16, Minute: 0},
					End:   model.ClockTime{Hour: 22, Minute: 0},
				}},
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
			Name:     "Boarlet",
			Category: model.CategoryBoss,
			Schedule: model.Schedule{
				Kind:  model.ScheduleDailySpecific,
				Days:  allDays(),
				Times: []model.ClockTime{{Hour: 14, Minute: 0}, {Hour: 10, Minute: 0}},
			},
		},
	}}

	sched := Day(cat, date(2025, time.October, 15))

	// Existence-only events carry no occurrences and stay off the day view.
	for _, row := range append(sched.Rows, sched.PointRows...) {
		if row.Event.Name == "Season Banner" {
			t.Error("kind-none event appeared in day view")
		}
	}

	// Interval events populate Rows in category order.
	if len(sched.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(sched.Rows))
	}
	if sched.Rows[0].Event.Name != "Crusade" || sched.Rows[1].Event.Name != "Evening Patrol" {
		t.Errorf("row order = [%s, %s]", sched.Rows[0].Event.Name, sched.Rows[1].Event.Name)
	}

	// The endless boss spawns land in the point lane, sorted by start.
	if len(sched.PointRows) != 1 {
		t.Fatalf("got %d point rows, want 1", len(sched.PointRows))
	}
	pr := sched.PointRows[0]
	if pr.Event.Name != "Boarlet" || len(pr.Occurrences) != 2 {
		t.Fatalf("point row = %s with %d occurrences", pr.Event.Name, len(pr.Occurrences))
	}
	if !pr.Occurrences[0].Start.Before(pr.Occurrences[1].Start) {
		t.Error("occurrences not sorted by start")
	}
}

func TestDayWindowMetadata(t *testing.T) {
	cat := &catalog.Catalog{}
	day := date(2025, time.October, 15)

	sched := Day(cat, day)
	if sched.GameDay != day {
		t.Errorf("GameDay = %v", sched.GameDay)
	}
	if got := sched.DayEnd.Sub(sched.DayStart); got != 24*time.Hour {
		t.Errorf("window length = %v", got)
	}
	if len(sched.Rows) != 0 || len(sched.PointRows) != 0 {
		t.Error("empty catalog produced rows")
	}
}
