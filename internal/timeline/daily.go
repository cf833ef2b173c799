package timeline

import (
	"sort"
	"time"

	"gamecal/internal/catalog"
	"gamecal/internal/expand"
	"gamecal/internal/gameclock"
	"gamecal/internal/model"
)

// DaySchedule is one game day's worth of occurrences, reset to reset.
type DaySchedule struct {
	GameDay  model.CivilDate `json:"game_day"`
	DayStart time.Time       `json:"day_start"`
	DayEnd   time.Time       `json:"day_end"`

	// Rows hold events whose occurrences span time; PointRows hold events
	// whose occurrences are instants with no end and no duration and render
	// as markers rather than bars.
	Rows      []DayRow `json:"rows"`
	PointRows []DayRow `json:"point_rows"`
}

// DayRow is one event's occurrences within the day, sorted by start.
type DayRow struct {
	Event       EventInfo          `json:"event"`
	Occurrences []model.Occurrence `json:"occurrences"`
}

// Day expands every catalog event for the given game day and groups the
// results into rows. Events with no occurrence that day (including
// existence-only events with schedule kind none) do not appear.
func Day(cat *catalog.Catalog, day model.CivilDate) DaySchedule {
	sched := DaySchedule{
		GameDay:  day,
		DayStart: gameclock.DayStart(day),
		DayEnd:   gameclock.DayEnd(day),
	}

	for i := range cat.Events {
		ev := &cat.Events[i]
		occs := expand.DayOccurrences(ev, day)
		if len(occs) == 0 {
			continue
		}
		sort.Slice(occs, func(a, b int) bool { return occs[a].Start.Before(occs[b].Start) })

		row := DayRow{Event: infoOf(ev), Occurrences: occs}
		if occs[0].End == nil {
			sched.PointRows = append(sched.PointRows, row)
		} else {
			sched.Rows = append(sched.Rows, row)
		}
	}

	sortRows(sched.Rows)
	sortRows(sched.PointRows)
	return sched
}

func sortRows(rows []DayRow) {
	sort.Slice(rows, func(a, b int) bool {
		return infoLess(rows[a].Event, rows[b].Event)
	})
}
