package timeline

import (
	"sort"
	"time"

	"gamecal/internal/catalog"
	"gamecal/internal/model"
)

// MonthSchedule is the calendar-month view: one bar per (event, date range)
// intersecting the month, clamped to it and packed into lanes.
type MonthSchedule struct {
	MonthStart  model.CivilDate `json:"month_start"`
	DaysInMonth int             `json:"days_in_month"`
	Lanes       []MonthLane     `json:"lanes"`
}

// MonthLane is one horizontal row of the month view. Unlock and roguelike
// events share a lane per category; every other event gets its own.
type MonthLane struct {
	Label string     `json:"label"`
	Bars  []MonthBar `json:"bars"`
}

// MonthBar is one clamped date range. StartDay and EndDay are 1-based days
// of the month, both inclusive.
type MonthBar struct {
	Event    EventInfo       `json:"event"`
	Start    model.CivilDate `json:"start"`
	End      model.CivilDate `json:"end"`
	StartDay int             `json:"start_day"`
	EndDay   int             `json:"end_day"`
}

// Categories whose events are sparse single bars and read better stacked in
// one shared lane.
var sharedLanes = []model.Category{
	model.CategoryDungeonUnlock,
	model.CategoryRaidUnlock,
	model.CategoryRoguelike,
}

// Month builds the month view. Only events carrying explicit date ranges
// appear; permanent and availability-only events have no bar to draw.
func Month(cat *catalog.Catalog, year int, month time.Month) MonthSchedule {
	monthStart := model.CivilDate{Year: year, Month: month, Day: 1}
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	monthEnd := model.CivilDate{Year: year, Month: month, Day: daysInMonth}

	sched := MonthSchedule{MonthStart: monthStart, DaysInMonth: daysInMonth}

	shared := make(map[model.Category][]MonthBar)
	var singles []MonthLane

	for i := range cat.Events {
		ev := &cat.Events[i]
		var bars []MonthBar
		for _, r := range ev.Ranges() {
			bar, ok := clampBar(ev, r, monthStart, monthEnd)
			if !ok {
				continue
			}
			bars = append(bars, bar)
		}
		if len(bars) == 0 {
			continue
		}
		sortBars(bars)

		if isShared(ev.Category) {
			shared[ev.Category] = append(shared[ev.Category], bars...)
		} else {
			singles = append(singles, MonthLane{Label: ev.Name, Bars: bars})
		}
	}

	for _, c := range sharedLanes {
		bars := shared[c]
		if len(bars) == 0 {
			continue
		}
		sortBars(bars)
		sched.Lanes = append(sched.Lanes, MonthLane{Label: string(c), Bars: bars})
	}

	sort.Slice(singles, func(a, b int) bool {
		ba, bb := singles[a].Bars[0], singles[b].Bars[0]
		if ba.Start != bb.Start {
			return ba.Start.Before(bb.Start)
		}
		if ba.End != bb.End {
			return ba.End.Before(bb.End)
		}
		return singles[a].Label < singles[b].Label
	})
	sched.Lanes = append(sched.Lanes, singles...)
	return sched
}

func clampBar(ev *model.EventDescriptor, r model.DateRange, monthStart, monthEnd model.CivilDate) (MonthBar, bool) {
	if r.End.Before(monthStart) || r.Start.After(monthEnd) {
		return MonthBar{}, false
	}
	start, end := r.Start, r.End
	if start.Before(monthStart) {
		start = monthStart
	}
	if end.After(monthEnd) {
		end = monthEnd
	}
	return MonthBar{
		Event:    infoOf(ev),
		Start:    start,
		End:      end,
		StartDay: start.Day,
		EndDay:   end.Day,
	}, true
}

func sortBars(bars []MonthBar) {
	sort.Slice(bars, func(a, b int) bool {
		if bars[a].StartDay != bars[b].StartDay {
			return bars[a].StartDay < bars[b].StartDay
		}
		return bars[a].EndDay < bars[b].EndDay
	})
}

func isShared(c model.Category) bool {
	for _, s := range sharedLanes {
		if s == c {
			return true
		}
	}
	return false
}
