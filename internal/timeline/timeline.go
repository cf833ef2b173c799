// Package timeline aggregates expanded occurrences into the day, week and
// month views served by the web layer. Aggregation is pure: every function
// takes the instant or day to render explicitly and never consults the
// system clock.
package timeline

import (
	"gamecal/internal/model"
)

// GameLaunch is the first day the game was playable. The containing week
// starts on the Monday before it, so the week view marks the leading days of
// that week as pre-launch.
var GameLaunch = model.CivilDate{Year: 2025, Month: 10, Day: 9}

// EventInfo is the slice of an event descriptor the views need. The full
// descriptor carries schedule internals the clients have no use for.
type EventInfo struct {
	Name             string         `json:"name"`
	Category         model.Category `json:"category"`
	SeasonalCategory string         `json:"seasonal_category,omitempty"`
	Description      string         `json:"description,omitempty"`
}

func infoOf(ev *model.EventDescriptor) EventInfo {
	return EventInfo{
		Name:             ev.Name,
		Category:         ev.Category,
		SeasonalCategory: ev.SeasonalCategory,
		Description:      ev.Description,
	}
}

// categoryRank orders categories the way the views present them. Unknown
// categories sort after every known one.
var categoryRank = map[model.Category]int{
	model.CategoryWorldBossCrusade: 0,
	model.CategoryDungeonUnlock:    1,
	model.CategoryRaidUnlock:       2,
	model.CategoryEvent:            3,
	model.CategoryGuild:            4,
	model.CategoryPatrol:           5,
	model.CategorySocial:           6,
	model.CategoryMiniGame:         7,
	model.CategoryBuff:             8,
	model.CategoryRoguelike:        9,
}

func rankOf(c model.Category) int {
	if r, ok := categoryRank[c]; ok {
		return r
	}
	return len(categoryRank)
}

/// infoLess is the presentation order shared by the views: category
// precedence first, name as the tiebreak.
func infoLess(a, b EventInfo) bool {
	ra, rb := rankOf(a.Category), rankOf(b.Category)
	if ra != rb {
		return ra < rb
	}
	return a.Name < b.Name
}
