package model

import (
	"fmt"
	"time"
)

// Category classifies an event for grouping, sorting and legend purposes.
// It never influences schedule expansion.
type Category string

const (
	CategoryBoss             Category = "Boss"
	CategoryWorldBossCrusade Category = "World Boss Crusade"
	CategoryBuff             Category = "Buff"
	CategorySocial           Category = "Social"
	CategoryMiniGame         Category = "Mini-game"
	CategoryPatrol           Category = "Patrol"
	CategoryGuild            Category = "Guild"
	CategoryEvent            Category = "Event"
	CategoryDungeonUnlock    Category = "Dungeon Unlock"
	CategoryRaidUnlock       Category = "Raid Unlock"
	CategoryRoguelike        Category = "Roguelike"
	CategoryHunting          Category = "Hunting"
)

var knownCategories = map[Category]bool{
	CategoryBoss:             true,
	CategoryWorldBossCrusade: true,
	CategoryBuff:             true,
	CategorySocial:           true,
	CategoryMiniGame:         true,
	CategoryPatrol:           true,
	CategoryGuild:            true,
	CategoryEvent:            true,
	CategoryDungeonUnlock:    true,
	CategoryRaidUnlock:       true,
	CategoryRoguelike:        true,
	CategoryHunting:          true,
}

// Rotation is the bi-weekly parity gate: an event restricted to a rotation
// only occurs in ISO weeks whose week number has that parity.
type Rotation string

const (
	RotationEven Rotation = "even"
	RotationOdd  Rotation = "odd"
)

// ScheduleKind tags the closed set of schedule shapes the engine supports.
type ScheduleKind string

const (
	ScheduleHourly                 ScheduleKind = "hourly"
	ScheduleMultiHourly            ScheduleKind = "multi-hourly"
	ScheduleDailySpecific          ScheduleKind = "daily-specific"
	ScheduleDailyIntervals         ScheduleKind = "daily-intervals"
	ScheduleDailyIntervalsSpecific ScheduleKind = "daily-intervals-specific"
	ScheduleNone                   ScheduleKind = "none"
)

// ClockTime is an in-day wall-clock point, authored in game time.
type ClockTime struct {
	Hour   int `yaml:"hour" json:"hour"`
	Minute int `yaml:"minute" json:"minute"`
}

func (c ClockTime) Validate() error {
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("model: invalid clock time %02d:%02d", c.Hour, c.Minute)
	}
	return nil
}

// Interval is one in-day time window. End before Start means the interval
// crosses midnight into the next calendar day; that is legal.
type Interval struct {
	Start ClockTime `yaml:"start" json:"start"`
	End   ClockTime `yaml:"end" json:"end"`
}

// Schedule describes when an event recurs within a day. Kind selects the
// variant; only the fields of that variant are meaningful.
type Schedule struct {
	Kind ScheduleKind `yaml:"type" json:"type"`

	// hourly, multi-hourly
	Minute int `yaml:"minute,omitempty" json:"minute,omitempty"`

	// multi-hourly
	Hours       int `yaml:"hours,omitempty" json:"hours,omitempty"`
	OffsetHours int `yaml:"offset_hours,omitempty" json:"offset_hours,omitempty"`

	// daily-specific, daily-intervals-specific; 0=Sunday .. 6=Saturday
	Days []int `yaml:"days,omitempty" json:"days,omitempty"`

	// daily-specific
	Times []ClockTime `yaml:"times,omitempty" json:"times,omitempty"`

	// daily-intervals, daily-intervals-specific
	Intervals []Interval `yaml:"intervals,omitempty" json:"intervals,omitempty"`
}

// Validate rejects malformed schedules so that expansion can assume a
// well-formed variant and always terminate.
func (s Schedule) Validate() error {
	switch s.Kind {
	case ScheduleHourly:
		if s.Minute < 0 || s.Minute > 59 {
			return fmt.Errorf("model: hourly minute %d out of range", s.Minute)
		}
	case ScheduleMultiHourly:
		if s.Hours <= 0 {
			return fmt.Errorf("model: multi-hourly hours must be positive, got %d", s.Hours)
		}
		if s.OffsetHours < 0 || s.OffsetHours > 23 {
			return fmt.Errorf("model: multi-hourly offset %d out of range", s.OffsetHours)
		}
		if s.Minute < 0 || s.Minute > 59 {
			return fmt.Errorf("model: multi-hourly minute %d out of range", s.Minute)
		}
	case ScheduleDailySpecific:
		if err := validateDays(s.Days); err != nil {
			return err
		}
		if len(s.Times) == 0 {
			return fmt.Errorf("model: daily-specific schedule has no times")
		}
		for _, t := range s.Times {
			if err := t.Validate(); err != nil {
				return err
			}
		}
	case ScheduleDailyIntervals, ScheduleDailyIntervalsSpecific:
		if s.Kind == ScheduleDailyIntervalsSpecific {
			if err := validateDays(s.Days); err != nil {
				return err
			}
		}
		if len(s.Intervals) == 0 {
			return fmt.Errorf("model: interval schedule has no intervals")
		}
		for _, iv := range s.Intervals {
			if err := iv.Start.Validate(); err != nil {
				return err
			}
			if err := iv.End.Validate(); err != nil {
				return err
			}
		}
	case ScheduleNone:
		// No timed occurrences; nothing to check.
	default:
		return fmt.Errorf("model: unknown schedule type %q", s.Kind)
	}
	return nil
}

func validateDays(days []int) error {
	if len(days) == 0 {
		return fmt.Errorf("model: day-specific schedule has no days")
	}
	for _, d := range days {
		if d < 0 || d > 6 {
			return fmt.Errorf("model: weekday %d out of range 0..6", d)
		}
	}
	return nil
}

// RunsEveryDay reports whether the schedule produces occurrences on every
// calendar day: hourly, multi-hourly and plain interval schedules do, and so
// do weekday-gated schedules that list all seven days.
func (s Schedule) RunsEveryDay() bool {
	switch s.Kind {
	case ScheduleHourly, ScheduleMultiHourly, ScheduleDailyIntervals:
		return true
	case ScheduleDailySpecific, ScheduleDailyIntervalsSpecific:
		return len(uniqueDays(s.Days)) == 7
	}
	return false
}

// OnWeekday reports whether the schedule is live on the given weekday.
// Schedules without a weekday gate are live every day.
func (s Schedule) OnWeekday(w time.Weekday) bool {
	switch s.Kind {
	case ScheduleDailySpecific, ScheduleDailyIntervalsSpecific:
		for _, d := range s.Days {
			if time.Weekday(d) == w {
				return true
			}
		}
		return false
	case ScheduleNone:
		return false
	}
	return true
}

func uniqueDays(days []int) []int {
	seen := map[int]bool{}
	out := days[:0:0]
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// EventDescriptor is one recurring or one-off activity in the catalog.
// Descriptors are loaded once at startup and never mutated.
type EventDescriptor struct {
	// Name doubles as the stable key for completion tracking; it must be
	// unique across the catalog.
	Name             string   `yaml:"name" json:"name"`
	Category         Category `yaml:"category" json:"category"`
	SeasonalCategory string   `yaml:"seasonal_category,omitempty" json:"seasonal_category,omitempty"`
	Description      string   `yaml:"description,omitempty" json:"description,omitempty"`

	Schedule Schedule `yaml:"schedule" json:"schedule"`

	// DurationMinutes is a fallback length for schedule shapes that carry no
	// end of their own. Zero means the occurrence is a point event.
	DurationMinutes int `yaml:"duration_minutes,omitempty" json:"duration_minutes,omitempty"`

	// DateRange / DateRanges gate a seasonal event to its active windows.
	DateRange  *DateRange  `yaml:"date_range,omitempty" json:"date_range,omitempty"`
	DateRanges []DateRange `yaml:"date_ranges,omitempty" json:"date_ranges,omitempty"`

	// Availability gates permanent content to its lifetime in the game. When
	// set it takes precedence over the date ranges as the existence gate.
	Availability *Availability `yaml:"availability,omitempty" json:"availability,omitempty"`

	BiWeeklyRotation Rotation `yaml:"bi_weekly_rotation,omitempty" json:"bi_weekly_rotation,omitempty"`
}

// TimeLimited reports whether the event is gated by seasonal date ranges
// rather than being permanent content.
func (e *EventDescriptor) TimeLimited() bool {
	return e.DateRange != nil || len(e.DateRanges) > 0
}

// Ranges returns all active windows, folding the single-range form into the
// multi-range one.
func (e *EventDescriptor) Ranges() []DateRange {
	if e.DateRange != nil {
		return append([]DateRange{*e.DateRange}, e.DateRanges...)
	}
	return e.DateRanges
}

func (e *EventDescriptor) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("model: event has no name")
	}
	if !knownCategories[e.Category] {
		return fmt.Errorf("model: event %q has unknown category %q", e.Name, e.Category)
	}
	if err := e.Schedule.Validate(); err != nil {
		return fmt.Errorf("model: event %q: %w", e.Name, err)
	}
	if e.DurationMinutes < 0 {
		return fmt.Errorf("model: event %q has negative duration", e.Name)
	}
	for _, r := range e.Ranges() {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("model: event %q: %w", e.Name, err)
		}
	}
	switch e.BiWeeklyRotation {
	case "", RotationEven, RotationOdd:
	default:
		return fmt.Errorf("model: event %q has invalid rotation %q", e.Name, e.BiWeeklyRotation)
	}
	return nil
}

// Occurrence is one concrete instance of an event on a specific day. Start
// and End are game-time instants carried in UTC; a nil End marks a point
// event. Occurrences are derived per query and never stored.
type Occurrence struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// ClockKey identifies a sub-daily occurrence within its game day for
// external stores (completion checklists), derived from the game-time
// wall clock of the start.
func (o Occurrence) ClockKey() string {
	return o.Start.Format("15:04")
}
