package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// CivilDate is a timezone-free calendar date (YYYY-MM-DD). The catalog's date
// ranges and availability windows are authored as civil dates, and the game
// day itself is keyed by one.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCivilDate parses a YYYY-MM-DD string.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CivilDate{}, fmt.Errorf("model: invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t as observed in t's own location.
func DateOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d CivilDate) IsZero() bool {
	return d == CivilDate{}
}

// Time returns midnight UTC of the date. Calendar arithmetic goes through
// this so that month/year rollover is handled by the time package.
func (d CivilDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d CivilDate) AddDays(n int) CivilDate {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d CivilDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d CivilDate) Before(other CivilDate) bool {
	return d.Time().Before(other.Time())
}

func (d CivilDate) After(other CivilDate) bool {
	return d.Time().After(other.Time())
}

// DaysSince returns the number of whole days from other to d (negative when
// d is earlier).
func (d CivilDate) DaysSince(other CivilDate) int {
	return int(d.Time().Sub(other.Time()) / (24 * time.Hour))
}

func (d CivilDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *CivilDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCivilDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d CivilDate) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *CivilDate) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseCivilDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is a single inclusive calendar-date window.
type DateRange struct {
	Start CivilDate `yaml:"start" json:"start"`
	End   CivilDate `yaml:"end" json:"end"`
}

// Contains reports whether d falls inside the range, both bounds inclusive.
func (r DateRange) Contains(d CivilDate) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("model: date range missing start or end")
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("model: date range start %s after end %s", r.Start, r.End)
	}
	return nil
}

// Availability marks when permanent content entered and (optionally) left the
// game. A zero bound means unbounded on that side. The removed date is
// inclusive through its end of day.
type Availability struct {
	Added   CivilDate `yaml:"added,omitempty" json:"added,omitzero"`
	Removed CivilDate `yaml:"removed,omitempty" json:"removed,omitzero"`
}

// Contains reports whether the content exists on day d.
func (a Availability) Contains(d CivilDate) bool {
	if !a.Added.IsZero() && d.Before(a.Added) {
		return false
	}
	if !a.Removed.IsZero() && d.After(a.Removed) {
		return false
	}
	return true
}
