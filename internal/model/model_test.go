package model

import (
	"testing"
	"time"
)

func TestScheduleValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Schedule
		wantErr bool
	}{
		{"hourly ok", Schedule{Kind: ScheduleHourly, Minute: 30}, false},
		{"hourly bad minute", Schedule{Kind: ScheduleHourly, Minute: 60}, true},
		{"multi-hourly ok", Schedule{Kind: ScheduleMultiHourly, Hours: 6, OffsetHours: 2}, false},
		{"multi-hourly zero hours", Schedule{Kind: ScheduleMultiHourly, Hours: 0}, true},
		{"multi-hourly negative hours", Schedule{Kind: ScheduleMultiHourly, Hours: -3}, true},
		{"daily-specific ok", Schedule{Kind: ScheduleDailySpecific, Days: []int{1, 3}, Times: []ClockTime{{Hour: 12}}}, false},
		{"daily-specific no times", Schedule{Kind: ScheduleDailySpecific, Days: []int{1}}, true},
		{"daily-specific bad day", Schedule{Kind: ScheduleDailySpecific, Days: []int{7}, Times: []ClockTime{{Hour: 12}}}, true},
		{"intervals ok", Schedule{Kind: ScheduleDailyIntervals, Intervals: []Interval{{Start: ClockTime{Hour: 23}, End: ClockTime{Hour: 1}}}}, false},
		{"intervals empty", Schedule{Kind: ScheduleDailyIntervals}, true},
		{"intervals bad hour", Schedule{Kind: ScheduleDailyIntervals, Intervals: []Interval{{Start: ClockTime{Hour: 24}}}}, true},
		{"none ok", Schedule{Kind: ScheduleNone}, false},
		{"unknown kind", Schedule{Kind: "weekly"}, true},
		{"empty kind", Schedule{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunsEveryDay(t *testing.T) {
	tests := []struct {
		name string
		s    Schedule
		want bool
	}{
		{"hourly", Schedule{Kind: ScheduleHourly}, true},
		{"intervals", Schedule{Kind: ScheduleDailyIntervals}, true},
		{"all seven days", Schedule{Kind: ScheduleDailySpecific, Days: []int{0, 1, 2, 3, 4, 5, 6}}, true},
		{"duplicated days still count once", Schedule{Kind: ScheduleDailySpecific, Days: []int{0, 0, 1, 2, 3, 4, 5}}, false},
		{"weekend only", Schedule{Kind: ScheduleDailyIntervalsSpecific, Days: []int{0, 6}}, false},
		{"none", Schedule{Kind: ScheduleNone}, false},
	}
	for _, tt := range tests {
		if got := tt.s.RunsEveryDay(); got != tt.want {
			t.Errorf("%s: RunsEveryDay() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestOnWeekday(t *testing.T) {
	s := Schedule{Kind: ScheduleDailySpecific, Days: []int{0, 3}, Times: []ClockTime{{Hour: 12}}}
	if !s.OnWeekday(time.Sunday) || !s.OnWeekday(time.Wednesday) {
		t.Error("listed weekdays not live")
	}
	if s.OnWeekday(time.Monday) {
		t.Error("unlisted weekday live")
	}
	if (Schedule{Kind: ScheduleNone}).OnWeekday(time.Monday) {
		t.Error("kind none should never be live")
	}
	if !(Schedule{Kind: ScheduleHourly}).OnWeekday(time.Monday) {
		t.Error("ungated schedule should be live every day")
	}
}

func TestEventValidate(t *testing.T) {
	base := func() EventDescriptor {
		return EventDescriptor{
			Name:     "ok",
			Category: CategoryEvent,
			Schedule: Schedule{Kind: ScheduleNone},
		}
	}

	ev := base()
	if err := ev.Validate(); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	ev = base()
	ev.Name = ""
	if ev.Validate() == nil {
		t.Error("unnamed event accepted")
	}

	ev = base()
	ev.Category = "Seasonal"
	if ev.Validate() == nil {
		t.Error("unknown category accepted")
	}

	ev = base()
	ev.DurationMinutes = -1
	if ev.Validate() == nil {
		t.Error("negative duration accepted")
	}

	ev = base()
	ev.BiWeeklyRotation = "weekly"
	if ev.Validate() == nil {
		t.Error("bad rotation accepted")
	}

	ev = base()
	ev.DateRange = &DateRange{
		Start: CivilDate{Year: 2025, Month: time.October, Day: 12},
		End:   CivilDate{Year: 2025, Month: time.October, Day: 9},
	}
	if ev.Validate() == nil {
		t.Error("inverted date range accepted")
	}
}

func TestRangesFoldsSingleForm(t *testing.T) {
	r1 := DateRange{Start: CivilDate{2025, time.October, 9}, End: CivilDate{2025, time.October, 12}}
	r2 := DateRange{Start: CivilDate{2025, time.October, 17}, End: CivilDate{2025, time.October, 18}}

	ev := EventDescriptor{DateRange: &r1, DateRanges: []DateRange{r2}}
	got := ev.Ranges()
	if len(got) != 2 || got[0] != r1 || got[1] != r2 {
		t.Fatalf("Ranges() = %v, want [%v %v]", got, r1, r2)
	}

	ev = EventDescriptor{}
	if len(ev.Ranges()) != 0 {
		t.Error("event without ranges reported some")
	}
	if ev.TimeLimited() {
		t.Error("event without ranges reported as time-limited")
	}
}

func TestOccurrenceClockKey(t *testing.T) {
	occ := Occurrence{Start: time.Date(2025, time.October, 15, 9, 5, 0, 0, time.UTC)}
	if got := occ.ClockKey(); got != "09:05" {
		t.Errorf("ClockKey() = %q, want %q", got, "09:05")
	}
}
