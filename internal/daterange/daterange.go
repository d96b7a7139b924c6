// Package daterange implements the two-phase date range selection used by
// the invoice list filter: a picker that alternates between choosing the
// start and the end of a range, preset shortcuts, and the per-day view model
// for calendar shading.
package daterange

import "time"

// Range is an inclusive [Start, End] day range. Either bound may be nil
// while a selection is in progress.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Empty reports whether neither bound is set.
func (r Range) Empty() bool {
	return r.Start == nil && r.End == nil
}

// Phase identifies which bound the next pick will set.
type Phase int

const (
	SelectingStart Phase = iota
	SelectingEnd
)

// Picker drives range selection. Picks alternate between start and end,
// except that an end pick before the current start restarts the end
// selection instead of swapping the bounds.
type Picker struct {
	value Range
	phase Phase
	open  bool
}

// NewPicker returns an open picker seeded with an initial range.
func NewPicker(initial Range) *Picker {
	return &Picker{value: initial, phase: SelectingStart, open: true}
}

// Value returns the current range.
func (p *Picker) Value() Range { return p.value }

// Phase returns the bound the next pick will set.
func (p *Picker) Phase() Phase { return p.phase }

// IsOpen reports whether the picker is accepting picks.
func (p *Picker) IsOpen() bool { return p.open }

// Pick records a day selection and returns the updated range.
//
// Selecting a start after the current end clears the end rather than
// swapping the bounds; the picker then waits for a fresh end. Selecting an
// end before the current start replaces the start and stays in end
// selection until a valid end arrives.
func (p *Picker) Pick(day time.Time) Range {
	d := StartOfDay(day)

	if p.phase == SelectingStart {
		if p.value.End != nil && d.After(*p.value.End) {
			p.value = Range{Start: &d, End: nil}
		} else {
			p.value = Range{Start: &d, End: p.value.End}
		}
		p.phase = SelectingEnd
		return p.value
	}

	if p.value.Start != nil && d.Before(*p.value.Start) {
		p.value = Range{Start: &d, End: p.value.End}
		// Still waiting for a valid end.
		return p.value
	}
	end := EndOfDay(day)
	p.value = Range{Start: p.value.Start, End: &end}
	p.phase = SelectingStart
	return p.value
}

// Set replaces the range wholesale and restarts selection from the start
// bound. Used when the caller clears the filter.
func (p *Picker) Set(r Range) {
	p.value = r
	p.phase = SelectingStart
}

// ApplyPreset sets the range from a one-click shortcut and closes the
// picker.
func (p *Picker) ApplyPreset(pr Preset, now time.Time) Range {
	p.value = pr.Range(now)
	p.phase = SelectingStart
	p.open = false
	return p.value
}

// Preset is a one-click range shortcut.
type Preset int

const (
	PresetThisMonth Preset = iota
	PresetLastMonth
	PresetThisWeek
	PresetLastWeek
	PresetToday
	PresetYesterday
)

// ParsePreset maps a wire name such as "this_month" to its preset.
func ParsePreset(name string) (Preset, bool) {
	switch name {
	case "this_month":
		return PresetThisMonth, true
	case "last_month":
		return PresetLastMonth, true
	case "this_week":
		return PresetThisWeek, true
	case "last_week":
		return PresetLastWeek, true
	case "today":
		return PresetToday, true
	case "yesterday":
		return PresetYesterday, true
	}
	return 0, false
}

// Range resolves the preset relative to now. Weeks start on Sunday.
func (pr Preset) Range(now time.Time) Range {
	var start, end time.Time
	switch pr {
	case PresetThisMonth:
		start = StartOfMonth(now)
		end = EndOfMonth(now)
	case PresetLastMonth:
		prev := StartOfMonth(now).AddDate(0, 0, -1)
		start = StartOfMonth(prev)
		end = EndOfMonth(prev)
	case PresetThisWeek:
		start = StartOfWeek(now)
		end = EndOfDay(start.AddDate(0, 0, 6))
	case PresetLastWeek:
		start = StartOfWeek(now).AddDate(0, 0, -7)
		end = EndOfDay(start.AddDate(0, 0, 6))
	case PresetToday:
		start = StartOfDay(now)
		end = EndOfDay(now)
	case PresetYesterday:
		y := now.AddDate(0, 0, -1)
		start = StartOfDay(y)
		end = EndOfDay(y)
	}
	return Range{Start: &start, End: &end}
}

// DayCell is the calendar shading state for one day.
type DayCell struct {
	InRange    bool
	First      bool
	Last       bool
	RoundLeft  bool
	RoundRight bool
}

// Cell computes the shading for a day against the current, possibly
// partial, range. With a single bound set that bound acts as both ends.
// Corners are rounded at range boundaries and at week boundaries so a
// multi-week range reads as one continuous band.
func (r Range) Cell(day time.Time) DayCell {
	if r.Empty() {
		return DayCell{}
	}
	start := r.Start
	if start == nil {
		start = r.End
	}
	end := r.End
	if end == nil {
		end = r.Start
	}

	d := StartOfDay(day)
	first := sameDay(d, *start)
	last := sameDay(d, *end)
	between := first || last || (d.After(StartOfDay(*start)) && d.Before(StartOfDay(*end)))

	return DayCell{
		InRange:    between,
		First:      first,
		Last:       last,
		RoundLeft:  first || d.Weekday() == time.Sunday,
		RoundRight: last || d.Weekday() == time.Saturday,
	}
}

// StartOfDay truncates to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfWeek returns midnight of the Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last representable instant of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
