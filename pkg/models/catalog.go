package models

// ShiftCode is a catalog entry: a fixed start/end time window an employee
// can be rostered into, or a non-working sentinel. Times are minutes from
// midnight.
type ShiftCode struct {
	Code        string  `json:"code"`
	StartMinute int     `json:"start_minute"`
	EndMinute   int     `json:"end_minute"`
	Hours       float64 `json:"hours"`
	Working     bool    `json:"working"`
	Description string  `json:"description,omitempty"`
}

// Non-working sentinel codes
const (
	CodeMeeting      = "M"   // meeting / training, occupies the day but earns no station
	CodeDayOff       = "OFF" // rostered day off
	CodeNotAvailable = "NA"  // employee not available
)

// Peak scoring windows and opening/closing cutoffs, minutes from midnight
const (
	LunchStartMinute  = 11 * 60
	LunchEndMinute    = 14 * 60
	DinnerStartMinute = 17 * 60
	DinnerEndMinute   = 21 * 60

	OpeningCutoffMinute = 7 * 60  // opening-class shifts start at or before 07:00
	ClosingCutoffMinute = 22 * 60 // closing-class shifts end at or after 22:00
)

// Opening reports whether this is an opening-class working shift
func (s ShiftCode) Opening() bool {
	return s.Working && s.StartMinute <= OpeningCutoffMinute
}

// Closing reports whether this is a closing-class working shift
func (s ShiftCode) Closing() bool {
	return s.Working && s.EndMinute >= ClosingCutoffMinute
}

// Overlaps reports whether the shift's time range overlaps the given window
func (s ShiftCode) Overlaps(windowStart, windowEnd int) bool {
	return s.Working && s.StartMinute <= windowEnd && s.EndMinute >= windowStart
}

// DefaultCatalog returns the static shift-code catalog. Codes and timings
// follow the store's roster conventions; the catalog is never mutated at
// runtime.
func DefaultCatalog() map[string]ShiftCode {
	return map[string]ShiftCode{
		"S":  {Code: "S", StartMinute: 6*60 + 30, EndMinute: 15 * 60, Hours: 8.5, Working: true, Description: "Day shift"},
		"1F": {Code: "1F", StartMinute: 6*60 + 30, EndMinute: 15*60 + 30, Hours: 9.0, Working: true, Description: "First half (opening + lunch)"},
		"2F": {Code: "2F", StartMinute: 14 * 60, EndMinute: 23 * 60, Hours: 9.0, Working: true, Description: "Second half (afternoon to close)"},
		"3F": {Code: "3F", StartMinute: 8 * 60, EndMinute: 20 * 60, Hours: 12.0, Working: true, Description: "Full day"},
		"SC": {Code: "SC", StartMinute: 11 * 60, EndMinute: 20 * 60, Hours: 9.0, Working: true, Description: "Shift change / midday-evening"},

		CodeMeeting:      {Code: CodeMeeting, Description: "Meeting / training"},
		CodeDayOff:       {Code: CodeDayOff, Description: "Day off"},
		CodeNotAvailable: {Code: CodeNotAvailable, Description: "Not available"},
	}
}

// HourBounds is an inclusive min/max hours band
type HourBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FortnightHourBounds are the contract hour bounds over the 2-week horizon
var FortnightHourBounds = map[ContractType]HourBounds{
	FullTime: {Min: 70, Max: 76}, // 35-38 h/week
	PartTime: {Min: 40, Max: 64}, // 20-32 h/week
	Casual:   {Min: 16, Max: 48}, // 8-24 h/week
}

// WeeklyHourBounds are the Fair-Work-style weekly hour bands
var WeeklyHourBounds = map[ContractType]HourBounds{
	FullTime: {Min: 35, Max: 38},
	PartTime: {Min: 20, Max: 32},
	Casual:   {Min: 8, Max: 24},
}

// Fair-Work-style rule constants
const (
	DefaultMinRestHours       = 10.0
	DefaultOvertimeSlackHours = 2.0
	MinShiftHoursCasual       = 3.0
	MaxConsecutiveWorkingDays = 6
	DefaultShiftHours         = 8.0 // assumed hours for codes missing from the catalog
)

// FortnightBounds resolves the employee's 2-week hour bounds, preferring
// per-employee overrides over the contract table
func (e *Employee) FortnightBounds() HourBounds {
	b := FortnightHourBounds[e.ContractType]
	if e.FortnightMinHours > 0 {
		b.Min = e.FortnightMinHours
	}
	if e.FortnightMaxHours > 0 {
		b.Max = e.FortnightMaxHours
	}
	return b
}

// WeeklyBounds resolves the employee's weekly hour band
func (e *Employee) WeeklyBounds() HourBounds {
	b := WeeklyHourBounds[e.ContractType]
	if e.WeeklyMinHours > 0 {
		b.Min = e.WeeklyMinHours
	}
	if e.WeeklyMaxHours > 0 {
		b.Max = e.WeeklyMaxHours
	}
	return b
}

// WeekdayIndex maps manager-template weekday keys to time.Weekday-style
// indices with Monday = 0
var WeekdayIndex = map[string]int{
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}
