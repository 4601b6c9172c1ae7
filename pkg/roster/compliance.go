package roster

import (
	"fmt"
	"sort"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

// Rule identifiers carried on violations
const (
	RuleOneShiftPerDay     = "ONE_SHIFT_PER_DAY"
	RuleNotAvailable       = "NOT_AVAILABLE"
	RuleUnknownEmployee    = "UNKNOWN_EMPLOYEE"
	RuleMaxHoursExceeded   = "MAX_HOURS_EXCEEDED"
	RuleMinHoursNotMet     = "MIN_HOURS_NOT_MET"
	RuleWeeklyMaxExceeded  = "WEEKLY_MAX_HOURS_EXCEEDED"
	RuleWeeklyMinNotMet    = "WEEKLY_MIN_HOURS_NOT_MET"
	RuleInsufficientRest   = "INSUFFICIENT_REST"
	RuleMinShiftCasual     = "MIN_SHIFT_LENGTH_CASUAL"
	RuleMaxConsecutiveDays = "MAX_CONSECUTIVE_DAYS_EXCEEDED"
)

// CheckRoster replays the assignment against every contract and rest rule
// and returns the ordered violation list. Rules are evaluated independently
// with no short-circuiting. Policy: contract hour minimums are soft, hour
// maximums are hard, at both weekly and fortnight granularity.
func CheckRoster(ctx *Context, cfg Config, assignments []models.ShiftAssignment) []models.Violation {
	var violations []models.Violation

	byEmployee := make(map[string][]models.ShiftAssignment)
	for _, a := range assignments {
		byEmployee[a.EmployeeID] = append(byEmployee[a.EmployeeID], a)
	}
	for id := range byEmployee {
		sort.Slice(byEmployee[id], func(i, j int) bool {
			return byEmployee[id][i].Date < byEmployee[id][j].Date
		})
	}

	// 1) At most one working shift per employee per day
	for _, id := range sortedKeys(byEmployee) {
		perDay := make(map[string]int)
		for _, a := range byEmployee[id] {
			if ctx.isWorkingCode(a.ShiftCode) {
				perDay[a.Date]++
			}
		}
		var dates []string
		for date, n := range perDay {
			if n > 1 {
				dates = append(dates, date)
			}
		}
		sort.Strings(dates)
		for _, date := range dates {
			violations = append(violations, models.Violation{
				Rule:       RuleOneShiftPerDay,
				Severity:   models.Hard,
				EmployeeID: id,
				Date:       date,
				Magnitude:  float64(perDay[date] - 1),
				Message:    fmt.Sprintf("Employee %s has %d working shifts on %s.", id, perDay[date], date),
			})
		}
	}

	// 2) Every assigned code must come from the employee's availability
	for _, id := range sortedKeys(byEmployee) {
		for _, a := range byEmployee[id] {
			if contains(ctx.Availability[id][a.Date], a.ShiftCode) {
				continue
			}
			violations = append(violations, models.Violation{
				Rule:       RuleNotAvailable,
				Severity:   models.Hard,
				EmployeeID: id,
				Date:       a.Date,
				Message:    fmt.Sprintf("Employee %s assigned %s on %s outside their availability.", id, a.ShiftCode, a.Date),
			})
		}
	}

	// 3) Fortnight contract bounds: max hard, min soft
	hoursByEmp := make(map[string]float64)
	for _, a := range assignments {
		if ctx.isWorkingCode(a.ShiftCode) {
			hoursByEmp[a.EmployeeID] += ctx.ShiftHours(a.ShiftCode)
		}
	}
	for _, id := range ctx.EmployeeIDs {
		emp := ctx.Employees[id]
		bounds := emp.FortnightBounds()
		total := hoursByEmp[id]

		if total < bounds.Min {
			violations = append(violations, models.Violation{
				Rule:       RuleMinHoursNotMet,
				Severity:   models.Soft,
				EmployeeID: id,
				Magnitude:  bounds.Min - total,
				Message: fmt.Sprintf("Employee %s (%s) has %.1fh, below min %.1fh for contract type %s.",
					emp.Name, id, total, bounds.Min, emp.ContractType),
			})
		}
		if total > bounds.Max {
			violations = append(violations, models.Violation{
				Rule:       RuleMaxHoursExceeded,
				Severity:   models.Hard,
				EmployeeID: id,
				Magnitude:  total - bounds.Max,
				Message: fmt.Sprintf("Employee %s (%s) has %.1fh, above max %.1fh for contract type %s.",
					emp.Name, id, total, bounds.Max, emp.ContractType),
			})
		}
	}

	// 4) Weekly band with overtime slack: hard above band+slack, soft below
	weeklyHours := make(map[string]map[int]float64)
	for _, a := range assignments {
		if !ctx.isWorkingCode(a.ShiftCode) {
			continue
		}
		week := ctx.WeekIndex(a.Date)
		if weeklyHours[a.EmployeeID] == nil {
			weeklyHours[a.EmployeeID] = make(map[int]float64)
		}
		weeklyHours[a.EmployeeID][week] += ctx.ShiftHours(a.ShiftCode)
	}
	for _, id := range ctx.EmployeeIDs {
		emp := ctx.Employees[id]
		band := emp.WeeklyBounds()
		weeks := make([]int, 0, len(weeklyHours[id]))
		for week := range weeklyHours[id] {
			weeks = append(weeks, week)
		}
		sort.Ints(weeks)

		for _, week := range weeks {
			total := weeklyHours[id][week]
			if total < band.Min {
				violations = append(violations, models.Violation{
					Rule:       RuleWeeklyMinNotMet,
					Severity:   models.Soft,
					EmployeeID: id,
					Week:       week + 1,
					Magnitude:  band.Min - total,
					Message: fmt.Sprintf("Employee %s (%s) has %.1fh in week %d, below weekly min %.1fh for contract type %s.",
						emp.Name, id, total, week+1, band.Min, emp.ContractType),
				})
			}
			if total > band.Max+cfg.OvertimeSlackHours {
				violations = append(violations, models.Violation{
					Rule:       RuleWeeklyMaxExceeded,
					Severity:   models.Hard,
					EmployeeID: id,
					Week:       week + 1,
					Magnitude:  total - band.Max,
					Message: fmt.Sprintf("Employee %s (%s) has %.1fh in week %d, above weekly max %.1fh plus %.1fh overtime slack for contract type %s.",
						emp.Name, id, total, week+1, band.Max, cfg.OvertimeSlackHours, emp.ContractType),
				})
			}
		}
	}

	// 5) Minimum shift length for casuals
	for _, id := range sortedKeys(byEmployee) {
		emp := ctx.Employees[id]
		if emp == nil || emp.ContractType != models.Casual {
			continue
		}
		for _, a := range byEmployee[id] {
			if !ctx.isWorkingCode(a.ShiftCode) {
				continue
			}
			hours := ctx.ShiftHours(a.ShiftCode)
			if hours < models.MinShiftHoursCasual {
				violations = append(violations, models.Violation{
					Rule:       RuleMinShiftCasual,
					Severity:   models.Hard,
					EmployeeID: id,
					Date:       a.Date,
					Magnitude:  models.MinShiftHoursCasual - hours,
					Message: fmt.Sprintf("Employee %s (%s) has a %.1fh shift on %s, below %.1fh minimum for casuals.",
						emp.Name, id, hours, a.Date, models.MinShiftHoursCasual),
				})
			}
		}
	}

	// 6) Rest between consecutive days, from shift start/end times with the
	// overnight wrap included
	for _, id := range sortedKeys(byEmployee) {
		worked := workedOnly(ctx, byEmployee[id])
		for i := 0; i+1 < len(worked); i++ {
			prev, next := worked[i], worked[i+1]
			if nextDate(prev.Date) != next.Date {
				continue
			}
			rest := ctx.RestHoursBetween(prev.ShiftCode, next.ShiftCode)
			if rest < cfg.MinRestHours {
				violations = append(violations, models.Violation{
					Rule:       RuleInsufficientRest,
					Severity:   models.Hard,
					EmployeeID: id,
					Date:       next.Date,
					Magnitude:  cfg.MinRestHours - rest,
					Message: fmt.Sprintf("Employee %s has only %.1fh rest between %s (%s) and %s (%s), below %.1fh.",
						id, rest, prev.Date, prev.ShiftCode, next.Date, next.ShiftCode, cfg.MinRestHours),
				})
			}
		}
	}

	// 7) Maximum consecutive working days
	for _, id := range sortedKeys(byEmployee) {
		worked := workedOnly(ctx, byEmployee[id])
		streak := 1
		for i := 0; i+1 < len(worked); i++ {
			if nextDate(worked[i].Date) == worked[i+1].Date {
				streak++
			} else {
				streak = 1
			}
			if streak > models.MaxConsecutiveWorkingDays {
				violations = append(violations, models.Violation{
					Rule:       RuleMaxConsecutiveDays,
					Severity:   models.Hard,
					EmployeeID: id,
					Date:       worked[i+1].Date,
					Magnitude:  float64(streak - models.MaxConsecutiveWorkingDays),
					Message: fmt.Sprintf("Employee %s works %d consecutive days ending %s, above the limit of %d.",
						id, streak, worked[i+1].Date, models.MaxConsecutiveWorkingDays),
				})
				break
			}
		}
	}

	// 8) Sanity: assignments for unknown employees
	for _, a := range assignments {
		if _, ok := ctx.Employees[a.EmployeeID]; !ok {
			violations = append(violations, models.Violation{
				Rule:       RuleUnknownEmployee,
				Severity:   models.Hard,
				EmployeeID: a.EmployeeID,
				Date:       a.Date,
				Message:    fmt.Sprintf("Roster references unknown employee %q on %s.", a.EmployeeID, a.Date),
			})
		}
	}

	return violations
}

// CountBySeverity tallies hard and soft violations
func CountBySeverity(violations []models.Violation) (hard, soft int) {
	for _, v := range violations {
		if v.Severity == models.Hard {
			hard++
		} else {
			soft++
		}
	}
	return hard, soft
}

func (c *Context) isWorkingCode(code string) bool {
	tpl, known := c.Catalog[code]
	if !known {
		// unknown codes are treated as generic working shifts
		return true
	}
	return tpl.Working
}

// workedOnly filters an employee's date-sorted assignments down to working
// codes. Employees outside the context keep their assignments so the rest
// rules still see them.
func workedOnly(ctx *Context, assignments []models.ShiftAssignment) []models.ShiftAssignment {
	var out []models.ShiftAssignment
	for _, a := range assignments {
		if ctx.isWorkingCode(a.ShiftCode) {
			out = append(out, a)
		}
	}
	return out
}

func sortedKeys(m map[string][]models.ShiftAssignment) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
