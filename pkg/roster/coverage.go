package roster

import (
	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

// Evaluate computes the roster metrics from the assignment and the demand
// model. Pure function of its inputs: re-running it on an unchanged
// assignment yields identical metrics. Zero-denominator dates and windows
// are excluded from their ratio rather than scored as 0% or 100%.
func Evaluate(ctx *Context, assignments []models.ShiftAssignment) models.RosterEvaluationMetrics {
	type dayStats struct {
		workers    map[string]string // employee -> code
		stationed  map[models.SkillTag]int
		lunch      map[string]bool
		dinner     map[string]bool
		managers   map[string]bool
		openingMgr bool
		closingMgr bool
		lunchMgrs  map[string]bool
		dinnerMgrs map[string]bool
	}

	days := make(map[string]*dayStats)
	stats := func(date string) *dayStats {
		s := days[date]
		if s == nil {
			s = &dayStats{
				workers:    make(map[string]string),
				stationed:  make(map[models.SkillTag]int),
				lunch:      make(map[string]bool),
				dinner:     make(map[string]bool),
				managers:   make(map[string]bool),
				lunchMgrs:  make(map[string]bool),
				dinnerMgrs: make(map[string]bool),
			}
			days[date] = s
		}
		return s
	}

	for _, a := range assignments {
		if !ctx.isWorkingCode(a.ShiftCode) {
			continue
		}
		s := stats(a.Date)
		s.workers[a.EmployeeID] = a.ShiftCode

		if a.Station != "" && a.Station != models.General {
			s.stationed[a.Station]++
		}

		tpl := ctx.Catalog[a.ShiftCode]
		if tpl.Overlaps(models.LunchStartMinute, models.LunchEndMinute) {
			s.lunch[a.EmployeeID] = true
		}
		if tpl.Overlaps(models.DinnerStartMinute, models.DinnerEndMinute) {
			s.dinner[a.EmployeeID] = true
		}

		emp := ctx.Employees[a.EmployeeID]
		if emp == nil || !emp.IsManager() {
			continue
		}
		s.managers[a.EmployeeID] = true
		if tpl.Opening() {
			s.openingMgr = true
		}
		if tpl.Closing() {
			s.closingMgr = true
		}
		if tpl.Overlaps(models.LunchStartMinute, models.LunchEndMinute) {
			s.lunchMgrs[a.EmployeeID] = true
		}
		if tpl.Overlaps(models.DinnerStartMinute, models.DinnerEndMinute) {
			s.dinnerMgrs[a.EmployeeID] = true
		}
	}

	var (
		requiredTotal, coveredTotal          float64
		peakRequired, peakCovered            float64
		weekdayStaff, weekendStaff           float64
		weekdayDays, weekendDays             int
		totalDays                            int
		daysWithManager                      int
		daysWithOpeningMgr                   int
		daysWithClosingMgr                   int
		peakWindows, peakWindowsTwoMgrs      int
		catalogHasOpening, catalogHasClosing bool
	)

	for _, tpl := range ctx.Catalog {
		if tpl.Opening() {
			catalogHasOpening = true
		}
		if tpl.Closing() {
			catalogHasClosing = true
		}
	}

	for _, date := range ctx.Dates {
		totalDays++
		s := days[date]
		demand := ctx.Demand[date]
		demandToday := float64(totalDemand(demand))

		// Per-(date, station) coverage: sum(min(assigned, required)).
		for station, required := range demand {
			if required <= 0 {
				continue
			}
			assigned := 0
			if s != nil {
				assigned = s.stationed[station]
			}
			requiredTotal += float64(required)
			coveredTotal += float64(min(assigned, required))
		}

		// Peak windows approximate required headcount as the daily demand.
		if demandToday > 0 {
			lunchAssigned, dinnerAssigned := 0.0, 0.0
			if s != nil {
				lunchAssigned = float64(len(s.lunch))
				dinnerAssigned = float64(len(s.dinner))
			}
			peakRequired += 2 * demandToday
			peakCovered += minFloat(lunchAssigned, demandToday) + minFloat(dinnerAssigned, demandToday)
		}

		assignedToday := 0.0
		if s != nil {
			assignedToday = float64(len(s.workers))
		}
		if isWeekend(date) {
			weekendStaff += assignedToday
			weekendDays++
		} else {
			weekdayStaff += assignedToday
			weekdayDays++
		}

		if s != nil && len(s.managers) > 0 {
			daysWithManager++
		}
		if s != nil && s.openingMgr {
			daysWithOpeningMgr++
		}
		if s != nil && s.closingMgr {
			daysWithClosingMgr++
		}

		if demandToday > 0 {
			peakWindows += 2
			if s != nil && len(s.lunchMgrs) >= 2 {
				peakWindowsTwoMgrs++
			}
			if s != nil && len(s.dinnerMgrs) >= 2 {
				peakWindowsTwoMgrs++
			}
		}
	}

	metrics := models.RosterEvaluationMetrics{}

	if requiredTotal > 0 {
		metrics.CoverageScore = coveredTotal / requiredTotal
	}
	if peakRequired > 0 {
		metrics.PeakCoverageScore = peakCovered / peakRequired
	}

	if weekdayDays > 0 && weekendDays > 0 {
		weekdayAvg := weekdayStaff / float64(weekdayDays)
		weekendAvg := weekendStaff / float64(weekendDays)
		if weekdayAvg > 0 {
			metrics.FairnessScore = weekendAvg / weekdayAvg
		}
	}

	if totalDays > 0 {
		metrics.ManagerCoverageScore = float64(daysWithManager) / float64(totalDays)
		if catalogHasOpening {
			metrics.ManagerOpeningCoverage = float64(daysWithOpeningMgr) / float64(totalDays)
		}
		if catalogHasClosing {
			metrics.ManagerClosingCoverage = float64(daysWithClosingMgr) / float64(totalDays)
		}
	}

	if peakWindows > 0 {
		metrics.ManagerPeakTwoCoverage = float64(peakWindowsTwoMgrs) / float64(peakWindows)
	}

	return metrics
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
