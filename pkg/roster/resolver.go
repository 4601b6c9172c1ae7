package roster

import (
	"fmt"
	"sort"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

// Resolver repairs hard violations in a generated roster through bounded
// local moves. Each iteration targets one violation, tries dropping or
// reassigning the offending shifts, and keeps the candidate that clears
// the violation without creating new hard violations, preferring the one
// that loses the least coverage. Violations no move can fix are skipped so
// an unresolvable roster still terminates.
type Resolver struct {
	ctx *Context
	cfg Config
}

// NewResolver builds a resolver over the run context
func NewResolver(ctx *Context, cfg Config) *Resolver {
	return &Resolver{ctx: ctx, cfg: cfg}
}

// Resolve runs the repair loop and returns the repaired assignment, a log
// transcript, and the number of iterations used. The input slice is not
// mutated.
func (r *Resolver) Resolve(assignments []models.ShiftAssignment) ([]models.ShiftAssignment, []string, int) {
	roster := make([]models.ShiftAssignment, len(assignments))
	copy(roster, assignments)

	var logs []string
	skipped := make(map[string]bool)

	iterations := 0
	for iterations < r.cfg.ResolverMaxIterations {
		target, hardCount := r.nextTarget(roster, skipped)
		if target == nil {
			break
		}
		iterations++

		repaired, note := r.repair(roster, *target, hardCount)
		if repaired == nil {
			skipped[violationKey(*target)] = true
			logs = append(logs, fmt.Sprintf("iteration %d: no repair for %s (%s, %s); skipping",
				iterations, target.Rule, target.EmployeeID, violationScope(*target)))
			continue
		}

		roster = repaired
		logs = append(logs, fmt.Sprintf("iteration %d: %s", iterations, note))
	}

	return roster, logs, iterations
}

// nextTarget picks the hard violation to work on: latest date first, so
// repairs disturb the already-settled early days as little as possible.
// Returns nil when no unskipped hard violation remains.
func (r *Resolver) nextTarget(roster []models.ShiftAssignment, skipped map[string]bool) (*models.Violation, int) {
	violations := CheckRoster(r.ctx, r.cfg, roster)
	hard, _ := CountBySeverity(violations)

	var candidates []models.Violation
	for _, v := range violations {
		if v.Severity == models.Hard && !skipped[violationKey(v)] {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil, hard
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Date != candidates[j].Date {
			return candidates[i].Date > candidates[j].Date
		}
		return candidates[i].EmployeeID < candidates[j].EmployeeID
	})
	return &candidates[0], hard
}

// repair tries every candidate move for the violation and returns the best
// surviving roster plus a log note, or nil when nothing works
func (r *Resolver) repair(roster []models.ShiftAssignment, v models.Violation, hardBefore int) ([]models.ShiftAssignment, string) {
	type candidate struct {
		roster   []models.ShiftAssignment
		note     string
		coverage float64
	}

	key := violationKey(v)
	var best *candidate

	consider := func(next []models.ShiftAssignment, note string) {
		violations := CheckRoster(r.ctx, r.cfg, next)
		hardAfter, _ := CountBySeverity(violations)
		if hardAfter >= hardBefore {
			return
		}
		for _, nv := range violations {
			if nv.Severity == models.Hard && violationKey(nv) == key {
				return
			}
		}

		staged := make([]models.ShiftAssignment, len(next))
		copy(staged, next)
		AssignStations(r.ctx, staged)
		coverage := Evaluate(r.ctx, staged).CoverageScore

		if best == nil || coverage > best.coverage {
			best = &candidate{roster: staged, note: note, coverage: coverage}
		}
	}

	for _, idx := range r.offendingShifts(roster, v) {
		shift := roster[idx]

		dropped := append(append([]models.ShiftAssignment{}, roster[:idx]...), roster[idx+1:]...)
		consider(dropped, fmt.Sprintf("cleared %s for %s by dropping %s on %s",
			v.Rule, shift.EmployeeID, shift.ShiftCode, shift.Date))

		for _, replacement := range r.replacements(roster, shift) {
			next := make([]models.ShiftAssignment, len(dropped), len(dropped)+1)
			copy(next, dropped)
			next = append(next, models.ShiftAssignment{
				EmployeeID: replacement,
				Date:       shift.Date,
				ShiftCode:  shift.ShiftCode,
				StoreID:    shift.StoreID,
			})
			consider(next, fmt.Sprintf("cleared %s for %s by reassigning %s on %s to %s",
				v.Rule, shift.EmployeeID, shift.ShiftCode, shift.Date, replacement))
		}
	}

	if best == nil {
		return nil, ""
	}
	return best.roster, best.note
}

// offendingShifts selects the assignment indexes a repair may remove for the
// given violation, ordered latest date first
func (r *Resolver) offendingShifts(roster []models.ShiftAssignment, v models.Violation) []int {
	var idxs []int
	for i, a := range roster {
		if a.EmployeeID != v.EmployeeID || !r.ctx.isWorkingCode(a.ShiftCode) {
			continue
		}
		switch v.Rule {
		case RuleOneShiftPerDay, RuleNotAvailable, RuleInsufficientRest,
			RuleMinShiftCasual, RuleMaxConsecutiveDays, RuleUnknownEmployee:
			if a.Date == v.Date {
				idxs = append(idxs, i)
			}
		case RuleWeeklyMaxExceeded:
			if r.ctx.WeekIndex(a.Date)+1 == v.Week {
				idxs = append(idxs, i)
			}
		case RuleMaxHoursExceeded:
			idxs = append(idxs, i)
		}
	}

	sort.SliceStable(idxs, func(i, j int) bool {
		return roster[idxs[i]].Date > roster[idxs[j]].Date
	})
	return idxs
}

// replacements lists employees who could absorb the shift being dropped:
// available for its code on its date and not already working that day.
// Under-minimum employees come first, then ascending rostered hours, so
// repairs also chip away at soft hour shortfalls.
func (r *Resolver) replacements(roster []models.ShiftAssignment, shift models.ShiftAssignment) []string {
	working := make(map[string]bool)
	hours := make(map[string]float64)
	for _, a := range roster {
		if !r.ctx.isWorkingCode(a.ShiftCode) {
			continue
		}
		hours[a.EmployeeID] += r.ctx.ShiftHours(a.ShiftCode)
		if a.Date == shift.Date {
			working[a.EmployeeID] = true
		}
	}

	var out []string
	for _, id := range r.ctx.EmployeeIDs {
		if id == shift.EmployeeID || working[id] {
			continue
		}
		if !contains(r.ctx.WorkingCodes(id, shift.Date), shift.ShiftCode) {
			continue
		}
		out = append(out, id)
	}

	underMin := func(id string) bool {
		return hours[id] < r.ctx.Employees[id].FortnightBounds().Min
	}
	sort.SliceStable(out, func(i, j int) bool {
		if underMin(out[i]) != underMin(out[j]) {
			return underMin(out[i])
		}
		return hours[out[i]] < hours[out[j]]
	})
	return out
}

// violationKey identifies a violation across resolver iterations
func violationKey(v models.Violation) string {
	return fmt.Sprintf("%s|%s|%s|%d", v.Rule, v.EmployeeID, v.Date, v.Week)
}

func violationScope(v models.Violation) string {
	if v.Date != "" {
		return v.Date
	}
	if v.Week > 0 {
		return fmt.Sprintf("week %d", v.Week)
	}
	return "window"
}
