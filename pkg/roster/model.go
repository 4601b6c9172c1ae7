package roster

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

var (
	// ErrNoEmployees means the context carries no staff at all; a data
	// defect rather than an optimization shortfall.
	ErrNoEmployees = errors.New("roster: no employees in context")

	// ErrNoShiftCodes means no working shift code is discoverable from any
	// employee's availability, so no assignment can exist.
	ErrNoShiftCodes = errors.New("roster: no working shift codes discoverable from availability")
)

// Model is the constrained-assignment formulation: one boolean decision per
// (employee, date, shift code) restricted to availability, hard one-shift,
// rest-pair and hour-bound constraints, and a weighted objective whose
// strictly separated weights make it lexicographic.
type Model struct {
	ctx *Context
	cfg Config
	rng *rand.Rand

	// disallowed (yesterday code, today code) pairs, enumerated up front
	// from the catalog instead of computing gaps during the search
	forbidden map[string]map[string]bool

	// per-date manager reachability, so absence penalties are only charged
	// where a manager assignment was actually possible
	mgrAvailable map[string]bool
	mgrCanOpen   map[string]bool
	mgrCanClose  map[string]bool
	mgrCanLunch  map[string]bool
	mgrCanDinner map[string]bool
}

// solution maps date -> employee -> assigned working shift code
type solution struct {
	byDay map[string]map[string]string
}

func newSolution() *solution {
	return &solution{byDay: make(map[string]map[string]string)}
}

func (s *solution) codeFor(empID, date string) string {
	return s.byDay[date][empID]
}

func (s *solution) assign(empID, date, code string) {
	day := s.byDay[date]
	if day == nil {
		day = make(map[string]string)
		s.byDay[date] = day
	}
	day[empID] = code
}

func (s *solution) unassign(empID, date string) {
	delete(s.byDay[date], empID)
}

func (s *solution) workers(date string) []string {
	ids := make([]string, 0, len(s.byDay[date]))
	for id := range s.byDay[date] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewModel precomputes the forbidden rest pairs and per-date manager
// reachability for the given context
func NewModel(ctx *Context, cfg Config) *Model {
	m := &Model{
		ctx:          ctx,
		cfg:          cfg,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		forbidden:    make(map[string]map[string]bool),
		mgrAvailable: make(map[string]bool),
		mgrCanOpen:   make(map[string]bool),
		mgrCanClose:  make(map[string]bool),
		mgrCanLunch:  make(map[string]bool),
		mgrCanDinner: make(map[string]bool),
	}

	for prevCode, prev := range ctx.Catalog {
		if !prev.Working {
			continue
		}
		for nextCode, next := range ctx.Catalog {
			if !next.Working {
				continue
			}
			if ctx.RestHoursBetween(prevCode, nextCode) < cfg.MinRestHours {
				if m.forbidden[prevCode] == nil {
					m.forbidden[prevCode] = make(map[string]bool)
				}
				m.forbidden[prevCode][nextCode] = true
			}
		}
	}

	for _, date := range ctx.Dates {
		for _, id := range ctx.EmployeeIDs {
			if !ctx.Employees[id].IsManager() {
				continue
			}
			for _, code := range ctx.WorkingCodes(id, date) {
				m.mgrAvailable[date] = true
				tpl := ctx.Catalog[code]
				if tpl.Opening() {
					m.mgrCanOpen[date] = true
				}
				if tpl.Closing() {
					m.mgrCanClose[date] = true
				}
				if tpl.Overlaps(models.LunchStartMinute, models.LunchEndMinute) {
					m.mgrCanLunch[date] = true
				}
				if tpl.Overlaps(models.DinnerStartMinute, models.DinnerEndMinute) {
					m.mgrCanDinner[date] = true
				}
			}
		}
	}

	return m
}

// Solve produces an assignment satisfying the hard constraints and
// minimizing the lexicographic objective. It restarts the randomized
// construction and improvement until the wall-clock budget runs out,
// keeping the best incumbent; on timeout the incumbent is returned flagged
// as non-proven-optimal. A context with no employees or no discoverable
// working codes is a fatal configuration error, reported distinctly.
func (m *Model) Solve() ([]models.ShiftAssignment, models.ObjectiveBreakdown, bool, error) {
	if len(m.ctx.Employees) == 0 {
		return nil, models.ObjectiveBreakdown{}, false, ErrNoEmployees
	}

	anyCode := false
	for _, id := range m.ctx.EmployeeIDs {
		for _, date := range m.ctx.Dates {
			if len(m.ctx.WorkingCodes(id, date)) > 0 {
				anyCode = true
				break
			}
		}
		if anyCode {
			break
		}
	}
	if !anyCode {
		return nil, models.ObjectiveBreakdown{}, false, ErrNoShiftCodes
	}

	deadline := time.Now().Add(m.cfg.SolverBudget)

	var best *solution
	var bestBreakdown models.ObjectiveBreakdown
	for {
		sol := m.construct()
		m.improve(sol, deadline)

		breakdown := m.evaluate(sol)
		if best == nil || breakdown.WeightedCost < bestBreakdown.WeightedCost {
			best = sol
			bestBreakdown = breakdown
		}

		if bestBreakdown.WeightedCost == 0 || !time.Now().Before(deadline) {
			break
		}
	}

	proven := bestBreakdown.WeightedCost == 0
	return m.toAssignments(best), bestBreakdown, proven, nil
}

// feasible checks every hard constraint for adding (empID, date, code) to
// the solution: availability, one working shift per day, the forbidden
// rest pairs against both neighboring days, the fortnight max and the
// weekly band plus overtime slack.
func (m *Model) feasible(sol *solution, empID, date, code string) bool {
	if sol.codeFor(empID, date) != "" {
		return false
	}

	allowed := false
	for _, c := range m.ctx.WorkingCodes(empID, date) {
		if c == code {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	if prev := sol.codeFor(empID, prevDate(date)); prev != "" && m.forbidden[prev][code] {
		return false
	}
	if next := sol.codeFor(empID, nextDate(date)); next != "" && m.forbidden[code][next] {
		return false
	}

	emp := m.ctx.Employees[empID]
	hours := m.ctx.ShiftHours(code)

	total := 0.0
	weekTotal := 0.0
	week := m.ctx.WeekIndex(date)
	for _, d := range m.ctx.Dates {
		c := sol.codeFor(empID, d)
		if c == "" {
			continue
		}
		h := m.ctx.ShiftHours(c)
		total += h
		if m.ctx.WeekIndex(d) == week {
			weekTotal += h
		}
	}

	if total+hours > emp.FortnightBounds().Max {
		return false
	}
	if weekTotal+hours > emp.WeeklyBounds().Max+m.cfg.OvertimeSlackHours {
		return false
	}
	return true
}

// construct builds one feasible assignment greedily: per date, managers are
// seated on opening/closing shifts first when the template expects any,
// then demand is filled preferring the employees with the fewest hours so
// far (randomized tie-break for restart diversity).
func (m *Model) construct() *solution {
	sol := newSolution()
	hours := make(map[string]float64)

	for _, date := range m.ctx.Dates {
		need := totalDemand(m.ctx.Demand[date])

		candidates := make([]string, 0, len(m.ctx.EmployeeIDs))
		for _, id := range m.ctx.EmployeeIDs {
			if len(m.ctx.WorkingCodes(id, date)) > 0 {
				candidates = append(candidates, id)
			}
		}
		m.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		sort.SliceStable(candidates, func(i, j int) bool {
			return hours[candidates[i]] < hours[candidates[j]]
		})

		if m.ctx.ExpectedManagers(date) > 0 {
			m.seatManager(sol, hours, date, candidates, func(tpl models.ShiftCode) bool { return tpl.Opening() })
			m.seatManager(sol, hours, date, candidates, func(tpl models.ShiftCode) bool { return tpl.Closing() })
		}

		assigned := len(sol.byDay[date])
		for _, id := range candidates {
			if assigned >= need {
				break
			}
			if sol.codeFor(id, date) != "" {
				continue
			}
			code := m.pickCode(sol, id, date)
			if code == "" {
				continue
			}
			sol.assign(id, date, code)
			hours[id] += m.ctx.ShiftHours(code)
			assigned++
		}
	}

	return sol
}

// seatManager places one manager on a shift of the wanted class (opening or
// closing) if none is seated yet and a feasible candidate exists
func (m *Model) seatManager(sol *solution, hours map[string]float64, date string, candidates []string, wanted func(models.ShiftCode) bool) {
	for _, id := range sol.workers(date) {
		if m.ctx.Employees[id].IsManager() && wanted(m.ctx.Catalog[sol.codeFor(id, date)]) {
			return
		}
	}

	for _, id := range candidates {
		if !m.ctx.Employees[id].IsManager() || sol.codeFor(id, date) != "" {
			continue
		}
		for _, code := range m.ctx.WorkingCodes(id, date) {
			if !wanted(m.ctx.Catalog[code]) {
				continue
			}
			if m.feasible(sol, id, date, code) {
				sol.assign(id, date, code)
				hours[id] += m.ctx.ShiftHours(code)
				return
			}
		}
	}
}

// pickCode chooses a feasible code for the employee on the date, preferring
// codes that overlap both peak windows
func (m *Model) pickCode(sol *solution, empID, date string) string {
	var fallback string
	for _, code := range m.ctx.WorkingCodes(empID, date) {
		if !m.feasible(sol, empID, date, code) {
			continue
		}
		tpl := m.ctx.Catalog[code]
		if tpl.Overlaps(models.LunchStartMinute, models.LunchEndMinute) &&
			tpl.Overlaps(models.DinnerStartMinute, models.DinnerEndMinute) {
			return code
		}
		if fallback == "" {
			fallback = code
		}
	}
	return fallback
}

// improve runs bounded local search passes over the incumbent: adding
// employees and switching assigned codes wherever that lowers the weighted
// cost. Stops when a pass yields nothing or the deadline passes.
func (m *Model) improve(sol *solution, deadline time.Time) {
	for pass := 0; pass < 3; pass++ {
		improved := false
		cost := m.evaluate(sol).WeightedCost
		if cost == 0 {
			return
		}

		for _, date := range m.ctx.Dates {
			for _, id := range m.ctx.EmployeeIDs {
				current := sol.codeFor(id, date)

				for _, code := range m.ctx.WorkingCodes(id, date) {
					if code == current {
						continue
					}
					if current != "" {
						sol.unassign(id, date)
					}
					if !m.feasible(sol, id, date, code) {
						if current != "" {
							sol.assign(id, date, current)
						}
						continue
					}
					sol.assign(id, date, code)
					if c := m.evaluate(sol).WeightedCost; c < cost {
						cost = c
						current = code
						improved = true
						continue
					}
					sol.unassign(id, date)
					if current != "" {
						sol.assign(id, date, current)
					}
				}
			}
			if !time.Now().Before(deadline) {
				return
			}
		}

		if !improved {
			return
		}
	}
}

// evaluate computes the objective breakdown for a solution. Penalties are
// only charged where the context made satisfying them possible, matching
// how the absence terms were conditioned in the demand formulation.
func (m *Model) evaluate(sol *solution) models.ObjectiveBreakdown {
	bd := models.ObjectiveBreakdown{}

	weekHours := make(map[string]map[int]float64)

	for _, date := range m.ctx.Dates {
		workers := sol.workers(date)

		fill := stationFill(m.ctx.Demand[date], workers, m.ctx.Employees)
		for station, required := range m.ctx.Demand[date] {
			if filled := fill[station]; filled < required {
				bd.ShortfallTotal += required - filled
			}
		}

		managers := 0
		openingMgr, closingMgr := false, false
		lunchMgrs, dinnerMgrs := 0, 0
		for _, id := range workers {
			code := sol.codeFor(id, date)
			h := m.ctx.ShiftHours(code)
			week := m.ctx.WeekIndex(date)
			if weekHours[id] == nil {
				weekHours[id] = make(map[int]float64)
			}
			weekHours[id][week] += h

			if !m.ctx.Employees[id].IsManager() {
				continue
			}
			managers++
			tpl := m.ctx.Catalog[code]
			if tpl.Opening() {
				openingMgr = true
			}
			if tpl.Closing() {
				closingMgr = true
			}
			if tpl.Overlaps(models.LunchStartMinute, models.LunchEndMinute) {
				lunchMgrs++
			}
			if tpl.Overlaps(models.DinnerStartMinute, models.DinnerEndMinute) {
				dinnerMgrs++
			}
		}

		if m.mgrAvailable[date] && m.ctx.ExpectedManagers(date) > 0 {
			if managers == 0 {
				bd.ManagerAbsentDays++
			}
			if m.mgrCanOpen[date] && !openingMgr {
				bd.OpeningAbsentDays++
			}
			if m.mgrCanClose[date] && !closingMgr {
				bd.ClosingAbsentDays++
			}
		}

		if totalDemand(m.ctx.Demand[date]) > 0 {
			if m.mgrCanLunch[date] && lunchMgrs < 2 {
				bd.PeakTwoGap += 2 - lunchMgrs
			}
			if m.mgrCanDinner[date] && dinnerMgrs < 2 {
				bd.PeakTwoGap += 2 - dinnerMgrs
			}
		}
	}

	for id, weeks := range weekHours {
		weeklyMax := m.ctx.Employees[id].WeeklyBounds().Max
		for _, h := range weeks {
			if h > weeklyMax {
				bd.OvertimeHours += h - weeklyMax
			}
		}
	}

	w := m.cfg.Weights
	bd.WeightedCost = float64(bd.ShortfallTotal)*w.Shortfall +
		bd.OvertimeHours*w.Overtime +
		float64(bd.ManagerAbsentDays)*w.ManagerAbsent +
		float64(bd.OpeningAbsentDays)*w.OpeningAbsent +
		float64(bd.ClosingAbsentDays)*w.ClosingAbsent +
		float64(bd.PeakTwoGap)*w.PeakTwoGap
	return bd
}

// toAssignments flattens the solution into the output contract, sorted by
// date then employee
func (m *Model) toAssignments(sol *solution) []models.ShiftAssignment {
	var out []models.ShiftAssignment
	for _, date := range m.ctx.Dates {
		for _, id := range sol.workers(date) {
			out = append(out, models.ShiftAssignment{
				EmployeeID: id,
				Date:       date,
				ShiftCode:  sol.codeFor(id, date),
				StoreID:    m.ctx.StoreID,
			})
		}
	}
	return out
}

func prevDate(date string) string {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, -1).Format(dateLayout)
}

func nextDate(date string) string {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, 1).Format(dateLayout)
}
