package roster

import (
	"fmt"
	"sort"
	"time"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

const dateLayout = "2006-01-02"

// Config carries the engine parameters for one run
type Config struct {
	WeekendUplift         float64
	MinRestHours          float64
	OvertimeSlackHours    float64
	SolverBudget          time.Duration
	ResolverMaxIterations int
	Weights               models.ObjectiveWeights
}

// DefaultConfig returns the stock engine parameters. Weight magnitudes are
// strictly separated so the objective stays lexicographic: coverage, then
// overtime, then manager presence, then opening/closing managers, then the
// two-managers-in-peaks preference.
func DefaultConfig() Config {
	return Config{
		WeekendUplift:         1.35,
		MinRestHours:          models.DefaultMinRestHours,
		OvertimeSlackHours:    models.DefaultOvertimeSlackHours,
		SolverBudget:          10 * time.Second,
		ResolverMaxIterations: 20,
		Weights: models.ObjectiveWeights{
			Shortfall:     1000,
			Overtime:      1,
			ManagerAbsent: 100,
			OpeningAbsent: 50,
			ClosingAbsent: 50,
			PeakTwoGap:    10,
		},
	}
}

// WithOptions overlays per-request options onto the config
func (c Config) WithOptions(o *models.SolveOptions) Config {
	if o == nil {
		return c
	}
	if o.WeekendUplift > 0 {
		c.WeekendUplift = o.WeekendUplift
	}
	if o.MinRestHours > 0 {
		c.MinRestHours = o.MinRestHours
	}
	if o.OvertimeSlackHours > 0 {
		c.OvertimeSlackHours = o.OvertimeSlackHours
	}
	if o.SolverBudgetSeconds > 0 {
		c.SolverBudget = time.Duration(o.SolverBudgetSeconds * float64(time.Second))
	}
	if o.ResolverMaxIterations > 0 {
		c.ResolverMaxIterations = o.ResolverMaxIterations
	}
	if o.Weights != nil {
		c.Weights = *o.Weights
	}
	return c
}

// Context is the shared blackboard for a single run: employee roster,
// availability, demand and the manager headcount template. Built once,
// read by every downstream component; only the assignment it produces is
// ever mutated.
type Context struct {
	StoreID   string
	StartDate string
	EndDate   string
	Dates     []string // ordered ISO dates of the planning window

	Employees   map[string]*models.Employee
	EmployeeIDs []string // sorted, for deterministic iteration

	// employee -> date -> allowed shift codes (sentinels included)
	Availability map[string]map[string][]string

	// date -> station -> required headcount; filled by BuildDemand
	Demand map[string]map[models.SkillTag]int

	// weekday (Mon=0..Sun=6) -> expected manager headcount
	ManagerTemplate map[int]int

	Catalog map[string]models.ShiftCode
}

// NewContext builds the run context from the input contract. Demand is
// left empty; the pipeline derives it via BuildDemand.
func NewContext(input *models.RosterInput) (*Context, error) {
	dates, err := dateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		StoreID:         input.StoreID,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Dates:           dates,
		Employees:       make(map[string]*models.Employee, len(input.Employees)),
		Availability:    make(map[string]map[string][]string),
		Demand:          make(map[string]map[models.SkillTag]int),
		ManagerTemplate: make(map[int]int),
		Catalog:         models.DefaultCatalog(),
	}

	for i := range input.Employees {
		emp := input.Employees[i]
		if _, exists := ctx.Employees[emp.ID]; exists {
			return nil, fmt.Errorf("duplicate employee id %q", emp.ID)
		}
		ctx.Employees[emp.ID] = &emp
		ctx.EmployeeIDs = append(ctx.EmployeeIDs, emp.ID)
	}
	sort.Strings(ctx.EmployeeIDs)

	for _, entry := range input.Availability {
		if _, ok := ctx.Employees[entry.EmployeeID]; !ok {
			return nil, fmt.Errorf("availability references unknown employee %q", entry.EmployeeID)
		}
		byDate := ctx.Availability[entry.EmployeeID]
		if byDate == nil {
			byDate = make(map[string][]string)
			ctx.Availability[entry.EmployeeID] = byDate
		}
		for date, codes := range entry.Days {
			if _, err := time.Parse(dateLayout, date); err != nil {
				return nil, fmt.Errorf("availability for %q has bad date %q", entry.EmployeeID, date)
			}
			byDate[date] = append(byDate[date], codes...)
		}
	}

	for key, count := range input.ManagerTemplate {
		idx, ok := models.WeekdayIndex[key]
		if !ok {
			return nil, fmt.Errorf("manager template has unknown weekday %q", key)
		}
		ctx.ManagerTemplate[idx] = count
	}

	return ctx, nil
}

// WorkingCodes returns the working shift codes the employee may take on the
// given date, with sentinels (OFF, NA, M) filtered out. Codes missing from
// the catalog are kept and treated as generic working shifts.
func (c *Context) WorkingCodes(empID, date string) []string {
	var out []string
	for _, code := range c.Availability[empID][date] {
		tpl, known := c.Catalog[code]
		if known && !tpl.Working {
			continue
		}
		out = append(out, code)
	}
	return out
}

// ShiftHours returns the scheduled hours of a code, falling back to the
// default for codes missing from the catalog
func (c *Context) ShiftHours(code string) float64 {
	if tpl, ok := c.Catalog[code]; ok && tpl.Working {
		return tpl.Hours
	}
	return models.DefaultShiftHours
}

// RestHoursBetween computes the rest gap between the end of prevCode on day
// D and the start of nextCode on day D+1, crossing midnight. Unknown codes
// are assumed safe.
func (c *Context) RestHoursBetween(prevCode, nextCode string) float64 {
	prev, okPrev := c.Catalog[prevCode]
	next, okNext := c.Catalog[nextCode]
	if !okPrev || !okNext || !prev.Working || !next.Working {
		return 24.0
	}
	return float64(24*60-prev.EndMinute+next.StartMinute) / 60.0
}

// ExpectedManagers returns the manager-template headcount for the date's
// weekday, defaulting to 1 when no template was provided
func (c *Context) ExpectedManagers(date string) int {
	if len(c.ManagerTemplate) == 0 {
		return 1
	}
	return c.ManagerTemplate[weekdayIndex(date)]
}

// WeekIndex returns the 0-based 7-day chunk of the date within the window
func (c *Context) WeekIndex(date string) int {
	start, _ := time.Parse(dateLayout, c.StartDate)
	d, _ := time.Parse(dateLayout, date)
	return int(d.Sub(start).Hours()) / 24 / 7
}

func dateRange(start, end string) ([]string, error) {
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("bad start date %q: %w", start, err)
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("bad end date %q: %w", end, err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end date %s is before start date %s", end, start)
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates, nil
}

// weekdayIndex maps a date to Mon=0..Sun=6
func weekdayIndex(date string) int {
	d, _ := time.Parse(dateLayout, date)
	return (int(d.Weekday()) + 6) % 7
}

func isWeekend(date string) bool {
	return weekdayIndex(date) >= 5
}
