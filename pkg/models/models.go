package models

// ContractType classifies an employee's employment contract
type ContractType string

const (
	FullTime ContractType = "full_time"
	PartTime ContractType = "part_time"
	Casual   ContractType = "casual"
)

// SkillTag marks a station an employee can work, or the manager capability
type SkillTag string

const (
	Kitchen  SkillTag = "kitchen"
	Counter  SkillTag = "counter"
	McCafe   SkillTag = "mccafe"
	Dessert  SkillTag = "dessert"
	Delivery SkillTag = "delivery"
	Manager  SkillTag = "manager"

	// General is the fallback station for employees whose skills match no
	// remaining demand on a given day.
	General SkillTag = "general"
)

// Employee represents a rostered staff member. Hour bounds default from the
// contract-type tables when left zero.
type Employee struct {
	ID           string       `json:"id" validate:"required"`
	Name         string       `json:"name"`
	ContractType ContractType `json:"contract_type" validate:"required,oneof=full_time part_time casual"`
	SkillTags    []SkillTag   `json:"skill_tags"`

	// Optional per-employee overrides of the contract hour tables
	// (hours over the 2-week horizon and per 7-day week).
	FortnightMinHours float64 `json:"fortnight_min_hours,omitempty"`
	FortnightMaxHours float64 `json:"fortnight_max_hours,omitempty"`
	WeeklyMinHours    float64 `json:"weekly_min_hours,omitempty"`
	WeeklyMaxHours    float64 `json:"weekly_max_hours,omitempty"`
}

// HasSkill reports whether the employee carries the given skill tag
func (e *Employee) HasSkill(tag SkillTag) bool {
	for _, t := range e.SkillTags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsManager reports whether the employee carries the manager tag
func (e *Employee) IsManager() bool {
	return e.HasSkill(Manager)
}

// AvailabilityEntry lists the shift codes an employee may work per date.
// Dates are ISO "2006-01-02" strings; codes reference the shift catalog and
// may include the non-working sentinels (OFF, NA, M).
type AvailabilityEntry struct {
	EmployeeID string              `json:"employee_id" validate:"required"`
	Days       map[string][]string `json:"days" validate:"required"`
}

// ShiftAssignment is one (employee, date, shift code) decision. Station is
// empty until the station assigner runs.
type ShiftAssignment struct {
	EmployeeID string   `json:"employee_id"`
	Date       string   `json:"date"`
	ShiftCode  string   `json:"shift_code"`
	Station    SkillTag `json:"station,omitempty"`
	StoreID    string   `json:"store_id,omitempty"`
}

// ViolationSeverity separates rule breaches that must not survive in a final
// roster from tolerated-but-penalized ones
type ViolationSeverity string

const (
	Hard ViolationSeverity = "hard"
	Soft ViolationSeverity = "soft"
)

// Violation records a single compliance rule breach
type Violation struct {
	Rule       string            `json:"rule"`
	Severity   ViolationSeverity `json:"severity"`
	EmployeeID string            `json:"employee_id,omitempty"`
	Date       string            `json:"date,omitempty"`
	Week       int               `json:"week,omitempty"` // 1-based week index, 0 when not week-scoped
	Magnitude  float64           `json:"magnitude,omitempty"`
	Message    string            `json:"message"`
}

// RosterEvaluationMetrics holds the derived scores for a roster. All ratios
// are in [0,1]; a zero-denominator date or window is excluded rather than
// counted as 0% or 100%.
type RosterEvaluationMetrics struct {
	CoverageScore          float64 `json:"coverage_score"`
	PeakCoverageScore      float64 `json:"peak_coverage_score"`
	FairnessScore          float64 `json:"fairness_score"`
	ManagerCoverageScore   float64 `json:"manager_coverage_score"`
	ManagerOpeningCoverage float64 `json:"manager_opening_coverage"`
	ManagerClosingCoverage float64 `json:"manager_closing_coverage"`
	ManagerPeakTwoCoverage float64 `json:"manager_peak_two_coverage_score"`
}

// ObjectiveWeights are the lexicographic objective term weights. Magnitudes
// must be separated widely enough that no combination of lower-priority
// terms outweighs one unit of a higher-priority term.
type ObjectiveWeights struct {
	Shortfall     float64 `json:"shortfall"`
	Overtime      float64 `json:"overtime"`
	ManagerAbsent float64 `json:"manager_absent"`
	OpeningAbsent float64 `json:"opening_absent"`
	ClosingAbsent float64 `json:"closing_absent"`
	PeakTwoGap    float64 `json:"peak_two_gap"`
}

// ObjectiveBreakdown reports the achieved value of each objective term for
// diagnostics alongside the assignment
type ObjectiveBreakdown struct {
	ShortfallTotal    int     `json:"shortfall_total"`
	OvertimeHours     float64 `json:"overtime_hours"`
	ManagerAbsentDays int     `json:"manager_absent_days"`
	OpeningAbsentDays int     `json:"opening_absent_days"`
	ClosingAbsentDays int     `json:"closing_absent_days"`
	PeakTwoGap        int     `json:"peak_two_gap"`
	WeightedCost      float64 `json:"weighted_cost"`
}

// SolveOptions are the per-request knobs of the engine. Zero values fall
// back to the configured defaults.
type SolveOptions struct {
	WeekendUplift         float64           `json:"weekend_uplift,omitempty"`
	MinRestHours          float64           `json:"min_rest_hours,omitempty"`
	OvertimeSlackHours    float64           `json:"overtime_slack_hours,omitempty"`
	SolverBudgetSeconds   float64           `json:"solver_budget_seconds,omitempty"`
	ResolverMaxIterations int               `json:"resolver_max_iterations,omitempty"`
	Weights               *ObjectiveWeights `json:"weights,omitempty"`
}

// RosterInput is the request contract for a roster run. The external loader
// is responsible for turning spreadsheets into this structure.
type RosterInput struct {
	StoreID   string `json:"store_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`

	Employees    []Employee          `json:"employees" validate:"required,min=1,dive"`
	Availability []AvailabilityEntry `json:"availability" validate:"required,dive"`

	// Per-station base headcount per day; weekends are uplifted.
	BaseDemand map[SkillTag]int `json:"base_demand" validate:"required"`

	// Explicit per-date per-station demand overriding the derived profile
	// for the listed dates.
	DemandOverrides map[string]map[SkillTag]int `json:"demand_overrides,omitempty"`

	// Expected manager headcount per weekday ("mon".."sun"), derived
	// upstream from the management monthly roster.
	ManagerTemplate map[string]int `json:"manager_template,omitempty"`

	Options *SolveOptions `json:"options,omitempty"`
}

// RosterResponse is the output contract: the final assignment, the
// violation list and the evaluation metrics as plain records.
type RosterResponse struct {
	StoreID        string                  `json:"store_id"`
	Assignments    []ShiftAssignment       `json:"assignments"`
	Violations     []Violation             `json:"violations"`
	HardViolations int                     `json:"hard_violations"`
	SoftViolations int                     `json:"soft_violations"`
	Metrics        RosterEvaluationMetrics `json:"metrics"`
	Breakdown      ObjectiveBreakdown      `json:"objective_breakdown"`
	ResolverUsed   bool                    `json:"resolver_used"`
	ProvenOptimal  bool                    `json:"proven_optimal"`
	Logs           []string                `json:"logs,omitempty"`
}
