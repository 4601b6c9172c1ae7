package roster

import (
	"fmt"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

// Result is the full outcome of one engine run
type Result struct {
	Assignments    []models.ShiftAssignment
	Violations     []models.Violation
	HardViolations int
	SoftViolations int
	Metrics        models.RosterEvaluationMetrics
	Breakdown      models.ObjectiveBreakdown
	ResolverUsed   bool
	ProvenOptimal  bool
	Logs           []string
}

// Run drives the whole engine for one request: build the context, derive
// demand, solve the assignment, place stations, check compliance, score,
// and repair if any hard violation survived the solver. The log transcript
// records each stage so a run can be reconstructed from the response alone.
func Run(input *models.RosterInput, cfg Config) (*Result, error) {
	ctx, err := NewContext(input)
	if err != nil {
		return nil, err
	}
	cfg = cfg.WithOptions(input.Options)

	ctx.Demand = BuildDemand(ctx.Dates, input.BaseDemand, cfg.WeekendUplift, input.DemandOverrides)

	result := &Result{}
	result.logf("planning window %s to %s, %d days, %d employees",
		ctx.StartDate, ctx.EndDate, len(ctx.Dates), len(ctx.EmployeeIDs))

	assignments, breakdown, proven, err := NewModel(ctx, cfg).Solve()
	if err != nil {
		return nil, err
	}
	result.Breakdown = breakdown
	result.ProvenOptimal = proven
	result.logf("solver produced %d assignments, weighted cost %.1f, proven optimal %v",
		len(assignments), breakdown.WeightedCost, proven)

	AssignStations(ctx, assignments)

	violations := CheckRoster(ctx, cfg, assignments)
	hard, soft := CountBySeverity(violations)
	result.logf("compliance check: %d hard, %d soft", hard, soft)

	if hard > 0 {
		resolver := NewResolver(ctx, cfg)
		repaired, resolverLogs, iterations := resolver.Resolve(assignments)
		result.ResolverUsed = true
		result.Logs = append(result.Logs, resolverLogs...)

		assignments = repaired
		AssignStations(ctx, assignments)
		violations = CheckRoster(ctx, cfg, assignments)
		hard, soft = CountBySeverity(violations)
		result.logf("resolver finished after %d iterations: %d hard, %d soft remain",
			iterations, hard, soft)
	}

	result.Assignments = assignments
	result.Violations = violations
	result.HardViolations = hard
	result.SoftViolations = soft
	result.Metrics = Evaluate(ctx, assignments)
	result.logf("scores: coverage %.3f, peak %.3f, fairness %.3f, manager %.3f",
		result.Metrics.CoverageScore, result.Metrics.PeakCoverageScore,
		result.Metrics.FairnessScore, result.Metrics.ManagerCoverageScore)

	return result, nil
}

// Check evaluates an externally supplied roster against the same input
// contract: no solving, just demand derivation, station placement on
// unstationed shifts, compliance and scoring.
func Check(input *models.RosterInput, cfg Config, assignments []models.ShiftAssignment) (*Result, error) {
	ctx, err := NewContext(input)
	if err != nil {
		return nil, err
	}
	cfg = cfg.WithOptions(input.Options)
	ctx.Demand = BuildDemand(ctx.Dates, input.BaseDemand, cfg.WeekendUplift, input.DemandOverrides)

	staged := make([]models.ShiftAssignment, len(assignments))
	copy(staged, assignments)
	for i := range staged {
		if staged[i].Station == "" {
			AssignStations(ctx, staged)
			break
		}
	}

	violations := CheckRoster(ctx, cfg, staged)
	hard, soft := CountBySeverity(violations)

	return &Result{
		Assignments:    staged,
		Violations:     violations,
		HardViolations: hard,
		SoftViolations: soft,
		Metrics:        Evaluate(ctx, staged),
	}, nil
}

func (r *Result) logf(format string, args ...interface{}) {
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}
