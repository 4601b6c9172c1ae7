package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

func pipelineInput() *models.RosterInput {
	employees := []models.Employee{
		{ID: "mgr-1", Name: "Jordan", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Manager, models.Counter}},
		{ID: "emp-1", Name: "Sam", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
		{ID: "emp-2", Name: "Riley", ContractType: models.PartTime, SkillTags: []models.SkillTag{models.Kitchen, models.Counter}},
		{ID: "emp-3", Name: "Casey", ContractType: models.Casual, SkillTags: []models.SkillTag{models.Counter, models.Dessert}},
	}

	dates, _ := dateRange("2026-03-02", "2026-03-05")
	availability := make([]models.AvailabilityEntry, 0, len(employees))
	for _, emp := range employees {
		days := make(map[string][]string)
		for _, date := range dates {
			days[date] = []string{"S", "1F", "2F", "SC"}
		}
		availability = append(availability, models.AvailabilityEntry{EmployeeID: emp.ID, Days: days})
	}

	return &models.RosterInput{
		StoreID:      "store-1",
		StartDate:    "2026-03-02",
		EndDate:      "2026-03-05",
		Employees:    employees,
		Availability: availability,
		BaseDemand:   map[models.SkillTag]int{models.Kitchen: 1, models.Counter: 1},
		Options:      &models.SolveOptions{SolverBudgetSeconds: 0.2},
	}
}

func TestRunProducesCompliantRoster(t *testing.T) {
	result, err := Run(pipelineInput(), DefaultConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, result.Assignments)
	assert.Zero(t, result.HardViolations, "hard violations in final roster: %v", result.Violations)
	assert.NotEmpty(t, result.Logs)

	for _, a := range result.Assignments {
		assert.Equal(t, "store-1", a.StoreID)
		assert.NotEmpty(t, a.Station, "station missing on %+v", a)
	}

	assert.GreaterOrEqual(t, result.Metrics.CoverageScore, 0.0)
	assert.LessOrEqual(t, result.Metrics.CoverageScore, 1.0)
	assert.GreaterOrEqual(t, result.Metrics.PeakCoverageScore, 0.0)
	assert.LessOrEqual(t, result.Metrics.PeakCoverageScore, 1.0)
	assert.LessOrEqual(t, result.Metrics.ManagerCoverageScore, 1.0)
}

func TestRunPropagatesConfigErrors(t *testing.T) {
	input := pipelineInput()
	input.Employees = nil
	input.Availability = nil

	_, err := Run(input, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoEmployees)
}

func TestRunRejectsBadDates(t *testing.T) {
	input := pipelineInput()
	input.EndDate = "2026-02-20"

	_, err := Run(input, DefaultConfig())
	assert.Error(t, err)
}

func TestCheckScoresSubmittedRoster(t *testing.T) {
	input := pipelineInput()

	roster := []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-02", ShiftCode: "S"},
		{EmployeeID: "emp-1", Date: "2026-03-02", ShiftCode: "2F"}, // second shift same day
		{EmployeeID: "emp-2", Date: "2026-03-03", ShiftCode: "1F"},
	}

	result, err := Check(input, DefaultConfig(), roster)
	require.NoError(t, err)

	assert.Positive(t, result.HardViolations)
	found := false
	for _, v := range result.Violations {
		if v.Rule == RuleOneShiftPerDay {
			found = true
		}
	}
	assert.True(t, found, "expected a one-shift-per-day violation, got %v", result.Violations)

	// stations are placed for scoring when the caller omitted them
	for _, a := range result.Assignments {
		assert.NotEmpty(t, a.Station)
	}
}
