package roster

import (
	"testing"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

// complianceContext builds a two-week context where every employee is
// available for every working code on every date, so tests can focus on
// the rule under test.
func complianceContext(t *testing.T, employees ...models.Employee) *Context {
	t.Helper()

	input := &models.RosterInput{
		StoreID:   "store-1",
		StartDate: "2026-03-02",
		EndDate:   "2026-03-15",
		Employees: employees,
	}
	ctx, err := NewContext(input)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	for _, emp := range employees {
		days := make(map[string][]string)
		for _, date := range ctx.Dates {
			days[date] = []string{"S", "1F", "2F", "3F", "SC"}
		}
		ctx.Availability[emp.ID] = days
	}
	return ctx
}

func hasRule(violations []models.Violation, rule string) bool {
	for _, v := range violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

func TestCheckRosterCleanRosterHasNoHardViolations(t *testing.T) {
	ctx := complianceContext(t, models.Employee{ID: "emp-1", ContractType: models.Casual})

	// a modest casual load: two shifts per week, well inside every band
	assignments := []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "S"},
		{EmployeeID: "emp-1", Date: "2026-03-05", ShiftCode: "S"},
		{EmployeeID: "emp-1", Date: "2026-03-10", ShiftCode: "S"},
		{EmployeeID: "emp-1", Date: "2026-03-12", ShiftCode: "S"},
	}

	violations := CheckRoster(ctx, DefaultConfig(), assignments)
	if hard, _ := CountBySeverity(violations); hard != 0 {
		t.Errorf("clean roster produced %d hard violations: %v", hard, violations)
	}
}

func TestCheckRosterOneShiftPerDay(t *testing.T) {
	ctx := complianceContext(t, models.Employee{ID: "emp-1", ContractType: models.FullTime})

	assignments := []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "S"},
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "2F"},
	}

	violations := CheckRoster(ctx, DefaultConfig(), assignments)
	if !hasRule(violations, RuleOneShiftPerDay) {
		t.Errorf("expected %s, got %v", RuleOneShiftPerDay, violations)
	}
}

func TestCheckRosterAvailabilityIsHard(t *testing.T) {
	ctx := complianceContext(t, models.Employee{ID: "emp-1", ContractType: models.FullTime})
	ctx.Availability["emp-1"]["2026-03-03"] = []string{"2F"}

	violations := CheckRoster(ctx, DefaultConfig(), []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "S"},
	})
	if !hasRule(violations, RuleNotAvailable) {
		t.Errorf("expected %s, got %v", RuleNotAvailable, violations)
	}
}

func TestCheckRosterFortnightMaxIsHard(t *testing.T) {
	ctx := complianceContext(t, models.Employee{ID: "emp-1", Name: "Avery", ContractType: models.FullTime})

	// 14 consecutive 12h days: 168h against a 76h fortnight cap
	var assignments []models.ShiftAssignment
	for _, date := range ctx.Dates {
		assignments = append(assignments, models.ShiftAssignment{
			EmployeeID: "emp-1", Date: date, ShiftCode: "3F",
		})
	}

	violations := CheckRoster(ctx, DefaultConfig(), assignments)
	found := false
	for _, v := range violations {
		if v.Rule == RuleMaxHoursExceeded {
			found = true
			if v.Severity != models.Hard {
				t.Errorf("%s severity = %s, want hard", v.Rule, v.Severity)
			}
			if v.Magnitude != 168-76 {
				t.Errorf("%s magnitude = %.1f, want %.1f", v.Rule, v.Magnitude, 168.0-76.0)
			}
		}
	}
	if !found {
		t.Fatalf("expected %s, got %v", RuleMaxHoursExceeded, violations)
	}
	if !hasRule(violations, RuleMaxConsecutiveDays) {
		t.Errorf("expected %s alongside the hour breach", RuleMaxConsecutiveDays)
	}
}

func TestCheckRosterMinHoursIsSoft(t *testing.T) {
	ctx := complianceContext(t, models.Employee{ID: "emp-1", ContractType: models.FullTime})

	violations := CheckRoster(ctx, DefaultConfig(), nil)
	found := false
	for _, v := range violations {
		if v.Rule == RuleMinHoursNotMet {
			found = true
			if v.Severity != models.Soft {
				t.Errorf("%s severity = %s, want soft", v.Rule, v.Severity)
			}
		}
	}
	if !found {
		t.Errorf("employee with zero hours should be flagged below minimum")
	}
}

func TestCheckRosterWeeklyMaxRespectsOvertimeSlack(t *testing.T) {
	ctx := complianceContext(t, models.Employee{ID: "emp-1", ContractType: models.FullTime})
	cfg := DefaultConfig()

	// 4 x 12h in week one: 48h against 38h + 2h slack
	assignments := []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-02", ShiftCode: "3F"},
		{EmployeeID: "emp-1", Date: "2026-03-04", ShiftCode: "3F"},
		{EmployeeID: "emp-1", Date: "2026-03-06", ShiftCode: "3F"},
		{EmployeeID: "emp-1", Date: "2026-03-08", ShiftCode: "3F"},
	}

	violations := CheckRoster(ctx, cfg, assignments)
	found := false
	for _, v := range violations {
		if v.Rule == RuleWeeklyMaxExceeded {
			found = true
			if v.Week != 1 {
				t.Errorf("weekly violation week = %d, want 1", v.Week)
			}
		}
	}
	if !found {
		t.Fatalf("expected %s, got %v", RuleWeeklyMaxExceeded, violations)
	}

	// 3 x 12h = 36h sits inside the band, and 40h sits inside band+slack
	inside := []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-02", ShiftCode: "3F"},
		{EmployeeID: "emp-1", Date: "2026-03-04", ShiftCode: "3F"},
		{EmployeeID: "emp-1", Date: "2026-03-06", ShiftCode: "3F"},
	}
	if hasRule(CheckRoster(ctx, cfg, inside), RuleWeeklyMaxExceeded) {
		t.Errorf("36h week flagged above weekly max")
	}
}

func TestCheckRosterRestBetweenCloseAndOpen(t *testing.T) {
	ctx := complianceContext(t, models.Employee{ID: "emp-1", ContractType: models.FullTime})

	// 2F ends 23:00, 1F starts 06:30 next day: 7.5h rest
	violations := CheckRoster(ctx, DefaultConfig(), []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "2F"},
		{EmployeeID: "emp-1", Date: "2026-03-04", ShiftCode: "1F"},
	})
	if !hasRule(violations, RuleInsufficientRest) {
		t.Fatalf("expected %s, got %v", RuleInsufficientRest, violations)
	}

	// 2F then 2F leaves 15h rest
	ok := CheckRoster(ctx, DefaultConfig(), []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "2F"},
		{EmployeeID: "emp-1", Date: "2026-03-04", ShiftCode: "2F"},
	})
	if hasRule(ok, RuleInsufficientRest) {
		t.Errorf("back-to-back 2F flagged despite 15h rest")
	}

	// a gap day between the shifts resets the rest check
	gap := CheckRoster(ctx, DefaultConfig(), []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "2F"},
		{EmployeeID: "emp-1", Date: "2026-03-05", ShiftCode: "1F"},
	})
	if hasRule(gap, RuleInsufficientRest) {
		t.Errorf("rest flagged across a day off")
	}
}

func TestCheckRosterCasualMinimumShiftLength(t *testing.T) {
	ctx := complianceContext(t, models.Employee{ID: "emp-1", ContractType: models.Casual})
	ctx.Catalog["SH"] = models.ShiftCode{Code: "SH", StartMinute: 10 * 60, EndMinute: 12 * 60, Hours: 2, Working: true}
	ctx.Availability["emp-1"]["2026-03-03"] = []string{"SH"}

	violations := CheckRoster(ctx, DefaultConfig(), []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "SH"},
	})
	if !hasRule(violations, RuleMinShiftCasual) {
		t.Errorf("expected %s for a 2h casual shift, got %v", RuleMinShiftCasual, violations)
	}
}

func TestCheckRosterUnknownEmployee(t *testing.T) {
	ctx := complianceContext(t, models.Employee{ID: "emp-1", ContractType: models.FullTime})

	violations := CheckRoster(ctx, DefaultConfig(), []models.ShiftAssignment{
		{EmployeeID: "ghost", Date: "2026-03-03", ShiftCode: "S"},
	})
	if !hasRule(violations, RuleUnknownEmployee) {
		t.Errorf("expected %s, got %v", RuleUnknownEmployee, violations)
	}
}

func TestCheckRosterDeterministicOrder(t *testing.T) {
	ctx := complianceContext(t,
		models.Employee{ID: "emp-1", ContractType: models.FullTime},
		models.Employee{ID: "emp-2", ContractType: models.PartTime},
	)
	assignments := []models.ShiftAssignment{
		{EmployeeID: "emp-2", Date: "2026-03-03", ShiftCode: "2F"},
		{EmployeeID: "emp-2", Date: "2026-03-04", ShiftCode: "1F"},
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "S"},
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "2F"},
	}

	first := CheckRoster(ctx, DefaultConfig(), assignments)
	for i := 0; i < 5; i++ {
		again := CheckRoster(ctx, DefaultConfig(), assignments)
		if len(again) != len(first) {
			t.Fatalf("violation count changed between runs: %d vs %d", len(first), len(again))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("violation %d changed between runs: %+v vs %+v", j, first[j], again[j])
			}
		}
	}
}
