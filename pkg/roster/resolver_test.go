package roster

import (
	"testing"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

func TestResolverReassignsToAvailableEmployee(t *testing.T) {
	ctx := complianceContext(t,
		models.Employee{ID: "emp-1", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
		models.Employee{ID: "emp-2", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
	)
	ctx.Availability["emp-1"]["2026-03-03"] = []string{models.CodeNotAvailable}
	ctx.Demand = map[string]map[models.SkillTag]int{
		"2026-03-03": {models.Kitchen: 1},
	}

	roster := []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "S", StoreID: "store-1"},
	}

	cfg := DefaultConfig()
	repaired, logs, iterations := NewResolver(ctx, cfg).Resolve(roster)

	if iterations == 0 || len(logs) == 0 {
		t.Fatalf("resolver did nothing: iterations=%d logs=%v", iterations, logs)
	}
	violations := CheckRoster(ctx, cfg, repaired)
	if hard, _ := CountBySeverity(violations); hard != 0 {
		t.Fatalf("hard violations survived the resolver: %v", violations)
	}

	// the slot should move to emp-2 rather than vanish, since dropping it
	// would cost coverage
	found := false
	for _, a := range repaired {
		if a.EmployeeID == "emp-2" && a.Date == "2026-03-03" && a.ShiftCode == "S" {
			found = true
		}
		if a.EmployeeID == "emp-1" && a.Date == "2026-03-03" {
			t.Errorf("unavailable employee still rostered: %+v", a)
		}
	}
	if !found {
		t.Errorf("shift was dropped instead of reassigned: %v", repaired)
	}
}

func TestResolverDropsWhenNoReplacementExists(t *testing.T) {
	ctx := complianceContext(t,
		models.Employee{ID: "emp-1", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
	)
	ctx.Demand = map[string]map[models.SkillTag]int{
		"2026-03-03": {models.Kitchen: 1},
		"2026-03-04": {models.Kitchen: 1},
	}

	// close then open with nobody else to take either shift
	roster := []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "2F"},
		{EmployeeID: "emp-1", Date: "2026-03-04", ShiftCode: "1F"},
	}

	cfg := DefaultConfig()
	repaired, _, _ := NewResolver(ctx, cfg).Resolve(roster)

	violations := CheckRoster(ctx, cfg, repaired)
	if hard, _ := CountBySeverity(violations); hard != 0 {
		t.Fatalf("hard violations survived the resolver: %v", violations)
	}
	if len(repaired) != 1 {
		t.Errorf("expected one of the conflicting shifts dropped, got %v", repaired)
	}
}

func TestResolverTargetsLatestDateFirst(t *testing.T) {
	ctx := complianceContext(t,
		models.Employee{ID: "emp-1", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
	)
	ctx.Availability["emp-1"]["2026-03-03"] = []string{models.CodeNotAvailable}
	ctx.Availability["emp-1"]["2026-03-10"] = []string{models.CodeNotAvailable}
	ctx.Demand = map[string]map[models.SkillTag]int{}

	roster := []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "S"},
		{EmployeeID: "emp-1", Date: "2026-03-10", ShiftCode: "S"},
	}

	cfg := DefaultConfig()
	cfg.ResolverMaxIterations = 1
	repaired, _, iterations := NewResolver(ctx, cfg).Resolve(roster)

	if iterations != 1 {
		t.Fatalf("iterations = %d, want exactly the configured cap", iterations)
	}
	for _, a := range repaired {
		if a.Date == "2026-03-10" {
			t.Errorf("latest-date violation should be repaired first, still present: %+v", a)
		}
	}
	if len(repaired) != 1 {
		t.Errorf("only one repair allowed, got %v", repaired)
	}
}

func TestResolverIterationCapTerminates(t *testing.T) {
	ctx := complianceContext(t,
		models.Employee{ID: "emp-1", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
	)
	var roster []models.ShiftAssignment
	for _, date := range ctx.Dates {
		ctx.Availability["emp-1"][date] = []string{models.CodeNotAvailable}
		roster = append(roster, models.ShiftAssignment{EmployeeID: "emp-1", Date: date, ShiftCode: "S"})
	}
	ctx.Demand = map[string]map[models.SkillTag]int{}

	cfg := DefaultConfig()
	cfg.ResolverMaxIterations = 5
	_, _, iterations := NewResolver(ctx, cfg).Resolve(roster)

	if iterations > 5 {
		t.Errorf("iterations = %d, want at most 5", iterations)
	}
}

func TestResolverPrefersUnderMinimumReplacements(t *testing.T) {
	ctx := complianceContext(t,
		models.Employee{ID: "emp-1", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
		models.Employee{ID: "emp-2", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
		models.Employee{ID: "emp-3", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
	)
	ctx.Availability["emp-1"]["2026-03-03"] = []string{models.CodeNotAvailable}
	ctx.Demand = map[string]map[models.SkillTag]int{
		"2026-03-03": {models.Kitchen: 1},
	}

	r := NewResolver(ctx, DefaultConfig())

	// emp-2 already carries hours, emp-3 has none
	roster := []models.ShiftAssignment{
		{EmployeeID: "emp-1", Date: "2026-03-03", ShiftCode: "S"},
		{EmployeeID: "emp-2", Date: "2026-03-05", ShiftCode: "3F"},
		{EmployeeID: "emp-2", Date: "2026-03-07", ShiftCode: "3F"},
	}

	candidates := r.replacements(roster, roster[0])
	if len(candidates) != 2 {
		t.Fatalf("replacement candidates = %v, want emp-3 then emp-2", candidates)
	}
	if candidates[0] != "emp-3" {
		t.Errorf("first replacement = %s, want the employee with fewer hours", candidates[0])
	}
}
