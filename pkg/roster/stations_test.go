package roster

import (
	"testing"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

func stationTestEmployees() map[string]*models.Employee {
	return map[string]*models.Employee{
		"emp-a": {ID: "emp-a", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
		"emp-b": {ID: "emp-b", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen, models.Counter}},
		"emp-c": {ID: "emp-c", ContractType: models.Casual, SkillTags: []models.SkillTag{models.Dessert}},
	}
}

func TestMatchStationsMostConstrainedFirst(t *testing.T) {
	demand := map[models.SkillTag]int{models.Kitchen: 1, models.Counter: 1}
	placed := matchStations(demand, []string{"emp-a", "emp-b"}, stationTestEmployees())

	// emp-a only works kitchen, so the flexible emp-b must take counter
	if placed["emp-a"] != models.Kitchen {
		t.Errorf("emp-a placed on %s, want kitchen", placed["emp-a"])
	}
	if placed["emp-b"] != models.Counter {
		t.Errorf("emp-b placed on %s, want counter", placed["emp-b"])
	}
}

func TestMatchStationsUnmatchedFallToGeneral(t *testing.T) {
	demand := map[models.SkillTag]int{models.Kitchen: 1}
	placed := matchStations(demand, []string{"emp-a", "emp-c"}, stationTestEmployees())

	if placed["emp-a"] != models.Kitchen {
		t.Errorf("emp-a placed on %s, want kitchen", placed["emp-a"])
	}
	if placed["emp-c"] != models.General {
		t.Errorf("emp-c placed on %s, want general fallback", placed["emp-c"])
	}
}

func TestMatchStationsDeterministic(t *testing.T) {
	demand := map[models.SkillTag]int{models.Kitchen: 2, models.Counter: 1, models.Dessert: 1}
	workers := []string{"emp-c", "emp-b", "emp-a"}

	first := matchStations(demand, workers, stationTestEmployees())
	for i := 0; i < 10; i++ {
		again := matchStations(demand, workers, stationTestEmployees())
		for id, station := range first {
			if again[id] != station {
				t.Fatalf("placement of %s changed between runs: %s vs %s", id, station, again[id])
			}
		}
	}
}

func TestAssignStationsSkipsNonWorkingCodes(t *testing.T) {
	input := &models.RosterInput{
		StoreID:   "store-1",
		StartDate: "2026-03-02",
		EndDate:   "2026-03-02",
		Employees: []models.Employee{
			{ID: "emp-a", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
			{ID: "emp-b", ContractType: models.FullTime, SkillTags: []models.SkillTag{models.Kitchen}},
		},
	}
	ctx, err := NewContext(input)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	ctx.Demand = map[string]map[models.SkillTag]int{
		"2026-03-02": {models.Kitchen: 2},
	}

	assignments := []models.ShiftAssignment{
		{EmployeeID: "emp-a", Date: "2026-03-02", ShiftCode: "S"},
		{EmployeeID: "emp-b", Date: "2026-03-02", ShiftCode: models.CodeDayOff},
	}
	AssignStations(ctx, assignments)

	if assignments[0].Station != models.Kitchen {
		t.Errorf("working shift station = %s, want kitchen", assignments[0].Station)
	}
	if assignments[1].Station != "" {
		t.Errorf("day-off sentinel got station %s, want none", assignments[1].Station)
	}
}

func TestStationFillMatchesAssigner(t *testing.T) {
	demand := map[models.SkillTag]int{models.Kitchen: 1, models.Counter: 2}
	fill := stationFill(demand, []string{"emp-a", "emp-b"}, stationTestEmployees())

	if fill[models.Kitchen] != 1 {
		t.Errorf("kitchen fill = %d, want 1", fill[models.Kitchen])
	}
	if fill[models.Counter] != 1 {
		t.Errorf("counter fill = %d, want 1", fill[models.Counter])
	}
}
