package roster

import (
	"sort"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

// AssignStations maps every worked shift to a station using employee skill
// tags and the remaining per-station demand for its date. Stations are
// processed in descending order of remaining demand; within a station the
// most constrained employee (fewest alternative matching stations) is
// placed first. Employees whose skills match no remaining demand land on
// the general station. Never fails.
func AssignStations(ctx *Context, assignments []models.ShiftAssignment) {
	byDate := make(map[string][]int)
	for i, a := range assignments {
		if tpl, ok := ctx.Catalog[a.ShiftCode]; ok && !tpl.Working {
			continue
		}
		byDate[a.Date] = append(byDate[a.Date], i)
	}

	for date, idxs := range byDate {
		workers := make([]string, 0, len(idxs))
		for _, i := range idxs {
			workers = append(workers, assignments[i].EmployeeID)
		}

		placed := matchStations(ctx.Demand[date], workers, ctx.Employees)
		for _, i := range idxs {
			assignments[i].Station = placed[assignments[i].EmployeeID]
		}
	}
}

// matchStations is the greedy bipartite matcher shared by the station
// assigner and the assignment model's shortfall term. It returns a station
// per worker; workers matching no remaining demand map to General.
func matchStations(demand map[models.SkillTag]int, workers []string, employees map[string]*models.Employee) map[string]models.SkillTag {
	remaining := make(map[models.SkillTag]int, len(demand))
	for station, count := range demand {
		remaining[station] = count
	}

	placed := make(map[string]models.SkillTag, len(workers))
	unplaced := make([]string, len(workers))
	copy(unplaced, workers)
	sort.Strings(unplaced)

	blocked := make(map[models.SkillTag]bool)

	for {
		station, ok := busiestStation(remaining, blocked)
		if !ok {
			break
		}

		best := -1
		bestAlternatives := 0
		for i, id := range unplaced {
			emp := employees[id]
			if emp == nil || !emp.HasSkill(station) {
				continue
			}
			alts := alternativeStations(emp, remaining)
			if best == -1 || alts < bestAlternatives {
				best = i
				bestAlternatives = alts
			}
		}

		if best == -1 {
			// nobody left with this skill; stop revisiting the station
			blocked[station] = true
			continue
		}

		placed[unplaced[best]] = station
		unplaced = append(unplaced[:best], unplaced[best+1:]...)
		remaining[station]--
	}

	for _, id := range unplaced {
		placed[id] = models.General
	}
	return placed
}

// busiestStation picks the station with the highest remaining demand,
// breaking ties by name for determinism
func busiestStation(remaining map[models.SkillTag]int, blocked map[models.SkillTag]bool) (models.SkillTag, bool) {
	var best models.SkillTag
	bestCount := 0
	for station, count := range remaining {
		if count <= 0 || blocked[station] {
			continue
		}
		if count > bestCount || (count == bestCount && (best == "" || station < best)) {
			best = station
			bestCount = count
		}
	}
	return best, bestCount > 0
}

// alternativeStations counts how many still-demanded stations the employee
// could serve
func alternativeStations(emp *models.Employee, remaining map[models.SkillTag]int) int {
	alts := 0
	for station, count := range remaining {
		if count > 0 && emp.HasSkill(station) {
			alts++
		}
	}
	return alts
}

// stationFill reports how many demand slots per station the given workers
// can cover, using the same matcher the station assigner uses
func stationFill(demand map[models.SkillTag]int, workers []string, employees map[string]*models.Employee) map[models.SkillTag]int {
	placed := matchStations(demand, workers, employees)
	fill := make(map[models.SkillTag]int, len(demand))
	for _, station := range placed {
		if station != models.General {
			fill[station]++
		}
	}
	return fill
}
