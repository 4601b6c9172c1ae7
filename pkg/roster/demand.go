package roster

import (
	"math"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
)

// BuildDemand derives the per-date per-station required headcount from the
// base per-station levels, applying the weekend uplift on Saturdays and
// Sundays. Explicit overrides replace the derived profile for their dates.
// Pure function; missing stations simply contribute zero demand.
func BuildDemand(dates []string, base map[models.SkillTag]int, uplift float64, overrides map[string]map[models.SkillTag]int) map[string]map[models.SkillTag]int {
	demand := make(map[string]map[models.SkillTag]int, len(dates))

	for _, date := range dates {
		if override, ok := overrides[date]; ok {
			day := make(map[models.SkillTag]int, len(override))
			for station, count := range override {
				day[station] = count
			}
			demand[date] = day
			continue
		}

		day := make(map[models.SkillTag]int, len(base))
		for station, count := range base {
			if isWeekend(date) {
				day[station] = int(math.Round(float64(count) * uplift))
			} else {
				day[station] = count
			}
		}
		demand[date] = day
	}

	return demand
}

// totalDemand sums the required headcount across stations for one date
func totalDemand(day map[models.SkillTag]int) int {
	total := 0
	for _, count := range day {
		total += count
	}
	return total
}
