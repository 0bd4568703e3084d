package bot

import (
	"sort"

	"jordanella.com/animix-go/internal/game"
)

// Pool is the pet availability snapshot for one mission-fill iteration.
// Units are pet ids repeated once per owned copy.
type Pool struct {
	byStar map[int]map[string][]game.ID
	stars  []int // ascending

	// Available lists units not committed to a running mission
	Available []game.ID
	// Used lists units committed to running missions, one per joined entry
	Used []game.ID

	availableCount map[game.ID]int
}

// BuildPool expands pet stacks into units and withdraws one unit for every
// pet already joined to a mission
func BuildPool(pets []game.Pet, missions []game.Mission) *Pool {
	p := &Pool{
		byStar:         make(map[int]map[string][]game.ID),
		availableCount: make(map[game.ID]int),
	}

	var all []game.ID
	for _, pet := range pets {
		star := int(pet.Star)
		classes, ok := p.byStar[star]
		if !ok {
			classes = make(map[string][]game.ID)
			p.byStar[star] = classes
			p.stars = append(p.stars, star)
		}
		for i := 0; i < int(pet.Amount); i++ {
			classes[pet.Class] = append(classes[pet.Class], pet.PetID)
			all = append(all, pet.PetID)
		}
	}
	sort.Ints(p.stars)

	usedCount := make(map[game.ID]int)
	for _, m := range missions {
		for _, joined := range m.PetJoined {
			p.Used = append(p.Used, joined.PetID)
			usedCount[joined.PetID]++
		}
	}

	for _, id := range all {
		if usedCount[id] > 0 {
			usedCount[id]--
			continue
		}
		p.Available = append(p.Available, id)
		p.availableCount[id]++
	}
	return p
}

// Units returns the total number of expanded units, committed or not
func (p *Pool) Units() int {
	n := 0
	for _, classes := range p.byStar {
		for _, ids := range classes {
			n += len(ids)
		}
	}
	return n
}

// candidates returns units of class with star >= minStar, lowest star first
func (p *Pool) candidates(class string, minStar int) []game.ID {
	var out []game.ID
	for _, star := range p.stars {
		if star < minStar {
			continue
		}
		out = append(out, p.byStar[star][class]...)
	}
	return out
}

func (p *Pool) isAvailable(id game.ID) bool {
	return p.availableCount[id] > 0
}

// FindFillableMission returns the first mission, scanning from the end of the
// list, whose every required slot resolves to an available unit. A unit id
// fills at most one slot per call. Occupied missions and missions without
// slots are skipped. Returns nil when nothing can be filled.
func FindFillableMission(missions []game.Mission, pool *Pool) *game.Assignment {
	for i := len(missions) - 1; i >= 0; i-- {
		mission := missions[i]
		if mission.Occupied() {
			continue
		}
		slots := mission.Slots()
		if len(slots) == 0 {
			continue
		}

		assignment := &game.Assignment{MissionID: mission.MissionID}
		assigned := make(map[game.ID]bool, len(slots))
		filled := 0
		for _, slot := range slots {
			for _, id := range pool.candidates(slot.Class, slot.MinStar) {
				if !pool.isAvailable(id) || assigned[id] {
					continue
				}
				assignment.Set(slot.Position, id)
				assigned[id] = true
				filled++
				break
			}
		}

		if filled == len(slots) {
			return assignment
		}
	}
	return nil
}
