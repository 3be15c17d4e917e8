package services

import (
	"sort"

	"github.com/venueatlas/venue-booking-backend/internal/models"
)

// roomSelector picks the index of the room to assign from a non-empty pool
// ordered by ascending capacity.
type roomSelector func(pool []models.POI) int

// guestPolicy pairs a priority weight with a room selection strategy.
// Higher weights are served first.
type guestPolicy struct {
	Weight int
	Select roomSelector
}

// guestPolicies is the closed policy table. Families outrank friends, who
// outrank individuals; families take the largest room left, individuals the
// smallest, everyone else the middle of the pool.
var guestPolicies = map[models.GuestType]guestPolicy{
	models.GuestTypeFamily:     {Weight: 3, Select: selectLargest},
	models.GuestTypeFriend:     {Weight: 2, Select: selectMiddle},
	models.GuestTypeIndividual: {Weight: 1, Select: selectFront},
	models.GuestTypeOther:      {Weight: 1, Select: selectMiddle},
}

func policyFor(t models.GuestType) guestPolicy {
	if p, ok := guestPolicies[t]; ok {
		return p
	}
	return guestPolicies[models.GuestTypeOther]
}

func selectFront(pool []models.POI) int {
	return 0
}

func selectMiddle(pool []models.POI) int {
	return len(pool) / 2
}

func selectLargest(pool []models.POI) int {
	best := 0
	for i := range pool {
		if pool[i].EffectiveCapacity() > pool[best].EffectiveCapacity() {
			best = i
		}
	}
	return best
}

// Assignment pairs a guest with the room selected for it
type Assignment struct {
	Guest models.Guest
	Room  models.POI
}

// PolicyResult is the outcome of one policy pass over a guest batch
type PolicyResult struct {
	Assignments []Assignment
	Unassigned  []models.AllocationFailure
}

// AllocateRooms runs the single-pass greedy assignment: guests are served in
// descending priority order (stable, so ties keep their input order) and each
// consumes one room from the pool. Guests left over once the pool is empty
// are reported as unassigned rather than aborting the batch. The input pool
// must be ordered by ascending capacity; it is not mutated.
func AllocateRooms(guests []models.Guest, pool []models.POI) PolicyResult {
	ordered := make([]models.Guest, len(guests))
	copy(ordered, guests)
	sort.SliceStable(ordered, func(i, j int) bool {
		return policyFor(ordered[i].GuestType).Weight > policyFor(ordered[j].GuestType).Weight
	})

	remaining := make([]models.POI, len(pool))
	copy(remaining, pool)

	result := PolicyResult{}
	for _, guest := range ordered {
		if len(remaining) == 0 {
			result.Unassigned = append(result.Unassigned, models.AllocationFailure{
				Guest:  guest.Name,
				Reason: "no rooms available",
			})
			continue
		}

		idx := policyFor(guest.GuestType).Select(remaining)
		room := remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)

		result.Assignments = append(result.Assignments, Assignment{Guest: guest, Room: room})
	}

	return result
}
