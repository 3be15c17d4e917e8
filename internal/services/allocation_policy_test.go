package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

func room(id string, capacity int) models.POI {
	return models.POI{
		ID:       id,
		Name:     "Room " + id,
		Category: models.POICategoryRoom,
		Capacity: capacity,
		Status:   models.POIStatusAvailable,
	}
}

func guest(id string, guestType models.GuestType) models.Guest {
	return models.Guest{ID: id, Name: "Guest " + id, GuestType: guestType}
}

func TestAllocateRoomsPriorityOrdering(t *testing.T) {
	// Family must be served before friend, friend before plain guest,
	// regardless of input order
	guests := []models.Guest{
		guest("g1", models.GuestTypeFriend),
		guest("g2", models.GuestTypeFamily),
		guest("g3", models.GuestTypeIndividual),
	}
	pool := []models.POI{room("r1", 1), room("r2", 2), room("r3", 4)}

	result := AllocateRooms(guests, pool)
	require.Len(t, result.Assignments, 3)
	assert.Empty(t, result.Unassigned)

	assert.Equal(t, "g2", result.Assignments[0].Guest.ID)
	assert.Equal(t, "g1", result.Assignments[1].Guest.ID)
	assert.Equal(t, "g3", result.Assignments[2].Guest.ID)
}

func TestAllocateRoomsCapacitySelection(t *testing.T) {
	pool := []models.POI{room("r1", 1), room("r2", 2), room("r3", 4)}

	t.Run("family gets largest", func(t *testing.T) {
		result := AllocateRooms([]models.Guest{guest("g1", models.GuestTypeFamily)}, pool)
		require.Len(t, result.Assignments, 1)
		assert.Equal(t, 4, result.Assignments[0].Room.Capacity)
	})

	t.Run("individual gets smallest", func(t *testing.T) {
		result := AllocateRooms([]models.Guest{guest("g1", models.GuestTypeIndividual)}, pool)
		require.Len(t, result.Assignments, 1)
		assert.Equal(t, 1, result.Assignments[0].Room.Capacity)
	})

	t.Run("friend gets middle", func(t *testing.T) {
		result := AllocateRooms([]models.Guest{guest("g1", models.GuestTypeFriend)}, pool)
		require.Len(t, result.Assignments, 1)
		assert.Equal(t, "r2", result.Assignments[0].Room.ID)
		assert.Equal(t, 2, result.Assignments[0].Room.Capacity)
	})
}

func TestAllocateRoomsConsumesRooms(t *testing.T) {
	guests := []models.Guest{
		guest("g1", models.GuestTypeFamily),
		guest("g2", models.GuestTypeFamily),
	}
	pool := []models.POI{room("r1", 1), room("r2", 4)}

	result := AllocateRooms(guests, pool)
	require.Len(t, result.Assignments, 2)

	// First family takes the largest, second takes what's left
	assert.Equal(t, "r2", result.Assignments[0].Room.ID)
	assert.Equal(t, "r1", result.Assignments[1].Room.ID)
}

func TestAllocateRoomsPoolExhaustion(t *testing.T) {
	guests := []models.Guest{
		guest("g1", models.GuestTypeFamily),
		guest("g2", models.GuestTypeFriend),
		guest("g3", models.GuestTypeIndividual),
	}
	pool := []models.POI{room("r1", 2)}

	result := AllocateRooms(guests, pool)
	require.Len(t, result.Assignments, 1)
	require.Len(t, result.Unassigned, 2)
	for _, failure := range result.Unassigned {
		assert.Equal(t, "no rooms available", failure.Reason)
	}
}

func TestAllocateRoomsAccountingInvariant(t *testing.T) {
	guests := []models.Guest{
		guest("g1", models.GuestTypeFamily),
		guest("g2", models.GuestTypeFriend),
		guest("g3", models.GuestTypeIndividual),
		guest("g4", models.GuestTypeOther),
		guest("g5", models.GuestTypeFamily),
	}
	pool := []models.POI{room("r1", 1), room("r2", 2), room("r3", 3)}

	result := AllocateRooms(guests, pool)
	assert.Equal(t, len(guests), len(result.Assignments)+len(result.Unassigned))
}

func TestAllocateRoomsStableTieOrder(t *testing.T) {
	// Guests with equal priority keep their input order
	guests := []models.Guest{
		guest("g1", models.GuestTypeIndividual),
		guest("g2", models.GuestTypeOther),
		guest("g3", models.GuestTypeIndividual),
	}
	pool := []models.POI{room("r1", 1), room("r2", 1), room("r3", 1)}

	result := AllocateRooms(guests, pool)
	require.Len(t, result.Assignments, 3)
	assert.Equal(t, "g1", result.Assignments[0].Guest.ID)
	assert.Equal(t, "g2", result.Assignments[1].Guest.ID)
	assert.Equal(t, "g3", result.Assignments[2].Guest.ID)
}

func TestAllocateRoomsDoesNotMutateInputs(t *testing.T) {
	guests := []models.Guest{
		guest("g1", models.GuestTypeFriend),
		guest("g2", models.GuestTypeFamily),
	}
	pool := []models.POI{room("r1", 1), room("r2", 2)}

	AllocateRooms(guests, pool)

	assert.Equal(t, "g1", guests[0].ID)
	assert.Equal(t, "g2", guests[1].ID)
	assert.Equal(t, "r1", pool[0].ID)
	assert.Equal(t, "r2", pool[1].ID)
}

func TestAllocateRoomsEmptyPool(t *testing.T) {
	guests := []models.Guest{guest("g1", models.GuestTypeFamily)}

	result := AllocateRooms(guests, nil)
	assert.Empty(t, result.Assignments)
	require.Len(t, result.Unassigned, 1)
	assert.Equal(t, "Guest g1", result.Unassigned[0].Guest)
}

func TestEffectiveCapacityDefaultsToOne(t *testing.T) {
	p := room("r1", 0)
	assert.Equal(t, 1, p.EffectiveCapacity())

	p.Capacity = -3
	assert.Equal(t, 1, p.EffectiveCapacity())

	p.Capacity = 5
	assert.Equal(t, 5, p.EffectiveCapacity())
}
