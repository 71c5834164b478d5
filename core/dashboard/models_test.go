package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOccupancyRate(t *testing.T) {
	tests := []struct {
		occupied, total int
		want            float64
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{1, 4, 25},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{4, 4, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OccupancyRate(tt.occupied, tt.total), "%d/%d", tt.occupied, tt.total)
	}
}

func TestNewStats(t *testing.T) {
	now := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)
	c := Counts{
		TotalRooms: 4, OccupiedRooms: 1, TotalCapacity: 7, OccupiedBeds: 2,
		TotalResidents: 3, ActiveResidents: 2,
		ByGender:   map[string]int{"female": 3},
		TotalStaff: 2, ActiveStaff: 1,
	}

	s := NewStats(c, now)
	assert.Equal(t, RoomStats{Total: 4, Occupied: 1, Available: 3, OccupancyRate: 25}, s.Rooms)
	assert.Equal(t, CapacityStats{Total: 7, Occupied: 2, Available: 5}, s.Capacity)
	assert.Equal(t, map[string]int{"male": 0, "female": 3}, s.Residents.ByGender)
	assert.Equal(t, map[string]int{"internal": 0, "external": 0}, s.Residents.ByType)
	assert.Equal(t, StaffStats{Total: 2, Active: 1}, s.Staff)
	assert.Equal(t, now, s.GeneratedAt)

	qs := NewQuickStats(c)
	assert.Equal(t, QuickStats{
		TotalRooms: 4, OccupiedRooms: 1, AvailableRooms: 3, OccupancyRate: 25,
		TotalResidents: 3, ActiveResidents: 2, TotalStaff: 2,
	}, qs)
}
