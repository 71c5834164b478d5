package dashboard

import (
	"math"
	"time"
)

// Counts are the raw aggregates read from storage.
type Counts struct {
	TotalRooms      int
	OccupiedRooms   int
	TotalCapacity   int
	OccupiedBeds    int
	TotalResidents  int
	ActiveResidents int
	ByGender        map[string]int
	ByType          map[string]int
	TotalStaff      int
	ActiveStaff     int
}

type (
	Stats struct {
		Rooms       RoomStats     `json:"rooms"`
		Capacity    CapacityStats `json:"capacity"`
		Residents   ResidentStats `json:"residents"`
		Staff       StaffStats    `json:"staff"`
		GeneratedAt time.Time     `json:"generatedAt"`
	}

	RoomStats struct {
		Total         int     `json:"total"`
		Occupied      int     `json:"occupied"`
		Available     int     `json:"available"`
		OccupancyRate float64 `json:"occupancyRate"`
	}

	CapacityStats struct {
		Total     int `json:"total"`
		Occupied  int `json:"occupied"`
		Available int `json:"available"`
	}

	ResidentStats struct {
		Total    int            `json:"total"`
		Active   int            `json:"active"`
		ByGender map[string]int `json:"byGender"`
		ByType   map[string]int `json:"byType"`
	}

	StaffStats struct {
		Total  int `json:"total"`
		Active int `json:"active"`
	}

	// QuickStats is the flat variant shown in the header widgets.
	QuickStats struct {
		TotalRooms      int     `json:"totalRooms"`
		OccupiedRooms   int     `json:"occupiedRooms"`
		AvailableRooms  int     `json:"availableRooms"`
		OccupancyRate   float64 `json:"occupancyRate"`
		TotalResidents  int     `json:"totalResidents"`
		ActiveResidents int     `json:"activeResidents"`
		TotalStaff      int     `json:"totalStaff"`
	}
)

// OccupancyRate is the percentage of occupied rooms, rounded to 2 decimals. 0 when there are no rooms.
func OccupancyRate(occupied, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(occupied)/float64(total)*100*100) / 100
}

func NewStats(c Counts, now time.Time) Stats {
	return Stats{
		Rooms: RoomStats{
			Total:         c.TotalRooms,
			Occupied:      c.OccupiedRooms,
			Available:     c.TotalRooms - c.OccupiedRooms,
			OccupancyRate: OccupancyRate(c.OccupiedRooms, c.TotalRooms),
		},
		Capacity: CapacityStats{
			Total:     c.TotalCapacity,
			Occupied:  c.OccupiedBeds,
			Available: c.TotalCapacity - c.OccupiedBeds,
		},
		Residents: ResidentStats{
			Total:    c.TotalResidents,
			Active:   c.ActiveResidents,
			ByGender: withKeys(c.ByGender, "male", "female"),
			ByType:   withKeys(c.ByType, "internal", "external"),
		},
		Staff: StaffStats{
			Total:  c.TotalStaff,
			Active: c.ActiveStaff,
		},
		GeneratedAt: now,
	}
}

func NewQuickStats(c Counts) QuickStats {
	return QuickStats{
		TotalRooms:      c.TotalRooms,
		OccupiedRooms:   c.OccupiedRooms,
		AvailableRooms:  c.TotalRooms - c.OccupiedRooms,
		OccupancyRate:   OccupancyRate(c.OccupiedRooms, c.TotalRooms),
		TotalResidents:  c.TotalResidents,
		ActiveResidents: c.ActiveResidents,
		TotalStaff:      c.TotalStaff,
	}
}

// withKeys copies m, making sure every key is present.
func withKeys(m map[string]int, keys ...string) map[string]int {
	out := make(map[string]int, len(m)+len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	for k, v := range m {
		out[k] = v
	}
	return out
}
