package services

import "github.com/mina-rz/YogaStudioBack/internal/models"

// ComputeAvailability derives the availability of a session from its
// capacity and the number of bookings holding a spot. Remaining spots are
// clamped at zero: even if the booked count exceeds capacity upstream,
// overbooking is not representable in the output. Pure function, safe for
// concurrent use.
func ComputeAvailability(capacity, bookedCount int) models.Availability {
	if capacity < 0 {
		capacity = 0
	}
	if bookedCount < 0 {
		bookedCount = 0
	}

	remaining := capacity - bookedCount
	if remaining < 0 {
		remaining = 0
	}

	return models.Availability{
		Capacity:        capacity,
		BookedCount:     bookedCount,
		RemainingSpots:  remaining,
		IsFull:          remaining == 0,
		CanJoinWaitlist: remaining == 0,
	}
}
