package service

import (
	"math/rand"

	"plugbot/models"
)

// Queue prizes never land in the reserved top 5 positions.
const reservedPositions = 5

// Users outside the waitlist can win at most position 35.
const outsiderPositionCap = 35

// Ticket multiplier tables, indexed by the current number of distinct
// entrants. The table lengths and fallback values are part of the game's
// published odds and must not change.
var (
	// multiplier for entrants outside the waitlist
	outsideMultiplier = []int{
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
		2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
		3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	}
	// multiplier for entrants inside the waitlist
	insideMultiplier = []int{
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
		2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
		3, 3, 3, 3, 3,
	}
)

const (
	outsideMultiplierDefault = 3
	insideMultiplierDefault  = 2
)

// Multiplier returns the number of duplicate tickets one entrant contributes
// to the weighted pool, given the current entrant count and whether the
// entrant is already queued.
func Multiplier(entrants int, inWaitlist bool) int {
	if inWaitlist {
		if entrants >= 0 && entrants < len(insideMultiplier) {
			return insideMultiplier[entrants]
		}
		return insideMultiplierDefault
	}
	if entrants >= 0 && entrants < len(outsideMultiplier) {
		return outsideMultiplier[entrants]
	}
	return outsideMultiplierDefault
}

// TargetPosition picks a prize position biased toward the front of the queue.
// Queued subjects draw from [5, currentPosition); unqueued subjects draw from
// [5, min(waitlistLength, 35)+5). Degenerate ranges clamp to 5.
func TargetPosition(rng *rand.Rand, currentPosition, waitlistLength int) int {
	if currentPosition != models.WaitlistPositionNone {
		span := currentPosition - reservedPositions
		if span <= 0 {
			return reservedPositions
		}
		return rng.Intn(span) + reservedPositions
	}

	span := min(waitlistLength, outsiderPositionCap)
	if span <= 0 {
		return reservedPositions
	}
	return rng.Intn(span) + reservedPositions
}

// PushbackPosition picks a punishment position behind the subject's current
// one, drawn from (currentPosition, waitlistLength].
func PushbackPosition(rng *rand.Rand, currentPosition, waitlistLength int) int {
	span := waitlistLength - currentPosition
	if span <= 0 {
		return currentPosition + 1
	}
	return rng.Intn(span) + currentPosition + 1
}
