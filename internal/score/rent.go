// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import "github.com/pdiddy/listing-finder/pkg/types"

// Shared-unit pricing: a provider rent estimate is split per room with a
// small premium for common areas; town fallbacks are discounted because a
// room in a shared unit rents below a standalone one-bedroom.
const (
	sharedRoomPremium  = 1.05
	sharedRoomDiscount = 0.65
)

// RentOffset estimates the monthly rent a roommate would pay. The owner
// occupies one bedroom, so studios and one-bedrooms yield zero. With a
// provider rent estimate the offset is the per-room share plus the shared
// premium; otherwise the town's fallback rent (or the metro fallback)
// discounted for shared living.
func RentOffset(l types.Listing, cfg types.CostConfig) int {
	if l.Beds == nil || *l.Beds < 2 {
		return 0
	}

	if l.RentEstimate > 0 {
		perRoom := l.RentEstimate / *l.Beds
		return int(float64(perRoom) * sharedRoomPremium)
	}

	if rent, ok := cfg.FallbackRents[l.Town]; ok {
		return int(float64(rent) * sharedRoomDiscount)
	}

	return int(float64(cfg.MetroRent) * sharedRoomDiscount)
}
