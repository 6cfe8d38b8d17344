package services

import (
	"delivery-schedule-service/internal/domain"
	"fmt"
	"time"
)

// ResolveZone applies manual overrides on top of geo matching and returns
// the single authoritative zone for an address.
//
// Precedence: an address-scoped override beats a user-scoped one, which
// beats the geo match. Within one scope the most recently created override
// in force wins. When nothing applies the result is ErrUnserviceable;
// the resolver never defaults to an arbitrary zone.
func ResolveZone(
	addr domain.Address,
	zones []domain.Zone,
	addressOverrides []domain.ZoneOverride,
	userOverrides []domain.ZoneOverride,
	now time.Time,
) (domain.Zone, error) {
	byID := make(map[int]domain.Zone, len(zones))
	for _, z := range zones {
		if z.Active {
			byID[z.ZoneID] = z
		}
	}

	if o, ok := domain.PickOverride(addressOverrides, now); ok {
		return overrideZone(o, byID)
	}
	if o, ok := domain.PickOverride(userOverrides, now); ok {
		return overrideZone(o, byID)
	}

	zone, ok := SelectZone(addr, MatchZones(addr, zones))
	if !ok {
		return domain.Zone{}, fmt.Errorf("resolve zone: address %d: %w", addr.AddressID, ErrUnserviceable)
	}
	return zone, nil
}

// An override pointing at a zone that is gone or inactive resolves to
// unserviceable rather than silently falling back to the geo match.
func overrideZone(o domain.ZoneOverride, byID map[int]domain.Zone) (domain.Zone, error) {
	z, ok := byID[o.ZoneID]
	if !ok {
		return domain.Zone{}, fmt.Errorf(
			"resolve zone: override %d targets inactive zone %d: %w",
			o.OverrideID, o.ZoneID, ErrUnserviceable,
		)
	}
	return z, nil
}
