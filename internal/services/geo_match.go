package services

import (
	"delivery-schedule-service/internal/domain"
	"slices"
)

// MatchZones returns the active zones that claim the address. A zone
// qualifies on a postal-code match or on polygon containment of the
// address coordinate; either rule alone is enough.
func MatchZones(addr domain.Address, zones []domain.Zone) []domain.Zone {
	candidates := make([]domain.Zone, 0, 2)

	for _, z := range zones {
		if !z.Active {
			continue
		}

		if addr.PostalCode != "" && z.HasPostalCode(addr.PostalCode) {
			candidates = append(candidates, z)
			continue
		}
		if addr.Coord != nil && z.ContainsPoint(*addr.Coord) {
			candidates = append(candidates, z)
		}
	}

	return candidates
}

// SelectZone picks one zone deterministically from a candidate set:
// a polygon match beats a postal-code-only match, and remaining ties go
// to the smallest zone id. The rule is arbitrary but stable, so repeated
// runs over identical data always agree.
func SelectZone(addr domain.Address, candidates []domain.Zone) (domain.Zone, bool) {
	if len(candidates) == 0 {
		return domain.Zone{}, false
	}

	ranked := slices.Clone(candidates)
	slices.SortFunc(ranked, func(a, b domain.Zone) int {
		pa := polygonMatch(addr, a)
		pb := polygonMatch(addr, b)
		if pa != pb {
			if pa {
				return -1
			}
			return 1
		}
		if a.ZoneID < b.ZoneID {
			return -1
		}
		if a.ZoneID > b.ZoneID {
			return 1
		}
		return 0
	})

	return ranked[0], true
}

func polygonMatch(addr domain.Address, z domain.Zone) bool {
	return addr.Coord != nil && z.ContainsPoint(*addr.Coord)
}
