package domain

import "time"

// ZoneOverride pins a specific user or address to a zone other than what
// geo-matching would select. Exactly one of UserID/AddressID is set.
type ZoneOverride struct {
	OverrideID int
	UserID     *int
	AddressID  *int
	ZoneID     int
	Reason     string
	ExpiresAt  *time.Time
	Active     bool
	CreatedAt  time.Time
}

// InForce reports whether the override applies at the given instant.
// A past expiry makes the override inactive even when the stored active
// flag still says otherwise; expiry is authoritative over stale data.
func (o ZoneOverride) InForce(now time.Time) bool {
	if !o.Active {
		return false
	}
	if o.ExpiresAt != nil && !o.ExpiresAt.After(now) {
		return false
	}
	return true
}

// PickOverride selects the authoritative override among candidates for a
// single target: the most recently created one in force, with the larger
// id breaking creation-time ties.
func PickOverride(overrides []ZoneOverride, now time.Time) (ZoneOverride, bool) {
	var best ZoneOverride
	found := false

	for _, o := range overrides {
		if !o.InForce(now) {
			continue
		}
		if !found {
			best = o
			found = true
			continue
		}
		if o.CreatedAt.After(best.CreatedAt) ||
			(o.CreatedAt.Equal(best.CreatedAt) && o.OverrideID > best.OverrideID) {
			best = o
		}
	}

	return best, found
}
