package services

import (
	"delivery-schedule-service/internal/domain"
	"testing"
)

func postalSet(codes ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func squareAround(lon, lat, half float64) domain.Polygon {
	return domain.Polygon{
		{Lon: lon - half, Lat: lat - half},
		{Lon: lon + half, Lat: lat - half},
		{Lon: lon + half, Lat: lat + half},
		{Lon: lon - half, Lat: lat + half},
	}
}

func TestMatchZonesPostalAndPolygon(t *testing.T) {
	coord := domain.Coordinates{Lon: 10, Lat: 20}
	addr := domain.Address{AddressID: 1, PostalCode: "85009", Coord: &coord}

	zones := []domain.Zone{
		{ZoneID: 1, Active: true, PostalCodes: postalSet("85009")},
		{ZoneID: 2, Active: true, Boundary: squareAround(10, 20, 1)},
		{ZoneID: 3, Active: true, PostalCodes: postalSet("99999")},
		{ZoneID: 4, Active: false, PostalCodes: postalSet("85009")},
	}

	got := MatchZones(addr, zones)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].ZoneID != 1 || got[1].ZoneID != 2 {
		t.Errorf("candidates = %d,%d, want 1,2", got[0].ZoneID, got[1].ZoneID)
	}
}

func TestMatchZonesEitherRuleQualifies(t *testing.T) {
	// Postal code matches but the coordinate is far outside the polygon.
	coord := domain.Coordinates{Lon: 100, Lat: 100}
	addr := domain.Address{PostalCode: "11111", Coord: &coord}

	zone := domain.Zone{
		ZoneID:      1,
		Active:      true,
		PostalCodes: postalSet("11111"),
		Boundary:    squareAround(0, 0, 1),
	}

	if got := MatchZones(addr, []domain.Zone{zone}); len(got) != 1 {
		t.Fatalf("postal match alone should qualify, got %d candidates", len(got))
	}
}

func TestSelectZonePolygonBeatsPostal(t *testing.T) {
	coord := domain.Coordinates{Lon: 10, Lat: 20}
	addr := domain.Address{PostalCode: "85009", Coord: &coord}

	candidates := []domain.Zone{
		{ZoneID: 1, Active: true, PostalCodes: postalSet("85009")},
		{ZoneID: 5, Active: true, Boundary: squareAround(10, 20, 1)},
	}

	zone, ok := SelectZone(addr, candidates)
	if !ok {
		t.Fatal("expected a selection")
	}
	if zone.ZoneID != 5 {
		t.Errorf("selected zone %d, want polygon-matched 5", zone.ZoneID)
	}
}

func TestSelectZoneSmallestIDBreaksTies(t *testing.T) {
	addr := domain.Address{PostalCode: "85009"}

	candidates := []domain.Zone{
		{ZoneID: 7, Active: true, PostalCodes: postalSet("85009")},
		{ZoneID: 3, Active: true, PostalCodes: postalSet("85009")},
	}

	zone, ok := SelectZone(addr, candidates)
	if !ok {
		t.Fatal("expected a selection")
	}
	if zone.ZoneID != 3 {
		t.Errorf("selected zone %d, want 3", zone.ZoneID)
	}
}

func TestSelectZoneEmpty(t *testing.T) {
	if _, ok := SelectZone(domain.Address{}, nil); ok {
		t.Error("expected no selection from empty candidates")
	}
}
