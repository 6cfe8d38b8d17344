package dto

type ResolveZoneRequest struct {
	PostalCode string   `json:"postal_code"`
	Lon        *float64 `json:"lon"`
	Lat        *float64 `json:"lat"`
	AddressID  int      `json:"address_id"`
	UserID     int      `json:"user_id"`
}

type ZoneResponse struct {
	ZoneID      int     `json:"zone_id"`
	Name        string  `json:"name"`
	WindowStart *string `json:"window_start,omitempty"`
	WindowEnd   *string `json:"window_end,omitempty"`
}

type ResolveZoneResponse struct {
	Serviceable bool          `json:"serviceable"`
	Zone        *ZoneResponse `json:"zone,omitempty"`
}
