package domain

// Address is a customer delivery address. The engine consumes it as a
// read-only snapshot; editing rules live with the administrative layer.
type Address struct {
	AddressID  int
	UserID     int
	PostalCode string
	Lines      []string
	Coord      *Coordinates // nil when the address was never geocoded
}
