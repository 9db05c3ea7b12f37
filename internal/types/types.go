// README: Common value types shared across modules.
package types

// ID is an opaque document/identity identifier.
type ID string

// Point is a WGS84 coordinate pair. The zero value is the unresolved-geocode
// sentinel used while a client is still typing an address.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the point is the (0,0) sentinel.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}
