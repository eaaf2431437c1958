package models

// StructuredAddress is an address extracted from listing text. It is never
// persisted standalone; its fields are flattened into Offer.
type StructuredAddress struct {
	StreetName     string // normalized title case, e.g. "Narutowicza"
	BuildingNumber string // digit run plus optional trailing letter, e.g. "73a"
	UnitNumber     string // optional, after "/" or "-"
	FullAddress    string // canonical rendering, always city-suffixed
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Latitude  float64 `firestore:"latitude" json:"latitude"`
	Longitude float64 `firestore:"longitude" json:"longitude"`
}

// BoundingBox is the fixed rectangle used to reject geocoding candidates
// outside the target city.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether p falls inside the box (edges inclusive).
func (b BoundingBox) Contains(p GeoPoint) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon
}
