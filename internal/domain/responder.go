package domain

type ResponderKind string

const (
	ResponderStation ResponderKind = "station"
	ResponderPatrol  ResponderKind = "patrol"
)

type ResponderStatus string

const (
	ResponderActive   ResponderStatus = "active"
	ResponderInactive ResponderStatus = "inactive"
)

type Location struct {
	Lat float64 `json:"lat" validate:"lat"`
	Lng float64 `json:"lng" validate:"lng"`
}

// Responder is a station or patrol unit record. Responders maintain their
// own records; this pipeline only reads them. Location is nil when the
// responder has never reported coordinates.
type Responder struct {
	ID        string          `json:"id"`
	Kind      ResponderKind   `json:"kind"`
	Name      string          `json:"name"`
	Location  *Location       `json:"location,omitempty"`
	Geohash   string          `json:"geohash"`
	Status    ResponderStatus `json:"status"` // patrols only; stations are always active
	PushToken string          `json:"push_token,omitempty"`
	Phone     string          `json:"phone,omitempty"`
}

// NearbyResponder pairs a responder with its exact great-circle distance
// from a query point.
type NearbyResponder struct {
	Responder
	DistanceKM float64 `json:"distance_km"`
}
