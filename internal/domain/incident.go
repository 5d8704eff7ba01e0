package domain

import (
	"time"

	"github.com/google/uuid"
)

type IncidentStatus string

const (
	IncidentReported     IncidentStatus = "reported"
	IncidentAcknowledged IncidentStatus = "acknowledged"
	IncidentInProgress   IncidentStatus = "in_progress"
	IncidentResolved     IncidentStatus = "resolved"
)

// ValidTransitionTarget reports whether s is a status a caller may move an
// incident to. "reported" is only ever set at creation.
func (s IncidentStatus) ValidTransitionTarget() bool {
	switch s {
	case IncidentAcknowledged, IncidentInProgress, IncidentResolved:
		return true
	}
	return false
}

// GeohashPlaceholder marks incidents created without a location. The stored
// coordinates fall back to a fixed default and the key is not geographically
// meaningful.
const GeohashPlaceholder = "placeholder"

type Incident struct {
	ID           uuid.UUID      `json:"id"`
	VehicleID    string         `json:"vehicle_id"`
	OwnerID      string         `json:"owner_id"`
	Type         string         `json:"type"`
	Lat          float64        `json:"lat"`
	Lng          float64        `json:"lng"`
	Geohash      string         `json:"geohash"`
	Status       IncidentStatus `json:"status"`
	OwnerContact string         `json:"owner_contact"`

	DriverName          string `json:"driver_name,omitempty"`
	DriverLicenseNumber string `json:"driver_license_number,omitempty"`
	Notes               string `json:"notes,omitempty"`
	DriverPhotoURL      string `json:"driver_photo_url,omitempty"`
	OtherDetails        string `json:"other_details,omitempty"`

	AcknowledgedBy string `json:"acknowledged_by,omitempty"`
	ResponderName  string `json:"responder_name,omitempty"`
	ETA            string `json:"eta,omitempty"`

	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// Acknowledgement carries the responder identity recorded when an incident
// is acknowledged.
type Acknowledgement struct {
	ResponderID   string
	ResponderName string
	ETA           string
	At            time.Time
}
