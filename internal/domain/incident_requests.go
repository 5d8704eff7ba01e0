package domain

type ReportIncidentRequest struct {
	VehicleID    string    `json:"vehicle_id" validate:"required"`
	Type         string    `json:"type" validate:"required"`
	Location     *Location `json:"location" validate:"omitempty"`
	OwnerContact string    `json:"owner_contact" validate:"required"`

	DriverName          string `json:"driver_name" validate:"omitempty,max=200"`
	DriverLicenseNumber string `json:"driver_license_number" validate:"omitempty,max=100"`
	Notes               string `json:"notes" validate:"omitempty,max=2000"`
	DriverPhotoURL      string `json:"driver_photo_url" validate:"omitempty,url"`
	OtherDetails        string `json:"other_details" validate:"omitempty,max=2000"`
}

type ReportIncidentResponse struct {
	IncidentID  string `json:"incident_id"`
	NearbyCount int    `json:"nearby_count"`
	Notified    int    `json:"notified"`
}

type AcknowledgeIncidentRequest struct {
	ResponderID   string `json:"responder_id" validate:"required"`
	ResponderName string `json:"responder_name" validate:"omitempty,max=200"`
	ETA           string `json:"eta" validate:"omitempty,max=100"`
}

type UpdateIncidentStatusRequest struct {
	Status IncidentStatus `json:"status" validate:"required"`
}

type ListIncidentsRequest struct {
	Status IncidentStatus `query:"status" validate:"omitempty,oneof=reported acknowledged in_progress resolved"`
	Page   int            `query:"page" validate:"min=1"`
	Limit  int            `query:"limit" validate:"min=1,max=100"`
}
