package model

import (
	"time"
)

const (
	StatusHold      = "hold"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"

	KindOnline   = "online"
	KindInPerson = "in_person"
)

// ActiveStatuses are the statuses that occupy a time slot. The no-overlap
// invariant only applies to appointments in one of these.
var ActiveStatuses = []string{StatusHold, StatusConfirmed}

type Appointment struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProviderID  string    `json:"provider_id" bson:"provider_id" validate:"required,mongodb"`
	ClientName  string    `json:"client_name" bson:"client_name" validate:"required,min=2,max=100"`
	ClientEmail string    `json:"client_email" bson:"client_email" validate:"required,email,max=254"`
	SessionKind string    `json:"session_kind" bson:"session_kind" validate:"required,oneof=online in_person"`
	StartTime   time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=hold confirmed cancelled"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingRequest is the client-facing payload for creating an appointment.
// Start is a fixed-offset ISO 8601 instant as returned by the slots endpoint.
type BookingRequest struct {
	ProviderID  string `json:"provider_id" validate:"required,mongodb"`
	ClientName  string `json:"client_name" validate:"required,min=2,max=100"`
	ClientEmail string `json:"client_email" validate:"required,email,max=254"`
	SessionKind string `json:"session_kind" validate:"required,oneof=online in_person"`
	Start       string `json:"start" validate:"required"`
}
