package service

import (
	"context"
	"time"

	"agendo/pkg/kafka"
	"agendo/pkg/model"
)

const (
	TopicAppointments    = "agendo.appointments"
	TopicAppointmentsDLQ = "agendo.appointments.dlq"

	EventAppointmentCreated   = "appointment.created"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentExpired   = "appointment.expired"
)

// EventPublisher is the producer-side surface the service needs. Satisfied by
// kafka.Producer; nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type appointmentEvent struct {
	AppointmentID string    `json:"appointment_id"`
	ProviderID    string    `json:"provider_id"`
	SessionKind   string    `json:"session_kind"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
}

func newAppointmentEvent(a *model.Appointment) appointmentEvent {
	return appointmentEvent{
		AppointmentID: a.ID,
		ProviderID:    a.ProviderID,
		SessionKind:   a.SessionKind,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        a.Status,
	}
}
