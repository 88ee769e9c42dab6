package model

import "time"

// AppointmentLock is an advisory lock covering one (provider, start) slot
// while a booking transaction runs. The unique _id insert makes acquisition
// atomic; expires_at backs a TTL index so crashed holders release eventually.
type AppointmentLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
