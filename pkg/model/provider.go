package model

import (
	"time"
)

// AvailabilityWindow is one recurring weekly open interval. Times are civil
// wall-clock values in the provider's fixed-offset zone; 0 = Sunday.
type AvailabilityWindow struct {
	DayOfWeek    int      `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	Start        string   `json:"start" bson:"start" validate:"required,valid_clock"`
	End          string   `json:"end" bson:"end" validate:"required,valid_clock"`
	SessionKinds []string `json:"session_kinds" bson:"session_kinds" validate:"required,min=1,dive,oneof=online in_person"`
}

// AppliesTo reports whether the window serves the given session kind.
func (w AvailabilityWindow) AppliesTo(kind string) bool {
	for _, k := range w.SessionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ProviderPolicy holds the booking rules for one provider. Durations are
// stored as minutes so the document stays editable by hand; all of these
// are configuration, never hard-coded (business hours, lead time and the
// online-only evening block all vary between providers).
type ProviderPolicy struct {
	MinLeadTimeMin      int    `json:"min_lead_time_min" bson:"min_lead_time_min" validate:"min=0"`
	SessionDurationMin  int    `json:"session_duration_min" bson:"session_duration_min" validate:"required,min=5,max=480"`
	BufferBeforeMin     int    `json:"buffer_before_min" bson:"buffer_before_min" validate:"min=0,max=120"`
	BufferAfterMin      int    `json:"buffer_after_min" bson:"buffer_after_min" validate:"min=0,max=120"`
	HorizonBusinessDays int    `json:"horizon_business_days" bson:"horizon_business_days" validate:"required,min=1,max=90"`
	UTCOffset           string `json:"utc_offset" bson:"utc_offset" validate:"required,utc_offset"`
}

// BlockLength is the stride between candidate starts: session plus both
// buffers (50+5+5 = 60 minutes in the common configuration).
func (p ProviderPolicy) BlockLength() time.Duration {
	return time.Duration(p.SessionDurationMin+p.BufferBeforeMin+p.BufferAfterMin) * time.Minute
}

func (p ProviderPolicy) MinLeadTime() time.Duration {
	return time.Duration(p.MinLeadTimeMin) * time.Minute
}

func (p ProviderPolicy) SessionDuration() time.Duration {
	return time.Duration(p.SessionDurationMin) * time.Minute
}

// Provider is the configuration document read (never written) by this
// service: one policy plus the recurring weekly windows.
type Provider struct {
	ID        string               `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string               `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Policy    ProviderPolicy       `json:"policy" bson:"policy" validate:"required"`
	Windows   []AvailabilityWindow `json:"windows" bson:"windows" validate:"required,min=1,dive"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// WindowsFor returns the windows matching a day of week and session kind.
func (p *Provider) WindowsFor(dayOfWeek int, kind string) []AvailabilityWindow {
	var out []AvailabilityWindow
	for _, w := range p.Windows {
		if w.DayOfWeek == dayOfWeek && w.AppliesTo(kind) {
			out = append(out, w)
		}
	}
	return out
}
