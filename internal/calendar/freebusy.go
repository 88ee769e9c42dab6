package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appterrors "agendo/internal/appointments/errors"
	"agendo/pkg/config"
	"agendo/pkg/model"
)

// BusySource answers free/busy queries for a provider over a UTC range.
type BusySource interface {
	GetBusyIntervals(ctx context.Context, providerID string, timeMin, timeMax time.Time) ([]model.BusyInterval, error)
}

type freeBusyRequest struct {
	TimeMin string             `json:"timeMin"`
	TimeMax string             `json:"timeMax"`
	Items   []freeBusyCalendar `json:"items"`
}

type freeBusyCalendar struct {
	ID string `json:"id"`
}

type freeBusyResponse struct {
	Calendars map[string]struct {
		Busy []struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"busy"`
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"calendars"`
}

// FreeBusyClient queries the calendar API's freeBusy endpoint with the
// provider's stored token.
type FreeBusyClient struct {
	cfg        *config.Config
	creds      CredentialRepository
	httpClient *http.Client
}

func NewFreeBusyClient(cfg *config.Config, creds CredentialRepository) *FreeBusyClient {
	return &FreeBusyClient{
		cfg:   cfg,
		creds: creds,
		httpClient: &http.Client{
			Timeout: cfg.ExternalFetchTimeout,
		},
	}
}

func (c *FreeBusyClient) GetBusyIntervals(ctx context.Context, providerID string, timeMin, timeMax time.Time) ([]model.BusyInterval, error) {
	cred, err := c.creds.FindByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(freeBusyRequest{
		TimeMin: timeMin.UTC().Format(time.RFC3339),
		TimeMax: timeMax.UTC().Format(time.RFC3339),
		Items:   []freeBusyCalendar{{ID: cred.CalendarID}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode freeBusy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.FreeBusyEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build freeBusy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("freeBusy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, appterrors.ErrCalendarNotConnected
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("freeBusy returned status %d: %s", resp.StatusCode, snippet)
	}

	var parsed freeBusyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode freeBusy response: %w", err)
	}

	cal, ok := parsed.Calendars[cred.CalendarID]
	if !ok {
		return nil, nil
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("freeBusy calendar error: %s", cal.Errors[0].Reason)
	}

	intervals := make([]model.BusyInterval, 0, len(cal.Busy))
	for _, b := range cal.Busy {
		start, err := time.Parse(time.RFC3339, b.Start)
		if err != nil {
			return nil, fmt.Errorf("freeBusy interval has invalid start %q: %w", b.Start, err)
		}
		end, err := time.Parse(time.RFC3339, b.End)
		if err != nil {
			return nil, fmt.Errorf("freeBusy interval has invalid end %q: %w", b.End, err)
		}
		intervals = append(intervals, model.BusyInterval{
			Start:  start.UTC(),
			End:    end.UTC(),
			Source: model.BusySourceExternal,
		})
	}

	return intervals, nil
}

// IsNotConnected reports whether an error means the provider simply has no
// usable calendar connection, as opposed to an infrastructure failure.
func IsNotConnected(err error) bool {
	return errors.Is(err, appterrors.ErrCalendarNotConnected)
}
