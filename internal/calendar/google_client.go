package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"acm-portal/internal/domain"
)

// ErrEventNotFound se devuelve cuando el proveedor no conoce el eventId.
var ErrEventNotFound = errors.New("event not found")

const defaultMaxResults = 25

// GoogleClient lee y modifica eventos de un calendario de Google.
type GoogleClient struct {
	events     *gcal.EventsService
	calendarID string
	maxResults int64
	now        func() time.Time
}

// NewGoogleClient arma el cliente con una credencial de cuenta de servicio.
func NewGoogleClient(ctx context.Context, credentialsFile, calendarID string, opts ...option.ClientOption) (*GoogleClient, error) {
	if strings.TrimSpace(credentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, option.WithScopes(gcal.CalendarEventsScope))
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return newGoogleClient(svc, calendarID), nil
}

func newGoogleClient(svc *gcal.Service, calendarID string) *GoogleClient {
	if strings.TrimSpace(calendarID) == "" {
		calendarID = "primary"
	}
	return &GoogleClient{
		events:     svc.Events,
		calendarID: calendarID,
		maxResults: defaultMaxResults,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (c *GoogleClient) ListUpcoming(ctx context.Context) ([]RawEvent, error) {
	res, err := c.events.List(c.calendarID).
		TimeMin(c.now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(c.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]RawEvent, 0, len(res.Items))
	for _, item := range res.Items {
		out = append(out, fromGoogleEvent(item))
	}
	return out, nil
}

func (c *GoogleClient) GetAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error) {
	ev, err := c.events.Get(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}
	return fromGoogleAttendees(ev.Attendees), nil
}

// SetAttendees reemplaza la lista completa; Google elimina duplicados.
func (c *GoogleClient) SetAttendees(ctx context.Context, eventID string, attendees []domain.Attendee) error {
	patch := &gcal.Event{Attendees: toGoogleAttendees(attendees)}
	if len(patch.Attendees) == 0 {
		patch.NullFields = []string{"Attendees"}
	}
	_, err := c.events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
	return translateError(err)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return ErrEventNotFound
	}
	return err
}

func fromGoogleEvent(ev *gcal.Event) RawEvent {
	raw := RawEvent{
		ID:          ev.Id,
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Attendees:   fromGoogleAttendees(ev.Attendees),
	}
	if ev.Creator != nil {
		raw.CreatorName = ev.Creator.DisplayName
	}
	if ev.Start != nil {
		raw.Start = DateTime{DateTime: ev.Start.DateTime, Date: ev.Start.Date}
	}
	if ev.End != nil {
		raw.End = DateTime{DateTime: ev.End.DateTime, Date: ev.End.Date}
	}
	return raw
}

func fromGoogleAttendees(in []*gcal.EventAttendee) []domain.Attendee {
	out := make([]domain.Attendee, 0, len(in))
	for _, a := range in {
		if a == nil {
			continue
		}
		out = append(out, domain.Attendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
		})
	}
	return out
}

func toGoogleAttendees(in []domain.Attendee) []*gcal.EventAttendee {
	out := make([]*gcal.EventAttendee, 0, len(in))
	for _, a := range in {
		out = append(out, &gcal.EventAttendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
		})
	}
	return out
}
