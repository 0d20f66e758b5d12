package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"acm-portal/internal/calendar"
	"acm-portal/internal/domain"
)

var (
	ErrNoAttendees      = errors.New("no attendees found")
	ErrAttendeeNotFound = errors.New("no user found")
	ErrInvalidEvent     = errors.New("invalid event id")
)

const (
	defaultLocation = "TBA"
	defaultCreator  = "TTU ACM"
	statusAccepted  = "accepted"
)

// EventService expone los eventos del calendario del club y maneja RSVPs.
type EventService struct {
	logger   *zap.Logger
	calendar calendar.Client
	cache    EventCache
	cacheTTL time.Duration
}

func NewEventService(logger *zap.Logger, client calendar.Client, cache EventCache, cacheTTL time.Duration) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = calendar.NewDisabledClient()
	}
	return &EventService{
		logger:   logger,
		calendar: client,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		if events, ok := s.cache.Get(ctx); ok {
			return events, nil
		}
	}
	raw, err := s.calendar.ListUpcoming(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, 0, len(raw))
	for i, ev := range raw {
		events = append(events, normalizeEvent(i, ev))
	}
	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, events, s.cacheTTL); err != nil {
			s.logger.Warn("cache events failed", zap.Error(err))
		}
	}
	return events, nil
}

func (s *EventService) Attendees(ctx context.Context, eventID string) ([]domain.Attendee, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, ErrInvalidEvent
	}
	return s.calendar.GetAttendees(ctx, eventID)
}

// RSVP agrega al miembro como asistente aceptado. Repetir el RSVP no duplica.
func (s *EventService) RSVP(ctx context.Context, eventID, email string) ([]domain.Attendee, error) {
	attendees, err := s.Attendees(ctx, eventID)
	if err != nil {
		return nil, err
	}
	updated := addAttendee(attendees, email)
	if err := s.calendar.SetAttendees(ctx, strings.TrimSpace(eventID), updated); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *EventService) CancelRSVP(ctx context.Context, eventID, email string) ([]domain.Attendee, error) {
	attendees, err := s.Attendees(ctx, eventID)
	if err != nil {
		return nil, err
	}
	updated, err := removeAttendee(attendees, email)
	if err != nil {
		return nil, err
	}
	if err := s.calendar.SetAttendees(ctx, strings.TrimSpace(eventID), updated); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *EventService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate events cache failed", zap.Error(err))
	}
}

func normalizeEvent(i int, ev calendar.RawEvent) domain.Event {
	start := firstNonEmpty(ev.Start.DateTime, ev.Start.Date)
	end := firstNonEmpty(ev.End.DateTime, ev.End.Date)
	attendees := ev.Attendees
	if attendees == nil {
		attendees = []domain.Attendee{}
	}
	return domain.Event{
		ID:          i + 1,
		StartTime:   start,
		EndTime:     end,
		Title:       ev.Summary,
		Location:    firstNonEmpty(ev.Location, defaultLocation),
		Creator:     firstNonEmpty(ev.CreatorName, defaultCreator),
		Description: ev.Description,
		Attendees:   attendees,
		EventID:     ev.ID,
		AllDayEvent: ev.Start.DateTime == "" && ev.Start.Date != "",
	}
}

func addAttendee(current []domain.Attendee, email string) []domain.Attendee {
	email = normalizeEmail(email)
	out := make([]domain.Attendee, 0, len(current)+1)
	for _, a := range current {
		if normalizeEmail(a.Email) == email {
			a.ResponseStatus = statusAccepted
			email = ""
		}
		out = append(out, a)
	}
	if email != "" {
		out = append(out, domain.Attendee{Email: email, ResponseStatus: statusAccepted})
	}
	return out
}

func removeAttendee(current []domain.Attendee, email string) ([]domain.Attendee, error) {
	if len(current) == 0 {
		return nil, ErrNoAttendees
	}
	email = normalizeEmail(email)
	out := make([]domain.Attendee, 0, len(current))
	for _, a := range current {
		if normalizeEmail(a.Email) != email {
			out = append(out, a)
		}
	}
	if len(out) == len(current) {
		return nil, ErrAttendeeNotFound
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
