package calendar

import (
	"context"
	"errors"

	"acm-portal/internal/domain"
)

// ErrDisabled indica que el calendario no esta configurado.
var ErrDisabled = errors.New("calendar disabled")

// DateTime replica el par dateTime/date del API: solo uno viene lleno.
type DateTime struct {
	DateTime string
	Date     string
}

// RawEvent es un evento tal como lo entrega el proveedor, antes de normalizarlo.
type RawEvent struct {
	ID          string
	Summary     string
	Location    string
	Description string
	CreatorName string
	Start       DateTime
	End         DateTime
	Attendees   []domain.Attendee
}

// Client es el contrato minimo que el resto del servicio usa del calendario.
type Client interface {
	ListUpcoming(ctx context.Context) ([]RawEvent, error)
	GetAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error)
	SetAttendees(ctx context.Context, eventID string, attendees []domain.Attendee) error
}

type disabledClient struct{}

func NewDisabledClient() Client {
	return disabledClient{}
}

func (disabledClient) ListUpcoming(context.Context) ([]RawEvent, error) {
	return nil, ErrDisabled
}

func (disabledClient) GetAttendees(context.Context, string) ([]domain.Attendee, error) {
	return nil, ErrDisabled
}

func (disabledClient) SetAttendees(context.Context, string, []domain.Attendee) error {
	return ErrDisabled
}
