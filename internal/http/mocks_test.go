package http

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"acm-portal/internal/calendar"
	"acm-portal/internal/domain"
	"acm-portal/internal/repository"
)

type mockUserRepo struct {
	mu      sync.Mutex
	users   map[string]domain.User
	pingErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]domain.User)}
}

func (m *mockUserRepo) find(match func(domain.User) bool) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (m *mockUserRepo) update(id string, fn func(*domain.User) bool) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !fn(&u) {
		return domain.User{}, repository.ErrNotFound
	}
	m.users[id] = u
	return u, nil
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if _, err := m.find(func(u domain.User) bool { return u.Email == user.Email }); err == nil {
		return repository.ErrDuplicateEmail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	return m.find(func(u domain.User) bool { return u.ID == id })
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	return m.find(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *mockUserRepo) GetByResetToken(_ context.Context, token string) (domain.User, error) {
	return m.find(func(u domain.User) bool { return token != "" && u.ResetPasswordToken == token })
}

func (m *mockUserRepo) ConfirmEmail(ctx context.Context, token string) (domain.User, error) {
	u, err := m.find(func(u domain.User) bool { return token != "" && u.ConfirmEmailToken == token })
	if err != nil {
		return domain.User{}, err
	}
	return m.update(u.ID, func(u *domain.User) bool {
		u.ConfirmEmailToken = ""
		u.Verified = true
		return true
	})
}

func (m *mockUserRepo) SetConfirmToken(_ context.Context, id, token string) error {
	_, err := m.update(id, func(u *domain.User) bool {
		u.ConfirmEmailToken = token
		return true
	})
	return err
}

func (m *mockUserRepo) SetResetToken(_ context.Context, id, token string, expiresAt time.Time) error {
	_, err := m.update(id, func(u *domain.User) bool {
		u.ResetPasswordToken = token
		u.ResetPasswordExpires = &expiresAt
		return true
	})
	return err
}

func (m *mockUserRepo) ResetPassword(_ context.Context, id, token, passwordHash string) (domain.User, error) {
	return m.update(id, func(u *domain.User) bool {
		if u.ResetPasswordToken != token {
			return false
		}
		u.PasswordHash = passwordHash
		u.ResetPasswordToken = ""
		u.ResetPasswordExpires = nil
		return true
	})
}

func (m *mockUserRepo) UpdateResume(_ context.Context, id, path string) (domain.User, error) {
	return m.update(id, func(u *domain.User) bool {
		u.Resume = path
		return true
	})
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id string, patch domain.ProfilePatch) (domain.User, error) {
	return m.update(id, func(u *domain.User) bool {
		if patch.FirstName != nil {
			u.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			u.LastName = *patch.LastName
		}
		if patch.Classification != nil {
			u.Classification = *patch.Classification
		}
		return true
	})
}

func (m *mockUserRepo) Ping(context.Context) error { return m.pingErr }

type mockEmailSender struct {
	mu       sync.Mutex
	confirm  map[string]string
	reset    map[string]string
	contacts []domain.ContactMessage
	err      error
}

func newMockEmailSender() *mockEmailSender {
	return &mockEmailSender{confirm: make(map[string]string), reset: make(map[string]string)}
}

func (m *mockEmailSender) SendConfirmation(_ context.Context, toEmail, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirm[toEmail] = token
	return m.err
}

func (m *mockEmailSender) SendPasswordReset(_ context.Context, toEmail, token string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset[toEmail] = token
	return m.err
}

func (m *mockEmailSender) SendContactMessage(_ context.Context, msg domain.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = append(m.contacts, msg)
	return m.err
}

type mockResumeStore struct {
	saved []byte
	key   string
	err   error
}

func (m *mockResumeStore) Save(_ context.Context, userID string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved, _ = io.ReadAll(r)
	m.key = "resumes/" + userID + "/file.pdf"
	return m.key, nil
}

type mockCalendar struct {
	events    []calendar.RawEvent
	attendees map[string][]domain.Attendee
}

func (m *mockCalendar) ListUpcoming(context.Context) ([]calendar.RawEvent, error) {
	return m.events, nil
}

func (m *mockCalendar) GetAttendees(_ context.Context, eventID string) ([]domain.Attendee, error) {
	list, ok := m.attendees[eventID]
	if !ok {
		return nil, calendar.ErrEventNotFound
	}
	return append([]domain.Attendee(nil), list...), nil
}

func (m *mockCalendar) SetAttendees(_ context.Context, eventID string, attendees []domain.Attendee) error {
	m.attendees[eventID] = attendees
	return nil
}
