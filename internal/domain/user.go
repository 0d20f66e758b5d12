package domain

import "time"

// User es el agregado de miembro con sus credenciales locales.
type User struct {
	ID                   string     `json:"_id"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	FirstName            string     `json:"firstName,omitempty"`
	LastName             string     `json:"lastName,omitempty"`
	Classification       string     `json:"classification,omitempty"`
	ConfirmEmailToken    string     `json:"-"`
	ResetPasswordToken   string     `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	Verified             bool       `json:"verified"`
	HasPaidDues          bool       `json:"hasPaidDues"`
	Resume               string     `json:"resume,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// UserView es el subconjunto del usuario que se devuelve al cliente.
type UserView struct {
	ID                string    `json:"_id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Classification    string    `json:"classification"`
	Verified          bool      `json:"verified"`
	HasPaidDues       bool      `json:"hasPaidDues"`
	Resume            string    `json:"resume"`
	ConfirmEmailToken string    `json:"confirmEmailToken,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// View arma la vista publica; nunca incluye hash ni tokens de reset.
func (u User) View() UserView {
	return UserView{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Classification: u.Classification,
		Verified:       u.Verified,
		HasPaidDues:    u.HasPaidDues,
		Resume:         u.Resume,
		CreatedAt:      u.CreatedAt,
	}
}

// ResetPending indica si hay un reset activo y sin expirar en el instante now.
func (u User) ResetPending(now time.Time) bool {
	return u.ResetPasswordToken != "" && u.ResetPasswordExpires != nil && now.Before(*u.ResetPasswordExpires)
}

// ProfilePatch contiene los campos de perfil mutables por el propio usuario.
// Un puntero nil deja el campo sin cambios.
type ProfilePatch struct {
	FirstName      *string
	LastName       *string
	Classification *string
}

// Empty indica si el patch no modifica nada.
func (p ProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Classification == nil
}
