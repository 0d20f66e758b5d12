package domain

// Attendee es un asistente confirmado a un evento del calendario.
type Attendee struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

// Event es la forma normalizada de un evento para el front-end.
type Event struct {
	ID          int        `json:"id"`
	StartTime   string     `json:"startTime"`
	EndTime     string     `json:"endTime"`
	Title       string     `json:"title"`
	Location    string     `json:"location"`
	Creator     string     `json:"creator"`
	Description string     `json:"description"`
	Attendees   []Attendee `json:"attendees"`
	EventID     string     `json:"eventId"`
	AllDayEvent bool       `json:"allDayEvent"`
}
