package domain

// ContactMessage es el mensaje enviado desde el formulario de contacto.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Topic   string `json:"topic"`
	Message string `json:"message"`
}
