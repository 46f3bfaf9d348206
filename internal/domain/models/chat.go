package models

// ChatRequest is one inbound assistant message. Mode selects between the
// guided help flow and free-form chat.
type ChatRequest struct {
	Message string `json:"message"`
	Mode    string `json:"chatMode"`
}
