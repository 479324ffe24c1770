package dto

// CreateTicketRequest asks for a ticket to be raised for a control.
type CreateTicketRequest struct {
	ControlID string `json:"controlId"`
}
