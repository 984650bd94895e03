package domain

// RegistrationRequest is the input for registering a user for an event.
// Email and Name are only checked by request validation; they are not stored on the event.
// swagger:model RegistrationRequest
type RegistrationRequest struct {
	UserID int64  `json:"user_id" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required,min=2"`
}
