package domain

// WaitlistRequest is the payload for joining the waitlist.
type WaitlistRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name,omitempty" validate:"max=120"`
	Source string `json:"source" validate:"required"`
}

// Validate checks the waitlist request.
func (r WaitlistRequest) Validate() error {
	return validate.Struct(r)
}
