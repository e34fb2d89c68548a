package candidates

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{2,31}$`)

// RegisterForm is the registration payload.
type RegisterForm struct {
	Name   string `json:"name" form:"name"`
	Email  string `json:"email" form:"email"`
	Phone  string `json:"phone" form:"phone"`
	Gender string `json:"gender" form:"gender"`
}

// Normalize trims whitespace and lower-cases the email.
func (f *RegisterForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Phone = strings.TrimSpace(f.Phone)
	f.Gender = strings.TrimSpace(f.Gender)
}

// Validate checks that every field is present and well formed.
func (f RegisterForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&f.Email, validation.Required, validation.RuneLength(3, 254), is.EmailFormat),
		validation.Field(&f.Phone, validation.Required, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&f.Gender, validation.Required, validation.RuneLength(1, 32)),
	)
}
