package domain

import (
	"sort"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/voces/voces/internal/errors"
	userDomain "github.com/voces/voces/internal/user/domain"
	customValidation "github.com/voces/voces/internal/validation"
)

// Field names reported in a registration conflict.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

// Login failure reasons stored in FailedLoginAttempt details. They never reach the client.
const (
	ReasonUserNotFound    = "user_not_found"
	ReasonInvalidPassword = "invalid_password"
	ReasonAccountDisabled = "account_disabled"
	ReasonInvalidInput    = "invalid_input"
)

// RegisterInput holds the data submitted to create an account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Meta      RequestMeta
}

// Normalize trims surrounding whitespace from every field except the password.
func (i *RegisterInput) Normalize() {
	i.Username = strings.TrimSpace(i.Username)
	i.Email = strings.TrimSpace(i.Email)
	i.FirstName = strings.TrimSpace(i.FirstName)
	i.LastName = strings.TrimSpace(i.LastName)
}

// Validate checks the registration rules. Errors wrap errors.ErrInvalidInput.
func (i *RegisterInput) Validate() error {
	return customValidation.WrapValidationError(i.validate())
}

// InvalidFields names the fields rejected by Validate, sorted. It is nil for valid input.
func (i *RegisterInput) InvalidFields() []string {
	return fieldNames(i.validate(), registerFieldNames)
}

var registerFieldNames = map[string]string{
	"Username":  "username",
	"Email":     "email",
	"Password":  "password",
	"FirstName": "first_name",
	"LastName":  "last_name",
}

func (i *RegisterInput) validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Username,
			validation.Required,
			validation.RuneLength(3, 50),
			customValidation.Username,
		),
		validation.Field(&i.Email,
			validation.Required,
			validation.RuneLength(0, 255),
			customValidation.Email,
		),
		validation.Field(&i.Password,
			validation.Required,
			customValidation.PasswordStrength{MinLength: 8, MaxLength: 128},
		),
		validation.Field(&i.FirstName, validation.RuneLength(0, 100)),
		validation.Field(&i.LastName, validation.RuneLength(0, 100)),
	)
}

// LoginInput holds submitted credentials. Only existence and the password are checked;
// the usecase never reveals which of the two failed.
type LoginInput struct {
	Username string
	Password string
	Meta     RequestMeta
}

// Validate checks that both credentials are present. Errors wrap errors.ErrInvalidInput.
func (i *LoginInput) Validate() error {
	return customValidation.WrapValidationError(i.validate())
}

// InvalidFields names the missing credentials, sorted. It is nil for valid input.
func (i *LoginInput) InvalidFields() []string {
	return fieldNames(i.validate(), loginFieldNames)
}

var loginFieldNames = map[string]string{
	"Username": "username",
	"Password": "password",
}

func (i *LoginInput) validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Username,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&i.Password,
			validation.Required,
		),
	)
}

// fieldNames maps the keys of a validation.Errors to their wire names.
func fieldNames(err error, names map[string]string) []string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	fields := make([]string, 0, len(errs))
	for key := range errs {
		if name, ok := names[key]; ok {
			key = name
		}
		fields = append(fields, key)
	}
	sort.Strings(fields)
	return fields
}

// LoginOutput is returned after a successful login.
type LoginOutput struct {
	User         *userDomain.User
	Token        string
	ExpiresAt    time.Time
	CookieMaxAge time.Duration
}

// LogoutInput carries the identity resolved for the logout request.
type LogoutInput struct {
	Identity Identity
	Meta     RequestMeta
}
