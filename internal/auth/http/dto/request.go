// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import authDomain "github.com/voces/voces/internal/auth/domain"

// RegisterRequest is bound from either a JSON body or an HTML form.
// Field rules live on authDomain.RegisterInput.
type RegisterRequest struct {
	Username  string `json:"username"   form:"username"`
	Email     string `json:"email"      form:"email"`
	Password  string `json:"password"   form:"password"` //nolint:gosec // request field
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name"  form:"last_name"`
}

// ToInput converts the request into use case input.
func (r *RegisterRequest) ToInput(meta authDomain.RequestMeta) *authDomain.RegisterInput {
	return &authDomain.RegisterInput{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Meta:      meta,
	}
}

// LoginRequest is bound from either a JSON body or an HTML form.
// Field rules live on authDomain.LoginInput.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"` //nolint:gosec // request field
}

// ToInput converts the request into use case input.
func (r *LoginRequest) ToInput(meta authDomain.RequestMeta) *authDomain.LoginInput {
	return &authDomain.LoginInput{
		Username: r.Username,
		Password: r.Password,
		Meta:     meta,
	}
}
