package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCountry is the country code stored on new profiles.
const DefaultCountry = "CO"

// Sex values accepted on a demographic profile.
const (
	SexMale         = "M"
	SexFemale       = "F"
	SexOther        = "O"
	SexNotDisclosed = "N"
)

// DemographicProfile holds the optional survey data attached 1:1 to a user.
// Registration creates it empty; every field but UserID and Country starts unset.
type DemographicProfile struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	BirthDate      *time.Time
	Sex            string
	Phone          string
	City           string
	Department     string
	Country        string
	EducationLevel string
	Occupation     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewEmptyProfile returns the profile registration stores for a new user.
func NewEmptyProfile(userID uuid.UUID, now time.Time) *DemographicProfile {
	return &DemographicProfile{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		Country:   DefaultCountry,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
