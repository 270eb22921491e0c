package domain

import "time"

// Gender of a user profile. Hostels on campus are gender-segregated, so the
// hostel catalog a user may pick from depends on this value.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the known gender values.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// User is the authenticated marketplace identity held client-side.
// The wire shape matches the remote API's identity record.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Gender         Gender    `json:"gender,omitempty"`
	Hostel         string    `json:"hostel,omitempty"`
	IsVerified     bool      `json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileComplete reports whether the user has set both gender and hostel.
// Product submission is gated on a complete profile.
func (u *User) ProfileComplete() bool {
	return u != nil && u.Gender.Valid() && u.Hostel != ""
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Gender *Gender `json:"gender,omitempty"`
	Hostel *string `json:"hostel,omitempty"`
}

// AuthState is the derived, in-memory view of a session exposed to the view
// layer. The bearer token is deliberately absent: view code never sees it.
//
// Invariant: IsAuthenticated is true if and only if User is non-nil.
type AuthState struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"is_authenticated"`
	IsLoading       bool  `json:"is_loading"`
}
