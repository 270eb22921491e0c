// Package profile holds the campus profile rules: the gender-dependent
// hostel catalog and the patch semantics for updating gender and hostel.
//
// Invariant: hostel is only meaningful once gender is set, and a hostel must
// belong to the catalog of the user's gender. Changing gender invalidates a
// previously chosen hostel.
package profile

import (
	"fmt"

	"github.com/campusmart/webclient/internal/core/domain"
)

var hostelsByGender = map[domain.Gender][]string{
	domain.GenderMale: {
		"Aravali",
		"Nilgiri",
		"Shivalik",
		"Udaigiri",
		"Vindhyachal",
	},
	domain.GenderFemale: {
		"Himadri",
		"Kailash",
		"Sarojini",
	},
}

// Hostels returns the fixed hostel catalog for the given gender, or nil when
// the gender is unknown. The returned slice must not be mutated.
func Hostels(gender domain.Gender) []string {
	return hostelsByGender[gender]
}

// ValidHostel reports whether hostel belongs to the catalog for gender.
func ValidHostel(gender domain.Gender, hostel string) bool {
	for _, h := range hostelsByGender[gender] {
		if h == hostel {
			return true
		}
	}
	return false
}

// ApplyPatch merges patch into user, enforcing the gender/hostel invariant:
//
//   - a hostel cannot be set while gender is unset,
//   - a hostel must belong to the (possibly updated) gender's catalog,
//   - changing gender clears a hostel that is not valid for the new gender.
//
// user is mutated only when the whole patch is valid.
func ApplyPatch(user *domain.User, patch domain.ProfilePatch) error {
	gender := user.Gender
	hostel := user.Hostel

	if patch.Gender != nil {
		if !patch.Gender.Valid() {
			return fmt.Errorf("unknown gender %q", *patch.Gender)
		}
		if *patch.Gender != gender && hostel != "" && !ValidHostel(*patch.Gender, hostel) {
			hostel = ""
		}
		gender = *patch.Gender
	}

	if patch.Hostel != nil {
		if *patch.Hostel == "" {
			hostel = ""
		} else {
			if !gender.Valid() {
				return fmt.Errorf("hostel %q requires a gender to be set first", *patch.Hostel)
			}
			if !ValidHostel(gender, *patch.Hostel) {
				return fmt.Errorf("hostel %q is not in the %s catalog", *patch.Hostel, gender)
			}
			hostel = *patch.Hostel
		}
	}

	user.Gender = gender
	user.Hostel = hostel
	return nil
}
