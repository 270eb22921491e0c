package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmart/webclient/internal/core/domain"
)

func strptr(s string) *string { return &s }

func genderptr(g domain.Gender) *domain.Gender { return &g }

func TestApplyPatchHostelRequiresGender(t *testing.T) {
	user := &domain.User{ID: "u1"}

	err := ApplyPatch(user, domain.ProfilePatch{Hostel: strptr("Aravali")})
	require.Error(t, err)
	assert.Empty(t, user.Hostel)
	assert.Empty(t, user.Gender)
}

func TestApplyPatchHostelMustMatchCatalog(t *testing.T) {
	user := &domain.User{ID: "u1", Gender: domain.GenderFemale}

	err := ApplyPatch(user, domain.ProfilePatch{Hostel: strptr("Aravali")})
	require.Error(t, err)

	err = ApplyPatch(user, domain.ProfilePatch{Hostel: strptr("Kailash")})
	require.NoError(t, err)
	assert.Equal(t, "Kailash", user.Hostel)
}

func TestApplyPatchGenderChangeClearsHostel(t *testing.T) {
	user := &domain.User{ID: "u1", Gender: domain.GenderMale, Hostel: "Nilgiri"}

	err := ApplyPatch(user, domain.ProfilePatch{Gender: genderptr(domain.GenderFemale)})
	require.NoError(t, err)
	assert.Equal(t, domain.GenderFemale, user.Gender)
	assert.Empty(t, user.Hostel, "hostel from the old gender catalog must be cleared")
}

func TestApplyPatchGenderAndHostelTogether(t *testing.T) {
	user := &domain.User{ID: "u1"}

	err := ApplyPatch(user, domain.ProfilePatch{
		Gender: genderptr(domain.GenderMale),
		Hostel: strptr("Shivalik"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.GenderMale, user.Gender)
	assert.Equal(t, "Shivalik", user.Hostel)
	assert.True(t, user.ProfileComplete())
}

func TestApplyPatchInvalidGenderLeavesUserUntouched(t *testing.T) {
	user := &domain.User{ID: "u1", Gender: domain.GenderMale, Hostel: "Aravali"}

	err := ApplyPatch(user, domain.ProfilePatch{Gender: genderptr(domain.Gender("other"))})
	require.Error(t, err)
	assert.Equal(t, domain.GenderMale, user.Gender)
	assert.Equal(t, "Aravali", user.Hostel)
}

func TestHostelsCatalog(t *testing.T) {
	assert.NotEmpty(t, Hostels(domain.GenderMale))
	assert.NotEmpty(t, Hostels(domain.GenderFemale))
	assert.Nil(t, Hostels(domain.Gender("other")))
}
