package waitlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fieldsWithViolations(t *testing.T, req *JoinWaitlistRequest) map[string]string {
	t.Helper()

	found := map[string]string{}
	for _, v := range ValidateJoinRequest(req) {
		found[v.Field] = v.Message
	}
	return found
}

func TestValidateJoinRequest_ValidInput(t *testing.T) {
	violations := ValidateJoinRequest(&JoinWaitlistRequest{
		Email: "john.doe@gmail.com",
		Name:  "John Doe",
	})

	assert.Empty(t, violations)
}

func TestValidateJoinRequest_AcceptsAccentedAndPunctuatedNames(t *testing.T) {
	names := []string{"Zoë", "O'Brien", "Jean-Luc", "María José", "D’Angelo"}

	for _, name := range names {
		violations := ValidateJoinRequest(&JoinWaitlistRequest{
			Email: "someone@gmail.com",
			Name:  name,
		})
		assert.Emptyf(t, violations, "name %q should be accepted", name)
	}
}

func TestValidateJoinRequest_RejectsOffDomainEmail(t *testing.T) {
	violations := fieldsWithViolations(t, &JoinWaitlistRequest{
		Email: "john@example.com",
		Name:  "John",
	})

	assert.Len(t, violations, 1)
	assert.Contains(t, violations["email"], "Only @gmail.com emails are allowed")
}

func TestValidateJoinRequest_RejectsMalformedEmail(t *testing.T) {
	for _, email := range []string{"not-an-email", "missing@", "a b@gmail.com", "Bob <bob@gmail.com>"} {
		violations := fieldsWithViolations(t, &JoinWaitlistRequest{
			Email: email,
			Name:  "John",
		})
		assert.Containsf(t, violations, "email", "email %q should be rejected", email)
	}
}

func TestValidateJoinRequest_RejectsInvalidNameCharacters(t *testing.T) {
	for _, name := range []string{"John123", "J@ne", "x_y", "Bob!"} {
		violations := fieldsWithViolations(t, &JoinWaitlistRequest{
			Email: "someone@gmail.com",
			Name:  name,
		})
		assert.Equalf(t, "Name can only contain letters, spaces, hyphens, and apostrophes",
			violations["name"], "name %q should be rejected", name)
	}
}

func TestValidateJoinRequest_ReportsEveryViolatedField(t *testing.T) {
	violations := ValidateJoinRequest(&JoinWaitlistRequest{
		Email: "john@example.com",
		Name:  "John123",
	})

	assert.Len(t, violations, 2)

	found := map[string]bool{}
	for _, v := range violations {
		found[v.Field] = true
	}
	assert.True(t, found["email"])
	assert.True(t, found["name"])
}

func TestValidateJoinRequest_RequiredFields(t *testing.T) {
	violations := fieldsWithViolations(t, &JoinWaitlistRequest{
		Email: "",
		Name:  "   ",
	})

	assert.Equal(t, "This field is required", violations["email"])
	assert.Equal(t, "This field is required", violations["name"])
}

func TestValidateJoinRequest_AllowedDomainOverride(t *testing.T) {
	t.Setenv("ALLOWED_EMAIL_DOMAIN", "@tars.live")

	violations := ValidateJoinRequest(&JoinWaitlistRequest{
		Email: "person@tars.live",
		Name:  "Person",
	})
	assert.Empty(t, violations)

	rejected := fieldsWithViolations(t, &JoinWaitlistRequest{
		Email: "person@gmail.com",
		Name:  "Person",
	})
	assert.Contains(t, rejected["email"], "Only @tars.live emails are allowed")
}
