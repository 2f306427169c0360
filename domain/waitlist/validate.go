package waitlist

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	apperrors "github.com/tarslive/waitlist-api/pkg/errors"
	"github.com/tarslive/waitlist-api/pkg/utils"
	"golang.org/x/text/unicode/norm"
)

// DefaultAllowedEmailDomain restricts signups to a single approved
// mail domain. Override with ALLOWED_EMAIL_DOMAIN.
const DefaultAllowedEmailDomain = "@gmail.com"

func allowedEmailDomain() string {
	domain := utils.GetEnvTrimmedOrDefault("ALLOWED_EMAIL_DOMAIN", DefaultAllowedEmailDomain)
	if !strings.HasPrefix(domain, "@") {
		domain = "@" + domain
	}
	return domain
}

// ValidateJoinRequest checks a raw signup payload against every field
// rule and returns the full list of violations, not just the first.
// It has no side effects; callers surface the result verbatim.
func ValidateJoinRequest(req *JoinWaitlistRequest) []apperrors.ValidationErrorResponse {
	var violations []apperrors.ValidationErrorResponse

	if req == nil {
		return []apperrors.ValidationErrorResponse{{Field: "request", Message: "Request body is required"}}
	}

	domain := allowedEmailDomain()
	email := strings.TrimSpace(req.Email)

	switch {
	case email == "":
		violations = append(violations, apperrors.ValidationErrorResponse{
			Field: "email", Message: "This field is required",
		})
	case !isValidEmailAddress(email):
		violations = append(violations, apperrors.ValidationErrorResponse{
			Field: "email", Message: "Invalid email format",
		})
	case !strings.HasSuffix(strings.ToLower(email), domain):
		violations = append(violations, apperrors.ValidationErrorResponse{
			Field: "email", Message: fmt.Sprintf("Only %s emails are allowed", domain),
		})
	}

	name := strings.TrimSpace(norm.NFC.String(req.Name))
	switch {
	case name == "":
		violations = append(violations, apperrors.ValidationErrorResponse{
			Field: "name", Message: "This field is required",
		})
	case !isValidName(name):
		violations = append(violations, apperrors.ValidationErrorResponse{
			Field: "name", Message: "Name can only contain letters, spaces, hyphens, and apostrophes",
		})
	}

	return violations
}

func isValidEmailAddress(email string) bool {
	addr, err := mail.ParseAddress(email)
	// Reject display-name forms like `Bob <bob@gmail.com>`: the field
	// must be a bare address.
	return err == nil && addr.Address == email
}

// isValidName accepts letters (including accented), spaces, hyphens
// and apostrophes. Any other rune rejects the whole field.
func isValidName(name string) bool {
	for _, r := range name {
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' || r == '’' {
			continue
		}
		return false
	}
	return true
}
