package onboarding

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/founderbridge/onboarding/internal/identity"
	"github.com/founderbridge/onboarding/internal/profile"
)

// validate checks the whole form on every edit. The notblank rule rejects
// whitespace-only input, which the builtin required rule accepts.
var validate = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Form is a role-specific profile creation form. The union is closed:
// DeveloperForm and RecruiterForm are the only implementations.
type Form interface {
	Role() profile.Role

	// Validate re-checks every field. A nil result means the form may
	// transition onward to submission.
	Validate() error

	// buildProfile merges the form with identity-derived base fields.
	buildProfile(ident *identity.Identity) profile.Profile
}

// DeveloperForm collects the developer profile fields. Skills are entered as
// a comma-separated list, matching the original form.
type DeveloperForm struct {
	FirstName    string `validate:"notblank"`
	LastName     string `validate:"notblank"`
	Email        string `validate:"notblank,email"`
	Experience   string `validate:"oneof=0-1 1-3 3-5 5+"`
	Skills       string `validate:"notblank"`
	Bio          string `validate:"notblank"`
	GithubHandle string
	LinkedinURL  string
	PortfolioURL string
}

// Role identifies the form shape.
func (f *DeveloperForm) Role() profile.Role { return profile.RoleDeveloper }

// Validate re-checks every field.
func (f *DeveloperForm) Validate() error { return validate.Struct(f) }

func (f *DeveloperForm) buildProfile(ident *identity.Identity) profile.Profile {
	return &profile.DeveloperProfile{
		Base:         baseFrom(ident, f.FirstName, f.LastName, f.Email),
		Skills:       splitSkills(f.Skills),
		Experience:   profile.ExperienceLevel(f.Experience),
		Bio:          strings.TrimSpace(f.Bio),
		GithubHandle: strings.TrimSpace(f.GithubHandle),
		LinkedinURL:  strings.TrimSpace(f.LinkedinURL),
		PortfolioURL: strings.TrimSpace(f.PortfolioURL),
	}
}

// RecruiterForm collects the recruiter profile fields.
type RecruiterForm struct {
	FirstName      string `validate:"notblank"`
	LastName       string `validate:"notblank"`
	Email          string `validate:"notblank,email"`
	Company        string `validate:"notblank"`
	Position       string `validate:"notblank"`
	CompanySize    string `validate:"oneof=1-10 11-50 51-200 201-500 500+"`
	Industry       string `validate:"oneof=technology finance healthcare education ecommerce other"`
	Bio            string `validate:"notblank"`
	CompanyWebsite string
	LinkedinURL    string
}

// Role identifies the form shape.
func (f *RecruiterForm) Role() profile.Role { return profile.RoleRecruiter }

// Validate re-checks every field.
func (f *RecruiterForm) Validate() error { return validate.Struct(f) }

func (f *RecruiterForm) buildProfile(ident *identity.Identity) profile.Profile {
	return &profile.RecruiterProfile{
		Base:           baseFrom(ident, f.FirstName, f.LastName, f.Email),
		Company:        strings.TrimSpace(f.Company),
		Position:       strings.TrimSpace(f.Position),
		CompanySize:    profile.CompanySize(f.CompanySize),
		Industry:       profile.Industry(f.Industry),
		Bio:            strings.TrimSpace(f.Bio),
		CompanyWebsite: strings.TrimSpace(f.CompanyWebsite),
		LinkedinURL:    strings.TrimSpace(f.LinkedinURL),
	}
}

// NewForm returns an empty form for the role, prefilled from the identity.
func NewForm(role profile.Role, ident *identity.Identity) Form {
	first, last := ident.SplitName()
	switch role {
	case profile.RoleRecruiter:
		return &RecruiterForm{FirstName: first, LastName: last, Email: ident.Email}
	default:
		return &DeveloperForm{FirstName: first, LastName: last, Email: ident.Email}
	}
}

// baseFrom merges identity facts with user-edited form fields: the identity
// supplies the stable id and avatar, the form supplies name and email.
func baseFrom(ident *identity.Identity, first, last, email string) profile.Base {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	return profile.Base{
		ID:          ident.ID,
		DisplayName: name,
		Email:       strings.TrimSpace(email),
		AvatarURL:   ident.AvatarURL,
	}
}

// splitSkills parses a comma-separated skill list into a trimmed,
// order-preserving set.
func splitSkills(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(s, ",") {
		skill := strings.TrimSpace(part)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}

// Compile-time union checks
var (
	_ Form = (*DeveloperForm)(nil)
	_ Form = (*RecruiterForm)(nil)
)
