package profiles

import (
	"github.com/founderbridge/onboarding/internal/platform/timeutil"
	"github.com/founderbridge/onboarding/internal/profile"
)

// ProfileView is the wire shape for a stored profile. Role selects which of
// the optional field groups is populated.
type ProfileView struct {
	ID          string        `json:"id"          doc:"Identity id the profile belongs to" example:"google:103984221187552291437"`
	Role        string        `json:"role"        doc:"Profile role" enum:"developer,recruiter" example:"developer"`
	DisplayName string        `json:"displayName" doc:"Display name" example:"Ada Lovelace"`
	Email       string        `json:"email"       doc:"Contact email" example:"ada@example.com"`
	AvatarURL   string        `json:"avatarUrl,omitempty" doc:"Avatar URL"`
	Bio         string        `json:"bio" doc:"Short introduction"`
	CreatedAt   timeutil.Time `json:"createdAt" doc:"Creation timestamp"    example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt   timeutil.Time `json:"updatedAt" doc:"Last update timestamp" example:"2024-01-15T10:30:00.000Z"`

	// Developer fields.
	Skills       []string `json:"skills,omitempty"       doc:"Skill list"`
	Experience   string   `json:"experience,omitempty"   doc:"Years of experience bracket" example:"3-5"`
	GithubHandle string   `json:"githubHandle,omitempty" doc:"GitHub username"`
	PortfolioURL string   `json:"portfolioUrl,omitempty" doc:"Portfolio URL"`

	// Recruiter fields.
	Company        string `json:"company,omitempty"        doc:"Company name"`
	Position       string `json:"position,omitempty"       doc:"Position title"`
	CompanySize    string `json:"companySize,omitempty"    doc:"Company size bracket" example:"11-50"`
	Industry       string `json:"industry,omitempty"       doc:"Industry" example:"technology"`
	CompanyWebsite string `json:"companyWebsite,omitempty" doc:"Company website URL"`

	// Shared optional field.
	LinkedinURL string `json:"linkedinUrl,omitempty" doc:"LinkedIn profile URL"`
}

func toProfileView(p profile.Profile) ProfileView {
	base := profile.BaseOf(p)
	view := ProfileView{
		ID:          base.ID,
		Role:        string(p.Role()),
		DisplayName: base.DisplayName,
		Email:       base.Email,
		AvatarURL:   base.AvatarURL,
		CreatedAt:   timeutil.Time{Time: base.CreatedAt},
		UpdatedAt:   timeutil.Time{Time: base.UpdatedAt},
	}
	switch v := p.(type) {
	case *profile.DeveloperProfile:
		view.Bio = v.Bio
		view.Skills = v.Skills
		view.Experience = string(v.Experience)
		view.GithubHandle = v.GithubHandle
		view.LinkedinURL = v.LinkedinURL
		view.PortfolioURL = v.PortfolioURL
	case *profile.RecruiterProfile:
		view.Bio = v.Bio
		view.Company = v.Company
		view.Position = v.Position
		view.CompanySize = string(v.CompanySize)
		view.Industry = string(v.Industry)
		view.CompanyWebsite = v.CompanyWebsite
		view.LinkedinURL = v.LinkedinURL
	}
	return view
}
