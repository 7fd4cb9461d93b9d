package profile

import (
	"time"
)

// Role discriminates the two profile shapes.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleRecruiter Role = "recruiter"
)

// Valid reports whether r is a declared role.
func (r Role) Valid() bool {
	return r == RoleDeveloper || r == RoleRecruiter
}

// ExperienceLevel buckets a developer's years of experience.
type ExperienceLevel string

const (
	ExperienceJunior ExperienceLevel = "0-1"
	ExperienceMid    ExperienceLevel = "1-3"
	ExperienceSenior ExperienceLevel = "3-5"
	ExperienceExpert ExperienceLevel = "5+"
)

// CompanySize buckets a recruiter's company headcount.
type CompanySize string

const (
	CompanySizeMicro  CompanySize = "1-10"
	CompanySizeSmall  CompanySize = "11-50"
	CompanySizeMedium CompanySize = "51-200"
	CompanySizeLarge  CompanySize = "201-500"
	CompanySizeXL     CompanySize = "500+"
)

// Industry is the recruiter's company sector.
type Industry string

const (
	IndustryTechnology Industry = "technology"
	IndustryFinance    Industry = "finance"
	IndustryHealthcare Industry = "healthcare"
	IndustryEducation  Industry = "education"
	IndustryEcommerce  Industry = "ecommerce"
	IndustryOther      Industry = "other"
)

// Base holds the fields shared by both profile shapes.
type Base struct {
	ID          string
	DisplayName string
	Email       string
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Profile is a role-tagged record describing a developer or a recruiter.
// The union is closed: DeveloperProfile and RecruiterProfile are the only
// implementations, so a type switch over both is exhaustive.
type Profile interface {
	Role() Role
	base() *Base
}

// DeveloperProfile is the developer-shaped profile.
type DeveloperProfile struct {
	Base         Base
	Skills       []string
	Experience   ExperienceLevel
	Bio          string
	GithubHandle string
	LinkedinURL  string
	PortfolioURL string
}

// Role identifies the profile shape.
func (p *DeveloperProfile) Role() Role { return RoleDeveloper }

func (p *DeveloperProfile) base() *Base { return &p.Base }

// RecruiterProfile is the recruiter-shaped profile.
type RecruiterProfile struct {
	Base           Base
	Company        string
	Position       string
	CompanySize    CompanySize
	Industry       Industry
	Bio            string
	CompanyWebsite string
	LinkedinURL    string
}

// Role identifies the profile shape.
func (p *RecruiterProfile) Role() Role { return RoleRecruiter }

func (p *RecruiterProfile) base() *Base { return &p.Base }

// BaseOf returns the shared base record of any profile.
func BaseOf(p Profile) *Base { return p.base() }

// Compile-time union checks
var (
	_ Profile = (*DeveloperProfile)(nil)
	_ Profile = (*RecruiterProfile)(nil)
)
