package onboarding

// StartInput begins a new onboarding flow.
type StartInput struct {
	Body struct {
		Role     string `json:"role"     doc:"Profile role to sign up for" enum:"developer,recruiter" example:"developer"`
		Provider string `json:"provider" doc:"Identity provider to sign in with" enum:"google,github" example:"google"`
	}
}

// FlowParam identifies an existing flow in the path.
type FlowParam struct {
	FlowID string `path:"flowId" doc:"Flow identifier returned by the start operation" example:"6d9dfca6-6a54-4c6a-8a4e-1f1e64cb7c6b"`
}

// GetInput reads a flow snapshot.
type GetInput struct {
	FlowParam
}

// CallbackInput delivers the provider's redirect parameters to the flow.
// Exactly one of code or error is set on a well-formed callback.
type CallbackInput struct {
	FlowParam
	Body struct {
		State            string `json:"state" doc:"Opaque state token echoed by the provider" minLength:"1"`
		Code             string `json:"code,omitempty"  doc:"Authorization code on success"`
		Error            string `json:"error,omitempty" doc:"OAuth error code on failure" example:"access_denied"`
		ErrorDescription string `json:"errorDescription,omitempty" doc:"OAuth error description, if any"`
	}
}

// CancelInput abandons an in-flight sign-in.
type CancelInput struct {
	FlowParam
}

// EnterFormInput guards direct navigation to a role's signup form.
type EnterFormInput struct {
	FlowParam
	Role string `path:"role" doc:"Role whose form is being entered" enum:"developer,recruiter" example:"developer"`
}

// FormInput replaces the form draft. The role selects which field group is
// read; fields of the other role are ignored.
type FormInput struct {
	FlowParam
	Body struct {
		Role      string `json:"role"      doc:"Form role, must match the flow's role" enum:"developer,recruiter" example:"developer"`
		FirstName string `json:"firstName" doc:"Given name" example:"Ada"`
		LastName  string `json:"lastName"  doc:"Family name" example:"Lovelace"`
		Email     string `json:"email"     doc:"Contact email" example:"ada@example.com"`
		Bio       string `json:"bio"       doc:"Short introduction"`

		// Developer fields.
		Experience   string `json:"experience,omitempty"   doc:"Years of experience" enum:",0-1,1-3,3-5,5+"`
		Skills       string `json:"skills,omitempty"       doc:"Comma-separated skill list" example:"Go, Firestore"`
		GithubHandle string `json:"githubHandle,omitempty" doc:"GitHub username"`
		PortfolioURL string `json:"portfolioUrl,omitempty" doc:"Portfolio URL"`

		// Recruiter fields.
		Company        string `json:"company,omitempty"        doc:"Company name"`
		Position       string `json:"position,omitempty"       doc:"Position title"`
		CompanySize    string `json:"companySize,omitempty"    doc:"Company size bracket" enum:",1-10,11-50,51-200,201-500,500+"`
		Industry       string `json:"industry,omitempty"       doc:"Industry" enum:",technology,finance,healthcare,education,ecommerce,other"`
		CompanyWebsite string `json:"companyWebsite,omitempty" doc:"Company website URL"`

		// Shared optional field.
		LinkedinURL string `json:"linkedinUrl,omitempty" doc:"LinkedIn profile URL"`
	}
}

// SubmitInput finalizes the flow by writing the profile.
type SubmitInput struct {
	FlowParam
}
