package onboarding

import (
	flow "github.com/founderbridge/onboarding/internal/onboarding"
)

// PrefillView carries identity-derived fields into the client form.
type PrefillView struct {
	FirstName string `json:"firstName" doc:"Given name split from the provider display name" example:"Ada"`
	LastName  string `json:"lastName"  doc:"Remainder of the provider display name"          example:"Lovelace"`
	Email     string `json:"email"     doc:"Email from the provider"                         example:"ada@example.com"`
	AvatarURL string `json:"avatarUrl,omitempty" doc:"Avatar URL from the provider"`
}

// NavigationView tells the client where to route next.
type NavigationView struct {
	Target  string       `json:"target" doc:"Client route to navigate to" example:"/signup/developer"`
	Prefill *PrefillView `json:"prefill,omitempty" doc:"Form prefill, present for signup targets"`
}

// NotificationView is a user-facing message the client should display.
type NotificationView struct {
	Severity string `json:"severity" doc:"Notification severity" enum:"info,success,error" example:"error"`
	Title    string `json:"title"    doc:"Short headline"  example:"Authentication Cancelled"`
	Body     string `json:"body"     doc:"Message body"    example:"You closed the authentication window. Please try again."`
}

// FlowData is the flow snapshot returned by every flow operation.
type FlowData struct {
	ID            string             `json:"id"       doc:"Flow identifier" example:"6d9dfca6-6a54-4c6a-8a4e-1f1e64cb7c6b"`
	State         string             `json:"state"    doc:"Flow state" enum:"idle,authenticating,authenticated_unresolved,resolved_existing,form_active,submitting,completed" example:"form_active"`
	Role          string             `json:"role"     doc:"Role chosen when the flow began" enum:"developer,recruiter" example:"developer"`
	Provider      string             `json:"provider" doc:"Identity provider" enum:"google,github" example:"google"`
	Failure       string             `json:"failure,omitempty" doc:"Most recent failure kind, if any" example:"user_cancelled"`
	Navigations   []NavigationView   `json:"navigations,omitempty"   doc:"Routing directives emitted by this operation, in order"`
	Notifications []NotificationView `json:"notifications,omitempty" doc:"Notifications emitted by this operation, in order"`
}

func toNavigationViews(navs []flow.Navigation) []NavigationView {
	out := make([]NavigationView, 0, len(navs))
	for _, n := range navs {
		view := NavigationView{Target: n.Target}
		if n.Prefill != nil {
			view.Prefill = &PrefillView{
				FirstName: n.Prefill.FirstName,
				LastName:  n.Prefill.LastName,
				Email:     n.Prefill.Email,
				AvatarURL: n.Prefill.AvatarURL,
			}
		}
		out = append(out, view)
	}
	return out
}

func toNotificationViews(notes []flow.Notification) []NotificationView {
	out := make([]NotificationView, 0, len(notes))
	for _, n := range notes {
		out = append(out, NotificationView{
			Severity: string(n.Severity),
			Title:    n.Title,
			Body:     n.Body,
		})
	}
	return out
}
