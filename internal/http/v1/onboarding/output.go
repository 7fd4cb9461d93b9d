package onboarding

// StartData is the response body for the start operation.
type StartData struct {
	FlowID    string `json:"flowId"  doc:"Flow identifier for subsequent operations" example:"6d9dfca6-6a54-4c6a-8a4e-1f1e64cb7c6b"`
	AuthURL   string `json:"authUrl" doc:"Provider authorization URL to redirect the user to"`
	ExpiresAt string `json:"expiresAt" doc:"Flow expiry timestamp" example:"2024-01-15T10:45:00.000Z"`
}

// StartOutput is the response wrapper for the start operation.
type StartOutput struct {
	Body StartData
}

// FlowOutput wraps a flow snapshot.
type FlowOutput struct {
	Body FlowData
}
