package onboarding

import (
	"sync"

	"github.com/founderbridge/onboarding/internal/profile"
)

// Navigation targets understood by the client routing layer.
const (
	PathRoot = "/"
)

// AuthPath is the sign-in entry point for a role intent.
func AuthPath(role profile.Role) string {
	return "/auth/" + string(role)
}

// SignupPath is the role-specific profile creation form.
func SignupPath(role profile.Role) string {
	return "/signup/" + string(role)
}

// DashboardPath is the entry point for an existing profile's role.
func DashboardPath(role profile.Role) string {
	return "/dashboard/" + string(role)
}

// FormPrefill carries identity-derived fields into the creation form.
type FormPrefill struct {
	FirstName string
	LastName  string
	Email     string
	AvatarURL string
}

// Navigation tells the routing layer where to send the user next.
type Navigation struct {
	Target  string
	Prefill *FormPrefill // set only when Target is a signup form
}

// Severity grades a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification tells the presentation layer what to show the user.
type Notification struct {
	Severity Severity
	Title    string
	Body     string
}

// Sink consumes the directives the orchestrator emits. The routing and
// presentation layers behind it are out of scope here.
type Sink interface {
	Navigate(Navigation)
	Notify(Notification)
}

// Collector is a Sink that records directives in order, for transports that
// return them in a response body and for tests.
type Collector struct {
	mu            sync.Mutex
	navigations   []Navigation
	notifications []Notification
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Navigate records a navigation directive.
func (c *Collector) Navigate(n Navigation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navigations = append(c.navigations, n)
}

// Notify records a notification directive.
func (c *Collector) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = append(c.notifications, n)
}

// Navigations returns the recorded navigation directives in emission order.
func (c *Collector) Navigations() []Navigation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Navigation(nil), c.navigations...)
}

// Notifications returns the recorded notification directives in emission order.
func (c *Collector) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.notifications...)
}

// Drain returns all recorded directives and clears the collector. Transports
// call it once per request to relay exactly the directives that request
// produced.
func (c *Collector) Drain() ([]Navigation, []Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	navs, notes := c.navigations, c.notifications
	c.navigations, c.notifications = nil, nil
	return navs, notes
}

// Compile-time interface check
var _ Sink = (*Collector)(nil)
