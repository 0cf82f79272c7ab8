// Package salesactivity attaches a sales activity record to a CRM contact.
//
// Logging a phone activity is a short dependent sequence: resolve the
// operator, find the phone activity type, find the outcome scoped to that
// type, then write the record. Each step runs as a workflow activity; the
// first failure stops the sequence before the write, so a failed invocation
// never leaves a partial record behind.
//
//	l, err := salesactivity.New(identity, directory, writer, sink,
//	    salesactivity.WithSettings(settings),
//	    salesactivity.WithLogger(logger))
//	id, err := l.LogPhoneActivity(ctx, 16002341859, "Sample note")
//
// Failures are returned as *Error and can be inspected with IsKind.
package salesactivity

import (
	"context"
	"time"

	"github.com/nomis52/gocti/clients/crmclient"
)

// ID identifies a CRM entity.
type ID = crmclient.ID

// Operator is the CRM user on whose behalf activities are logged.
type Operator struct {
	ID ID `json:"id"`
}

// ActivityType classifies the channel of a sales activity.
type ActivityType struct {
	ID           ID     `json:"id"`
	InternalName string `json:"internal_name"`
}

// ActivityOutcome classifies the result of a sales activity. Outcomes are
// scoped to one ActivityType.
type ActivityOutcome struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Record is the sales activity submitted to the CRM.
type Record struct {
	Title                  string    `json:"title"`
	Notes                  string    `json:"notes"`
	TargetableType         string    `json:"targetable_type"`
	TargetableID           ID        `json:"targetable_id"`
	StartDate              time.Time `json:"start_date"`
	EndDate                time.Time `json:"end_date"`
	OwnerID                ID        `json:"owner_id"`
	SalesActivityTypeID    ID        `json:"sales_activity_type_id"`
	SalesActivityOutcomeID ID        `json:"sales_activity_outcome_id"`
}

// IdentityProvider resolves the current operator.
type IdentityProvider interface {
	CurrentOperator(ctx context.Context) (Operator, error)
}

// Directory provides read-only access to sales activity reference data.
type Directory interface {
	ListActivityTypes(ctx context.Context) ([]ActivityType, error)
	ListActivityOutcomes(ctx context.Context, typeID ID) ([]ActivityOutcome, error)
}

// Writer creates sales activity records.
type Writer interface {
	CreateActivity(ctx context.Context, record Record) (ID, error)
}

// Settings controls which reference data is matched and how records are built.
type Settings struct {
	// TypeInternalName selects the activity type by its internal name.
	TypeInternalName string
	// OutcomeName selects the outcome by its display name.
	OutcomeName string
	// Title is the record title.
	Title string
	// TargetableType is the kind of entity the record is attached to.
	TargetableType string
	// StartDate and EndDate are used verbatim when set. A zero StartDate
	// means the invocation time; a zero EndDate means StartDate.
	StartDate time.Time
	EndDate   time.Time
	// StepTimeout bounds each step. Zero disables the bound.
	StepTimeout time.Duration
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		TypeInternalName: "cphone",
		OutcomeName:      "Interested",
		Title:            "call",
		TargetableType:   "Contact",
		StepTimeout:      10 * time.Second,
	}
}

// Invocation summarises one LogPhoneActivity call.
type Invocation struct {
	ID         string        `json:"id"`
	ContactID  ID            `json:"contact_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	ActivityID ID            `json:"activity_id,omitempty"`
	Result     string        `json:"result"`
	Stage      Stage         `json:"stage,omitempty"`
	Error      string        `json:"error,omitempty"`
	Steps      []StepResult  `json:"steps"`
}

// StepResult is the final state of one step of an invocation.
type StepResult struct {
	Step     string        `json:"step"`
	State    string        `json:"state"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Reporter receives a summary of every finished invocation.
type Reporter interface {
	Report(inv Invocation)
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func(inv Invocation)

// Report implements Reporter.
func (f ReporterFunc) Report(inv Invocation) {
	f(inv)
}
