package crmclient

import (
	"fmt"
	"time"
)

// ID identifies any CRM entity. Contact ids routinely exceed 32 bits.
type ID int64

// Owner is a CRM user that can own records.
type Owner struct {
	ID          ID     `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
}

type ownersResponse struct {
	Users []Owner `json:"users"`
}

// SalesActivityType classifies the channel of a sales activity (call, email, ...).
type SalesActivityType struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	InternalName string `json:"internal_name"`
	Position     int    `json:"position"`
	IsDefault    bool   `json:"is_default"`
	IsChecked    bool   `json:"is_checked"`
}

type salesActivityTypesResponse struct {
	SalesActivityTypes []SalesActivityType `json:"sales_activity_types"`
}

// SalesActivityOutcome is the result recorded for a sales activity of one type.
type SalesActivityOutcome struct {
	ID                  ID     `json:"id"`
	Name                string `json:"name"`
	SalesActivityTypeID ID     `json:"sales_activity_type_id"`
	Position            int    `json:"position"`
}

type salesActivityOutcomesResponse struct {
	SalesActivityOutcomes []SalesActivityOutcome `json:"sales_activity_outcomes"`
}

// SalesActivity is a sales activity record attached to a targetable entity.
type SalesActivity struct {
	ID                     ID        `json:"id,omitempty"`
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

type salesActivityEnvelope struct {
	SalesActivity SalesActivity `json:"sales_activity"`
}

type salesActivityCreated struct {
	SalesActivity struct {
		ID ID `json:"id"`
	} `json:"sales_activity"`
}

// CallDirection is the direction of a phone call.
type CallDirection string

const (
	CallIncoming CallDirection = "incoming"
	CallOutgoing CallDirection = "outgoing"
)

// ParseCallDirection validates a call direction string.
func ParseCallDirection(s string) (CallDirection, error) {
	switch CallDirection(s) {
	case CallIncoming, CallOutgoing:
		return CallDirection(s), nil
	default:
		return "", fmt.Errorf("invalid call direction %q: must be %q or %q", s, CallIncoming, CallOutgoing)
	}
}

// PhoneCall is a phone call log entry. It is submitted as a multipart form.
type PhoneCall struct {
	ID             ID            `json:"id,omitempty"`
	Direction      CallDirection `json:"call_direction"`
	TargetableType string        `json:"targetable_type"`
	Targetable     Contact       `json:"targetable"`
	Note           string        `json:"note,omitempty"`
}

type phoneCallEnvelope struct {
	PhoneCall struct {
		ID ID `json:"id"`
	} `json:"phone_call"`
}

// Contact is a CRM contact.
type Contact struct {
	ID           ID     `json:"id,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
	WorkNumber   string `json:"work_number,omitempty"`
}

type contactEnvelope struct {
	Contact Contact `json:"contact"`
}

// ContactFilter is a saved contact view.
type ContactFilter struct {
	ID             ID     `json:"id"`
	Name           string `json:"name"`
	ModelClassName string `json:"model_class_name"`
	UserID         ID     `json:"user_id"`
	IsDefault      bool   `json:"is_default"`
}

type contactFiltersResponse struct {
	Filters []ContactFilter `json:"filters"`
}

// PageMeta describes pagination of a contact listing.
type PageMeta struct {
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}

// ContactPage is one page of a contact view listing.
type ContactPage struct {
	Contacts []Contact `json:"contacts"`
	Meta     PageMeta  `json:"meta"`
}

type lookupResponse struct {
	Contacts struct {
		Contacts []Contact `json:"contacts"`
	} `json:"contacts"`
}
