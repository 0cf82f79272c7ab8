// Package types provides shared types for the server package and its subpackages.
package types

import (
	"time"

	"github.com/nomis52/gocti/buildinfo"
	"github.com/nomis52/gocti/salesactivity"
)

// ServerProperties holds metadata about the running server instance.
type ServerProperties struct {
	Build     buildinfo.Properties `json:"build"`
	StartedAt time.Time            `json:"started_at"`
	Hostname  string               `json:"hostname"`
	CRMDomain string               `json:"crm_domain"`
}

// ProbeStatus is the outcome of the most recent reference data check.
type ProbeStatus struct {
	// CheckedAt is nil until the first check finishes.
	CheckedAt *time.Time                   `json:"checked_at,omitempty"`
	Ready     bool                         `json:"ready"`
	Reference *salesactivity.ReferenceData `json:"reference,omitempty"`
	Kind      string                       `json:"kind,omitempty"`
	Error     string                       `json:"error,omitempty"`
	NextCheck *time.Time                   `json:"next_check,omitempty"`
}
