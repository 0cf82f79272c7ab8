package salesactivity

import (
	"context"
	"fmt"
	"strings"

	"github.com/nomis52/gocti/clients/crmclient"
)

// OwnerLister lists the CRM users that can own records.
type OwnerLister interface {
	ListOwners(ctx context.Context) ([]crmclient.Owner, error)
}

// ReferenceClient is the part of the CRM API that serves sales activity reference data.
type ReferenceClient interface {
	ListSalesActivityTypes(ctx context.Context) ([]crmclient.SalesActivityType, error)
	ListSalesActivityOutcomes(ctx context.Context, typeID crmclient.ID) ([]crmclient.SalesActivityOutcome, error)
}

// ActivityCreator is the part of the CRM API that creates sales activities.
type ActivityCreator interface {
	CreateSalesActivity(ctx context.Context, activity crmclient.SalesActivity) (*crmclient.SalesActivity, error)
}

// StaticOperator is an IdentityProvider for a fixed, configured operator id.
type StaticOperator ID

// CurrentOperator implements IdentityProvider.
func (s StaticOperator) CurrentOperator(ctx context.Context) (Operator, error) {
	if s == 0 {
		return Operator{}, fmt.Errorf("no operator configured")
	}
	return Operator{ID: ID(s)}, nil
}

// OwnerLookup resolves the operator by matching Email against the account's users.
type OwnerLookup struct {
	Owners OwnerLister
	Email  string
}

// CurrentOperator implements IdentityProvider. Emails compare case-insensitively.
func (o OwnerLookup) CurrentOperator(ctx context.Context) (Operator, error) {
	owners, err := o.Owners.ListOwners(ctx)
	if err != nil {
		return Operator{}, fmt.Errorf("listing owners: %w", err)
	}
	for _, owner := range owners {
		if strings.EqualFold(owner.Email, o.Email) {
			if !owner.IsActive {
				return Operator{}, fmt.Errorf("operator %s is not active", o.Email)
			}
			return Operator{ID: owner.ID}, nil
		}
	}
	return Operator{}, fmt.Errorf("no CRM user with email %s", o.Email)
}

// CRMDirectory is a Directory backed by the CRM selector endpoints.
type CRMDirectory struct {
	Client ReferenceClient
}

// ListActivityTypes implements Directory.
func (d CRMDirectory) ListActivityTypes(ctx context.Context) ([]ActivityType, error) {
	types, err := d.Client.ListSalesActivityTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ActivityType, 0, len(types))
	for _, t := range types {
		out = append(out, ActivityType{ID: t.ID, InternalName: t.InternalName})
	}
	return out, nil
}

// ListActivityOutcomes implements Directory.
func (d CRMDirectory) ListActivityOutcomes(ctx context.Context, typeID ID) ([]ActivityOutcome, error) {
	outcomes, err := d.Client.ListSalesActivityOutcomes(ctx, typeID)
	if err != nil {
		return nil, err
	}
	out := make([]ActivityOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, ActivityOutcome{ID: o.ID, Name: o.Name})
	}
	return out, nil
}

// CRMWriter is a Writer backed by the CRM sales activities endpoint.
type CRMWriter struct {
	Client ActivityCreator
}

// CreateActivity implements Writer.
func (w CRMWriter) CreateActivity(ctx context.Context, r Record) (ID, error) {
	created, err := w.Client.CreateSalesActivity(ctx, crmclient.SalesActivity{
		Title:                  r.Title,
		Notes:                  r.Notes,
		TargetableType:         r.TargetableType,
		TargetableID:           r.TargetableID,
		StartDate:              r.StartDate,
		EndDate:                r.EndDate,
		OwnerID:                r.OwnerID,
		SalesActivityTypeID:    r.SalesActivityTypeID,
		SalesActivityOutcomeID: r.SalesActivityOutcomeID,
	})
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}
