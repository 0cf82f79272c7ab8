package salesactivity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ResolveOperator looks up the operator the record will be attributed to.
type ResolveOperator struct {
	Identity IdentityProvider
	Logger   *slog.Logger

	Operator Operator
}

func (a *ResolveOperator) Init() error {
	if a.Identity == nil {
		return errors.New("identity provider is required")
	}
	return nil
}

func (a *ResolveOperator) Execute(ctx context.Context) error {
	op, err := a.Identity.CurrentOperator(ctx)
	if err != nil {
		return classify(StageOperator, err)
	}
	a.Operator = op
	a.Logger.Debug("operator resolved", "operator_id", int64(op.ID))
	return nil
}

// FindActivityType selects the activity type whose internal name matches.
type FindActivityType struct {
	Directory    Directory
	InternalName string
	Logger       *slog.Logger

	Type ActivityType
}

func (a *FindActivityType) Init() error {
	if a.Directory == nil {
		return errors.New("directory is required")
	}
	if a.InternalName == "" {
		return errors.New("activity type internal name is required")
	}
	return nil
}

func (a *FindActivityType) Execute(ctx context.Context) error {
	types, err := a.Directory.ListActivityTypes(ctx)
	if err != nil {
		return classify(StageType, fmt.Errorf("listing activity types: %w", err))
	}
	for _, t := range types {
		if t.InternalName == a.InternalName {
			a.Type = t
			a.Logger.Debug("activity type resolved", "type_id", int64(t.ID), "internal_name", t.InternalName)
			return nil
		}
	}
	return classify(StageType, fmt.Errorf("%w: no type with internal name %q among %d", ErrTypeNotFound, a.InternalName, len(types)))
}

// FindActivityOutcome selects the outcome of the resolved type whose name matches.
type FindActivityOutcome struct {
	Directory Directory
	Name      string
	TypeStep  *FindActivityType
	Logger    *slog.Logger

	Outcome ActivityOutcome
}

func (a *FindActivityOutcome) Init() error {
	if a.Directory == nil {
		return errors.New("directory is required")
	}
	if a.Name == "" {
		return errors.New("outcome name is required")
	}
	if a.TypeStep == nil {
		return errors.New("activity type step is required")
	}
	return nil
}

func (a *FindActivityOutcome) Execute(ctx context.Context) error {
	typeID := a.TypeStep.Type.ID
	outcomes, err := a.Directory.ListActivityOutcomes(ctx, typeID)
	if err != nil {
		return classify(StageOutcome, fmt.Errorf("listing outcomes for type %d: %w", typeID, err))
	}
	for _, o := range outcomes {
		if o.Name == a.Name {
			a.Outcome = o
			a.Logger.Debug("activity outcome resolved", "outcome_id", int64(o.ID), "name", o.Name)
			return nil
		}
	}
	return classify(StageOutcome, fmt.Errorf("%w: no outcome named %q for type %d", ErrOutcomeNotFound, a.Name, typeID))
}

// CreateActivityRecord builds the record from the resolved reference data and writes it.
type CreateActivityRecord struct {
	Writer       Writer
	OperatorStep *ResolveOperator
	TypeStep     *FindActivityType
	OutcomeStep  *FindActivityOutcome
	ContactID    ID
	Note         string
	Settings     Settings
	Now          func() time.Time
	Logger       *slog.Logger

	Record    Record
	CreatedID ID
}

func (a *CreateActivityRecord) Init() error {
	if a.Writer == nil {
		return errors.New("writer is required")
	}
	if a.OperatorStep == nil || a.TypeStep == nil || a.OutcomeStep == nil {
		return errors.New("operator, type and outcome steps are required")
	}
	if a.Now == nil {
		a.Now = time.Now
	}
	return nil
}

func (a *CreateActivityRecord) Execute(ctx context.Context) error {
	start, end := a.Settings.StartDate, a.Settings.EndDate
	if start.IsZero() {
		start = a.Now()
	}
	if end.IsZero() {
		end = start
	}

	a.Record = Record{
		Title:                  a.Settings.Title,
		Notes:                  a.Note,
		TargetableType:         a.Settings.TargetableType,
		TargetableID:           a.ContactID,
		StartDate:              start,
		EndDate:                end,
		OwnerID:                a.OperatorStep.Operator.ID,
		SalesActivityTypeID:    a.TypeStep.Type.ID,
		SalesActivityOutcomeID: a.OutcomeStep.Outcome.ID,
	}

	a.Logger.Debug("writing sales activity", "owner_id", int64(a.Record.OwnerID),
		"type_id", int64(a.Record.SalesActivityTypeID), "outcome_id", int64(a.Record.SalesActivityOutcomeID))
	id, err := a.Writer.CreateActivity(ctx, a.Record)
	if err != nil {
		return classify(StageWrite, fmt.Errorf("creating sales activity: %w", err))
	}
	a.CreatedID = id
	return nil
}
