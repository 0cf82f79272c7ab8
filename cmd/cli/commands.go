package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomis52/gocti/clients/crmclient"
	"github.com/nomis52/gocti/phonecall"
	"github.com/nomis52/gocti/salesactivity"
)

type operatorInfo struct {
	ID     salesactivity.ID `json:"id"`
	Domain string           `json:"domain"`
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the operator activities are logged as",
		Args:  cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, s *session) error {
			op, err := s.components.Identity.CurrentOperator(cmd.Context())
			if err != nil {
				return fmt.Errorf("resolving operator: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), operatorInfo{ID: op.ID, Domain: s.cfg.CRM.Domain})
		}),
	}
}

type salesActivityResult struct {
	ID        salesactivity.ID `json:"id"`
	ContactID salesactivity.ID `json:"contact_id"`
}

func newSalesActivityCmd(opts *rootOptions) *cobra.Command {
	var (
		contactID int64
		note      string
	)
	cmd := &cobra.Command{
		Use:   "sales-activity",
		Short: "Log a phone sales activity against a contact",
		Example: `  gocti sales-activity --contact 16002341859 --note "Sample note for Tutorial"`,
		Args: cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, s *session) error {
			id, err := s.components.Activities.LogPhoneActivity(cmd.Context(), salesactivity.ID(contactID), note)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), salesActivityResult{ID: id, ContactID: salesactivity.ID(contactID)})
		}),
	}
	cmd.Flags().Int64Var(&contactID, "contact", 0, "CRM contact id")
	cmd.Flags().StringVar(&note, "note", "", "Activity notes")
	_ = cmd.MarkFlagRequired("contact")
	_ = cmd.MarkFlagRequired("note")
	return cmd
}

func newPhoneCallCmd(opts *rootOptions) *cobra.Command {
	var (
		contact   crmclient.Contact
		contactID int64
		direction string
		phone     string
		note      string
	)
	cmd := &cobra.Command{
		Use:   "phone-call",
		Short: "Log a phone call against a contact",
		Example: `  gocti phone-call --contact 16002341859 --phone 9876543210 --first-name John --last-name Doe --note "Sample note"`,
		Args: cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, s *session) error {
			call := phonecall.Call{PhoneNumber: phone}
			if direction != "" {
				d, err := crmclient.ParseCallDirection(direction)
				if err != nil {
					return err
				}
				call.Direction = d
			}
			contact.ID = crmclient.ID(contactID)

			id, err := s.components.Calls.LogCall(cmd.Context(), contact, call, note)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]crmclient.ID{"id": id})
		}),
	}
	cmd.Flags().Int64Var(&contactID, "contact", 0, "CRM contact id")
	cmd.Flags().StringVar(&contact.FirstName, "first-name", "", "Contact first name")
	cmd.Flags().StringVar(&contact.LastName, "last-name", "", "Contact last name")
	cmd.Flags().StringVar(&direction, "direction", "", "incoming or outgoing (default from phone_call.default_direction)")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number called")
	cmd.Flags().StringVar(&note, "note", "", "Call notes")
	_ = cmd.MarkFlagRequired("contact")
	return cmd
}

func newContactsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List, create and look up contacts",
	}

	var page int
	list := &cobra.Command{
		Use:   "list",
		Short: "List a page of contacts",
		Args:  cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, s *session) error {
			result, err := s.components.Contacts.List(cmd.Context(), page)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		}),
	}
	list.Flags().IntVar(&page, "page", 1, "Page number")

	filters := &cobra.Command{
		Use:   "filters",
		Short: "List saved contact views",
		Args:  cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, s *session) error {
			result, err := s.components.Contacts.Filters(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		}),
	}

	var lookupPhone string
	lookup := &cobra.Command{
		Use:   "lookup",
		Short: "Find contacts by mobile number",
		Args:  cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, s *session) error {
			result, err := s.components.Contacts.FindByPhone(cmd.Context(), lookupPhone)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		}),
	}
	lookup.Flags().StringVar(&lookupPhone, "phone", "", "Mobile number")
	_ = lookup.MarkFlagRequired("phone")

	var createPhone, firstName, lastName string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a contact for a phone number",
		Args:  cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, s *session) error {
			result, err := s.components.Contacts.Create(cmd.Context(), createPhone, firstName, lastName)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		}),
	}
	create.Flags().StringVar(&createPhone, "phone", "", "Mobile number")
	create.Flags().StringVar(&firstName, "first-name", "", "First name")
	create.Flags().StringVar(&lastName, "last-name", "", "Last name (defaults to the phone number)")
	_ = create.MarkFlagRequired("phone")

	cmd.AddCommand(list, filters, lookup, create)
	return cmd
}

func newReferenceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reference",
		Short: "Resolve the configured activity type and outcome without writing",
		Args:  cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, s *session) error {
			ref, err := s.components.Activities.CheckReferenceData(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ref)
		}),
	}
}
