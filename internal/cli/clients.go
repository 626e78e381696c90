package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Werneck0live/pipeline-crm/internal/models"
	crmsync "github.com/Werneck0live/pipeline-crm/internal/sync"
)

type clientRow struct {
	Position     int    `json:"position"`
	ID           string `json:"id"`
	Client       string `json:"client"`
	Status       string `json:"status"`
	Requirements int    `json:"requirements"`
	Revision     int64  `json:"revision"`
}

type committed struct {
	Client   crmsync.ClientRef `json:"client"`
	Revision int64             `json:"revision"`
	Ref      *models.ItemRef   `json:"ref,omitempty"`
}

func newClientsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Work with a partner's clients",
	}
	cmd.AddCommand(newClientsListCommand(opts))
	cmd.AddCommand(newClientsShowCommand(opts))
	cmd.AddCommand(newClientsAddCommand(opts))
	cmd.AddCommand(newClientsSetCommand(opts))
	cmd.AddCommand(newClientsDeleteCommand(opts))
	return cmd
}

func newClientsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the partner's clients, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([]clientRow, 0, s.Len())
			for i, wc := range s.Copies() {
				rec := wc.Snapshot()
				rows = append(rows, clientRow{
					Position: i, ID: rec.ID, Client: rec.ClientName, Status: rec.Status,
					Requirements: len(rec.Requirements), Revision: rec.Revision,
				})
			}
			return emit(cmd, opts, rows, func(w io.Writer) {
				fmt.Fprintln(w, "#\tCLIENT\tSTATUS\tREQS\tREV\tID")
				for _, r := range rows {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n", r.Position, r.Client, dash(r.Status), r.Requirements, r.Revision, r.ID)
				}
			})
		},
	}
}

func newClientsShowCommand(opts *RootOptions) *cobra.Command {
	var sel clientSelector
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one client record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			wc, _, err := sel.open(s)
			if err != nil {
				return err
			}
			rec := wc.Snapshot()
			return emit(cmd, opts, rec, func(w io.Writer) {
				fmt.Fprintf(w, "id\t%s\n", rec.ID)
				fmt.Fprintf(w, "partner\t%s\n", rec.PartnerName)
				fmt.Fprintf(w, "client\t%s\n", rec.ClientName)
				fmt.Fprintf(w, "start date\t%s\n", dash(rec.StartDate))
				fmt.Fprintf(w, "spoc\t%s\n", dash(rec.SPOC))
				fmt.Fprintf(w, "location\t%s\n", dash(rec.Location))
				fmt.Fprintf(w, "roles\t%s\n", dash(rec.Roles))
				engagement := rec.EngagementType
				if rec.EngagementOther != "" {
					engagement += " (" + rec.EngagementOther + ")"
				}
				fmt.Fprintf(w, "engagement\t%s\n", dash(engagement))
				fmt.Fprintf(w, "current status\t%s\n", dash(rec.CurrentStatus))
				fmt.Fprintf(w, "status\t%s\n", dash(rec.Status))
				fmt.Fprintf(w, "next steps\t%s\n", dash(rec.NextSteps))
				fmt.Fprintf(w, "details\t%s\n", dash(rec.Details))
				fmt.Fprintf(w, "requirements\t%d\n", len(rec.Requirements))
				fmt.Fprintf(w, "revision\t%d\n", rec.Revision)
			})
		},
	}
	sel.bind(cmd)
	return cmd
}

func newClientsAddCommand(opts *RootOptions) *cobra.Command {
	var f models.ClientFields
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a client for the partner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.partner()
			if err != nil {
				return err
			}
			rec, err := opts.api().Create(cmd.Context(), p, f)
			if err != nil {
				return err
			}
			return emit(cmd, opts, rec, func(w io.Writer) {
				fmt.Fprintf(w, "created client %s\t%s\trev %d\n", rec.ClientName, rec.ID, rec.Revision)
			})
		},
	}
	bindStrings(cmd, &f, clientFlags)
	return cmd
}

func newClientsSetCommand(opts *RootOptions) *cobra.Command {
	var (
		sel clientSelector
		f   models.ClientFields
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change client fields; fields without a flag keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			wc, ref, err := sel.open(s)
			if err != nil {
				return err
			}
			snap := wc.Snapshot()
			next := snap.Fields()
			if overlay(cmd, f, &next, clientFlags) == 0 {
				return NewExitError(ExitCommandError, "nothing to change")
			}
			if _, err := wc.ApplyAndCommit(cmd.Context(), crmsync.SetClientFields{Fields: next}); err != nil {
				return err
			}
			return emitCommitted(cmd, opts, wc, ref, nil)
		},
	}
	sel.bind(cmd)
	bindStrings(cmd, &f, clientFlags)
	return cmd
}

func newClientsDeleteCommand(opts *RootOptions) *cobra.Command {
	var sel clientSelector
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a client and everything under it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, api, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			wc, ref, err := sel.open(s)
			if err != nil {
				return err
			}
			if err := api.Delete(cmd.Context(), wc.ID()); err != nil {
				return err
			}
			return emit(cmd, opts, ref, func(w io.Writer) {
				fmt.Fprintf(w, "deleted client %s\n", ref.ID)
			})
		},
	}
	sel.bind(cmd)
	return cmd
}

func emitCommitted(cmd *cobra.Command, opts *RootOptions, wc *crmsync.WorkingCopy, ref crmsync.ClientRef, item *models.ItemRef) error {
	out := committed{Client: ref, Revision: wc.Revision(), Ref: item}
	return emit(cmd, opts, out, func(w io.Writer) {
		if item != nil {
			fmt.Fprintf(w, "saved %s\titem %s\trev %d\n", ref.ID, item.String(), out.Revision)
			return
		}
		fmt.Fprintf(w, "saved %s\trev %d\n", ref.ID, out.Revision)
	})
}
