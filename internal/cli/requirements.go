package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Werneck0live/pipeline-crm/internal/models"
	crmsync "github.com/Werneck0live/pipeline-crm/internal/sync"
)

type requirementRow struct {
	Position     int    `json:"position"`
	Key          string `json:"key"`
	Role         string `json:"roleName"`
	Openings     string `json:"numRequirements"`
	Candidates   int    `json:"candidates"`
	Applications int    `json:"applications"`
	JD           string `json:"jobDescriptionFileName,omitempty"`
}

func newRequirementsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requirements",
		Aliases: []string{"reqs"},
		Short:   "Work with a client's requirements",
	}
	cmd.AddCommand(newRequirementsListCommand(opts))
	cmd.AddCommand(newRequirementsAddCommand(opts))
	cmd.AddCommand(newRequirementsEditCommand(opts))
	cmd.AddCommand(newRequirementsDeleteCommand(opts))
	cmd.AddCommand(newRequirementsClearJDCommand(opts))
	return cmd
}

func newRequirementsListCommand(opts *RootOptions) *cobra.Command {
	var sel clientSelector
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's requirements",
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
			rows := make([]requirementRow, 0, len(rec.Requirements))
			for i, r := range rec.Requirements {
				rows = append(rows, requirementRow{
					Position: i, Key: r.Key, Role: r.RoleName, Openings: r.NumRequirements,
					Candidates: len(r.Candidates), Applications: len(r.Applications), JD: r.JobDescriptionFileName,
				})
			}
			return emit(cmd, opts, rows, func(w io.Writer) {
				fmt.Fprintln(w, "#\tROLE\tOPENINGS\tCANDIDATES\tAPPLICATIONS\tJD\tKEY")
				for _, r := range rows {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n", r.Position, r.Role, dash(r.Openings), r.Candidates, r.Applications, dash(r.JD), r.Key)
				}
			})
		},
	}
	sel.bind(cmd)
	return cmd
}

func newRequirementsAddCommand(opts *RootOptions) *cobra.Command {
	var (
		sel clientSelector
		req models.Requirement
		jd  string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a requirement to a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := attachJD(&req, jd); err != nil {
				return err
			}
			s, _, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			wc, ref, err := sel.open(s)
			if err != nil {
				return err
			}
			item, err := crmsync.NewRequirementEditor(wc).Save(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emitCommitted(cmd, opts, wc, ref, &item)
		},
	}
	sel.bind(cmd)
	bindStrings(cmd, &req, requirementFlags)
	cmd.Flags().StringVar(&jd, "jd", "", "job description file to attach")
	return cmd
}

func newRequirementsEditCommand(opts *RootOptions) *cobra.Command {
	var (
		sel clientSelector
		req models.Requirement
		jd  string
	)
	cmd := &cobra.Command{
		Use:   "edit <requirement>",
		Short: "Change requirement fields; candidates, applications and unflagged fields are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			wc, ref, err := sel.open(s)
			if err != nil {
				return err
			}
			snap := wc.Snapshot()
			_, pos, err := snap.Requirement(models.ParseItemRef(args[0]))
			if err != nil {
				return err
			}

			ed := crmsync.NewRequirementEditor(wc)
			next, err := ed.Begin(pos)
			if err != nil {
				return err
			}
			n := overlay(cmd, req, &next, requirementFlags)
			if jd != "" {
				if err := attachJD(&next, jd); err != nil {
					return err
				}
				n++
			}
			if n == 0 {
				ed.Cancel()
				return NewExitError(ExitCommandError, "nothing to change")
			}
			item, err := ed.Save(cmd.Context(), next)
			if err != nil {
				return err
			}
			return emitCommitted(cmd, opts, wc, ref, &item)
		},
	}
	sel.bind(cmd)
	bindStrings(cmd, &req, requirementFlags)
	cmd.Flags().StringVar(&jd, "jd", "", "replace the job description with this file")
	return cmd
}

func newRequirementsDeleteCommand(opts *RootOptions) *cobra.Command {
	var sel clientSelector
	cmd := &cobra.Command{
		Use:   "delete <requirement>",
		Short: "Delete a requirement; later ones move up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commitOne(cmd, opts, &sel, crmsync.DeleteRequirement{Ref: models.ParseItemRef(args[0])})
		},
	}
	sel.bind(cmd)
	return cmd
}

func newRequirementsClearJDCommand(opts *RootOptions) *cobra.Command {
	var sel clientSelector
	cmd := &cobra.Command{
		Use:   "clear-jd <requirement>",
		Short: "Remove a requirement's job description file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commitOne(cmd, opts, &sel, crmsync.ClearJobDescription{Ref: models.ParseItemRef(args[0])})
		},
	}
	sel.bind(cmd)
	return cmd
}

// commitOne loads the session, applies cmd to the selected client and
// writes it back.
func commitOne(cmd *cobra.Command, opts *RootOptions, sel *clientSelector, c crmsync.Command) error {
	s, _, err := opts.session(cmd.Context())
	if err != nil {
		return err
	}
	wc, ref, err := sel.open(s)
	if err != nil {
		return err
	}
	refs, err := wc.ApplyAndCommit(cmd.Context(), c)
	if err != nil {
		return err
	}
	var item *models.ItemRef
	if len(refs) == 1 && refs[0].Index != models.NoIndex {
		item = &refs[0]
	}
	return emitCommitted(cmd, opts, wc, ref, item)
}
