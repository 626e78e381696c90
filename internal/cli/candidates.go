package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Werneck0live/pipeline-crm/internal/models"
	crmsync "github.com/Werneck0live/pipeline-crm/internal/sync"
)

// requirementFlag is the --req flag of the candidate and application
// commands.
func requirementFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "req", "r", "", "requirement position or key")
	_ = cmd.MarkFlagRequired("req")
}

func newCandidatesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Work with a requirement's candidates",
	}
	cmd.AddCommand(newCandidatesListCommand(opts))
	cmd.AddCommand(newCandidatesAddCommand(opts))
	cmd.AddCommand(newCandidatesDeleteCommand(opts))
	return cmd
}

func newCandidatesListCommand(opts *RootOptions) *cobra.Command {
	var (
		sel clientSelector
		req string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a requirement's candidates",
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
			r, _, err := rec.Requirement(models.ParseItemRef(req))
			if err != nil {
				return err
			}
			list := r.Candidates
			return emit(cmd, opts, list, func(w io.Writer) {
				fmt.Fprintln(w, "#\tNAME\tPOSITION\tEXPERIENCE\tEXPECTED\tHOURLY\tKEY")
				for i, c := range list {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", i, c.CandidateName, dash(c.Position), dash(c.YearsOfExp), dash(c.ExpectedSalary), dash(c.HourlyRate), c.Key)
				}
			})
		},
	}
	sel.bind(cmd)
	requirementFlag(cmd, &req)
	return cmd
}

func newCandidatesAddCommand(opts *RootOptions) *cobra.Command {
	var (
		sel  clientSelector
		req  string
		cand models.Candidate
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a candidate to a requirement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commitOne(cmd, opts, &sel, crmsync.AddCandidate{Requirement: models.ParseItemRef(req), Candidate: cand})
		},
	}
	sel.bind(cmd)
	requirementFlag(cmd, &req)
	bindStrings(cmd, &cand, candidateFlags)
	return cmd
}

func newCandidatesDeleteCommand(opts *RootOptions) *cobra.Command {
	var (
		sel clientSelector
		req string
	)
	cmd := &cobra.Command{
		Use:   "delete <candidate>",
		Short: "Remove a candidate by position or key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commitOne(cmd, opts, &sel, crmsync.DeleteCandidate{
				Requirement: models.ParseItemRef(req),
				Candidate:   models.ParseItemRef(args[0]),
			})
		},
	}
	sel.bind(cmd)
	requirementFlag(cmd, &req)
	return cmd
}
