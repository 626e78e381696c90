package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Werneck0live/pipeline-crm/internal/models"
	crmsync "github.com/Werneck0live/pipeline-crm/internal/sync"
)

func newApplicationsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "Track a requirement's interview applications",
	}
	cmd.AddCommand(newApplicationsListCommand(opts))
	cmd.AddCommand(newApplicationsAddCommand(opts))
	cmd.AddCommand(newApplicationsDeleteCommand(opts))
	cmd.AddCommand(newApplicationsSaveCommand(opts))
	return cmd
}

func newApplicationsListCommand(opts *RootOptions) *cobra.Command {
	var (
		sel clientSelector
		req string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a requirement's applications as stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, api, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			wc, _, err := sel.open(s)
			if err != nil {
				return err
			}
			list, err := api.ListApplications(cmd.Context(), s.Partner(), wc.ID(), models.ParseItemRef(req))
			if err != nil {
				return err
			}
			if list == nil {
				list = []models.Application{}
			}
			return emit(cmd, opts, list, func(w io.Writer) {
				fmt.Fprintln(w, "#\tNAME\tDATE\tR1\tR2\tR3\tR4\tFINAL\tKEY")
				for i, a := range list {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", i, a.Name, dash(a.Date),
						dash(a.Round1), dash(a.Round2), dash(a.Round3), dash(a.Round4), dash(a.FinalOutcome), a.Key)
				}
			})
		},
	}
	sel.bind(cmd)
	requirementFlag(cmd, &req)
	return cmd
}

func newApplicationsAddCommand(opts *RootOptions) *cobra.Command {
	var (
		sel clientSelector
		req string
		app models.Application
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an application to a requirement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commitOne(cmd, opts, &sel, crmsync.AddApplication{Requirement: models.ParseItemRef(req), Application: app})
		},
	}
	sel.bind(cmd)
	requirementFlag(cmd, &req)
	bindStrings(cmd, &app, applicationFlags)
	return cmd
}

func newApplicationsDeleteCommand(opts *RootOptions) *cobra.Command {
	var (
		sel clientSelector
		req string
	)
	cmd := &cobra.Command{
		Use:   "delete <application>",
		Short: "Remove an application by position or key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commitOne(cmd, opts, &sel, crmsync.DeleteApplication{
				Requirement: models.ParseItemRef(req),
				Application: models.ParseItemRef(args[0]),
			})
		},
	}
	sel.bind(cmd)
	requirementFlag(cmd, &req)
	return cmd
}

func newApplicationsSaveCommand(opts *RootOptions) *cobra.Command {
	var (
		sel  clientSelector
		req  string
		file string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Replace a requirement's applications with a JSON array",
		Long: `Replace a requirement's whole application list with the JSON array read
from --file ("-" reads stdin). The write is checked against the revision
the client was loaded at unless --unconditional is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apps, err := readApplications(cmd, file)
			if err != nil {
				return err
			}
			s, api, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			wc, ref, err := sel.open(s)
			if err != nil {
				return err
			}
			var expected *int64
			if !s.Unconditional() {
				rev := wc.Revision()
				expected = &rev
			}
			rev, err := api.SaveApplications(cmd.Context(), s.Partner(), wc.ID(), models.ParseItemRef(req), apps, expected)
			if err != nil {
				return err
			}
			out := committed{Client: ref, Revision: rev}
			return emit(cmd, opts, out, func(w io.Writer) {
				fmt.Fprintf(w, "saved %d applications\trev %d\n", len(apps), rev)
			})
		},
	}
	sel.bind(cmd)
	requirementFlag(cmd, &req)
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON array of applications")
	return cmd
}

func readApplications(cmd *cobra.Command, file string) ([]models.Application, error) {
	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "open applications", err)
		}
		defer f.Close()
		r = f
	}
	var apps []models.Application
	if err := json.NewDecoder(r).Decode(&apps); err != nil {
		return nil, WrapExitError(ExitCommandError, "decode applications", err)
	}
	return apps, nil
}
