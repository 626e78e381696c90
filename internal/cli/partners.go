package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

func newPartnersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partners",
		Short: "List or add partners",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List partners by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := opts.api().ListPartners(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd, opts, list, func(w io.Writer) {
				fmt.Fprintln(w, "NAME\tID")
				for _, p := range list {
					fmt.Fprintf(w, "%s\t%s\n", p.Name, dash(p.ID))
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a partner, or return the existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, created, err := opts.api().ResolvePartner(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data := struct {
				Partner models.Partner `json:"partner"`
				Created bool           `json:"created"`
			}{p, created}
			return emit(cmd, opts, data, func(w io.Writer) {
				if created {
					fmt.Fprintf(w, "created partner %s\t%s\n", p.Name, p.ID)
					return
				}
				fmt.Fprintf(w, "partner %s exists\t%s\n", p.Name, p.ID)
			})
		},
	})

	return cmd
}
