package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Werneck0live/pipeline-crm/internal/broker"
	crmsync "github.com/Werneck0live/pipeline-crm/internal/sync"
)

func newWatchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the partner's change feed",
		Long: `Load the partner's clients, then print every change event from the ws
server together with whether it made the local copy stale. Runs until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			w := crmsync.NewWatcher(opts.WSURL, s)
			w.OnEvent = func(e broker.Event) {
				stale := false
				if wc, ok := s.Lookup(e.ClientID); ok {
					stale = wc.Stale()
				}
				if opts.Format == "json" {
					_ = enc.Encode(struct {
						broker.Event
						Stale     bool `json:"stale"`
						ListStale bool `json:"listStale"`
					}{e, stale, s.ListStale()})
					return
				}
				fmt.Fprintf(out, "%s\t%s\t%s\trev %d\tstale=%t list-stale=%t\n",
					e.At.Format("15:04:05"), e.Action, e.ClientID, e.Revision, stale, s.ListStale())
			}
			return w.Run(cmd.Context())
		},
	}
}
