package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Werneck0live/pipeline-crm/internal/apiclient"
	"github.com/Werneck0live/pipeline-crm/internal/config"
	crmsync "github.com/Werneck0live/pipeline-crm/internal/sync"
)

// RootOptions holds global flags for all commands. Defaults come from the
// CRM_* environment.
type RootOptions struct {
	Format        string // "json" | "text"
	Verbose       bool
	APIURL        string
	WSURL         string
	Partner       string
	Unconditional bool
	Timeout       time.Duration
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the crmctl root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cfg := config.LoadCLIConfig()

	cmd := &cobra.Command{
		Use:   "crmctl",
		Short: "crmctl - recruitment pipeline CRM client",
		Long: `Edit a partner's recruitment pipeline against a running CRM API.

Clients are addressed by their position in the partner's list (0 is the
newest) or by id. Nested items take a position or a key.`,
		SilenceUsage:  true,
		SilenceErrors: true, // Execute renders errors in the selected format
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			level := cfg.LogLevel
			if opts.Verbose {
				level = slog.LevelDebug
			}
			config.InitLoggerTo(cmd.ErrOrStderr(), level)
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logs on stderr")
	pf.StringVar(&opts.APIURL, "api", cfg.APIURL, "CRM API base URL")
	pf.StringVar(&opts.WSURL, "ws", cfg.WSURL, "change feed websocket URL")
	pf.StringVarP(&opts.Partner, "partner", "p", cfg.Partner, "partner name")
	pf.BoolVar(&opts.Unconditional, "unconditional", cfg.Unconditional, "skip the revision check on writes (last writer wins)")
	pf.DurationVar(&opts.Timeout, "timeout", cfg.HTTPTimeout, "HTTP timeout per request")

	cmd.AddCommand(newPartnersCommand(opts))
	cmd.AddCommand(newClientsCommand(opts))
	cmd.AddCommand(newRequirementsCommand(opts))
	cmd.AddCommand(newCandidatesCommand(opts))
	cmd.AddCommand(newApplicationsCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))

	return cmd
}

// Execute runs crmctl with args and returns the process exit code. Errors
// are written to stdout as a JSON envelope with --format json and to
// stderr otherwise.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	f := &OutputFormatter{Format: opts.Format, Writer: stdout}
	if opts.Format != "json" {
		f.Writer = stderr
	}
	_ = f.Error(errorCode(err), err.Error(), errorDetails(err))
	return GetExitCode(err)
}

func (o *RootOptions) api() *apiclient.Client {
	return apiclient.New(o.APIURL, o.Timeout)
}

func (o *RootOptions) partner() (string, error) {
	p := strings.TrimSpace(o.Partner)
	if p == "" {
		return "", NewExitError(ExitCommandError, "a partner is required (--partner or CRM_PARTNER)")
	}
	return p, nil
}

// session loads the partner's clients through the API.
func (o *RootOptions) session(ctx context.Context) (*crmsync.Session, *apiclient.Client, error) {
	p, err := o.partner()
	if err != nil {
		return nil, nil, err
	}
	api := o.api()
	s := crmsync.NewSession(api, p)
	s.SetUnconditional(o.Unconditional)
	if _, err := s.Load(ctx); err != nil {
		return nil, nil, err
	}
	return s, api, nil
}

// clientSelector is the --client / --client-id pair shared by every
// command that works on one client.
type clientSelector struct {
	pos int
	id  string
}

func (c *clientSelector) bind(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&c.pos, "client", "c", -1, "client position in the partner's list (0 is newest)")
	cmd.Flags().StringVar(&c.id, "client-id", "", "client id (wins over --client)")
}

func (c *clientSelector) open(s *crmsync.Session) (*crmsync.WorkingCopy, crmsync.ClientRef, error) {
	if c.id == "" && c.pos < 0 {
		return nil, crmsync.ClientRef{}, NewExitError(ExitCommandError, "select a client with --client or --client-id")
	}
	return s.Resolve(crmsync.ClientRef{Position: c.pos, ID: c.id})
}
