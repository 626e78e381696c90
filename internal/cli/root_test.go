package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/pipeline-crm/internal/models"
	crmsync "github.com/Werneck0live/pipeline-crm/internal/sync"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "crmctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	paths := [][]string{
		{"partners", "list"}, {"partners", "add"},
		{"clients", "list"}, {"clients", "show"}, {"clients", "add"}, {"clients", "set"}, {"clients", "delete"},
		{"requirements", "list"}, {"requirements", "add"}, {"requirements", "edit"}, {"requirements", "delete"}, {"requirements", "clear-jd"},
		{"candidates", "list"}, {"candidates", "add"}, {"candidates", "delete"},
		{"applications", "list"}, {"applications", "add"}, {"applications", "delete"}, {"applications", "save"},
		{"watch"},
	}
	for _, p := range paths {
		sub, _, err := cmd.Find(p)
		require.NoError(t, err, "command %v should exist", p)
		assert.Equal(t, p[len(p)-1], sub.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Setenv("CRM_PARTNER", "Mondo")
	t.Setenv("CRM_API_URL", "http://crm:3000/api")
	cmd := NewRootCommand()

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	partner := cmd.PersistentFlags().Lookup("partner")
	require.NotNil(t, partner)
	assert.Equal(t, "p", partner.Shorthand)
	assert.Equal(t, "Mondo", partner.DefValue)

	api := cmd.PersistentFlags().Lookup("api")
	require.NotNil(t, api)
	assert.Equal(t, "http://crm:3000/api", api.DefValue)

	unconditional := cmd.PersistentFlags().Lookup("unconditional")
	require.NotNil(t, unconditional)
	assert.Equal(t, "false", unconditional.DefValue)
}

func TestClientSelectorFlags(t *testing.T) {
	cmd := NewRootCommand()
	set, _, err := cmd.Find([]string{"clients", "set"})
	require.NoError(t, err)

	client := set.Flags().Lookup("client")
	require.NotNil(t, client)
	assert.Equal(t, "c", client.Shorthand)
	assert.Equal(t, "-1", client.DefValue)
	assert.NotNil(t, set.Flags().Lookup("client-id"))
	assert.NotNil(t, set.Flags().Lookup("engagement-other"))
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"explicit", NewExitError(ExitCommandError, "bad"), ExitCommandError},
		{"conflict", &models.ConflictError{ExpectedRevision: 1, CurrentRevision: 2}, ExitConflict},
		{"stale edit", crmsync.ErrStaleEdit, ExitConflict},
		{"not found", models.NotFound("client", "x"), ExitNotFound},
		{"stale position", crmsync.ErrStalePosition, ExitNotFound},
		{"validation", models.Invalid("client", "is required"), ExitCommandError},
		{"transport", &models.TransportError{Op: "GET /clients", Err: errors.New("refused")}, ExitTransport},
		{"other", errors.New("boom"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}
