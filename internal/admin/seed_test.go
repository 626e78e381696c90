package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/pipeline-crm/internal/models"
	"github.com/Werneck0live/pipeline-crm/internal/repository"
)

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSeedPartners_Idempotent(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemory()

	n, err := SeedPartners(ctx, mem, quietLog())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = SeedPartners(ctx, mem, quietLog())
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := mem.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, p := range list {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Addision", "Arc Light", "Mondo"}, names)
}

type failingDir struct{}

func (failingDir) GetOrCreate(context.Context, string) (models.Partner, bool, error) {
	return models.Partner{}, false, &models.TransportError{Op: "insert partner", Err: errors.New("down")}
}

func TestSeedPartners_StopsOnStoreError(t *testing.T) {
	n, err := SeedPartners(context.Background(), failingDir{}, quietLog())
	assert.Zero(t, n)
	assert.ErrorIs(t, err, models.ErrTransport)
}
