package apiclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/pipeline-crm/internal/handlers"
	"github.com/Werneck0live/pipeline-crm/internal/models"
	"github.com/Werneck0live/pipeline-crm/internal/repository"
	crmsync "github.com/Werneck0live/pipeline-crm/internal/sync"
)

func newAPI(t *testing.T) (*Client, *repository.Memory) {
	t.Helper()
	mem := repository.NewMemory()
	h := handlers.New(mem, mem, nil)
	h.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", 5*time.Second), mem
}

func TestClient_PartnersAndClients(t *testing.T) {
	ctx := context.Background()
	c, _ := newAPI(t)

	require.NoError(t, c.Health(ctx))

	p, created, err := c.ResolvePartner(ctx, "Arc Light")
	require.NoError(t, err)
	assert.True(t, created)
	again, created, err := c.ResolvePartner(ctx, "Arc Light")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)

	_, _, err = c.ResolvePartner(ctx, " ")
	assert.ErrorIs(t, err, models.ErrValidation)

	rec, err := c.Create(ctx, "Arc Light", models.ClientFields{ClientName: "Globex"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rec.Revision)

	list, err := c.ListForPartner(ctx, "Arc Light")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rec.ID, list[0].ID)

	partners, err := c.ListPartners(ctx)
	require.NoError(t, err)
	require.Len(t, partners, 1)

	_, err = c.Create(ctx, "Arc Light", models.ClientFields{})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "client", ve.Field)

	require.NoError(t, c.Delete(ctx, rec.ID))
	assert.ErrorIs(t, c.Delete(ctx, rec.ID), models.ErrNotFound)
}

func TestClient_ReplaceMapsConflict(t *testing.T) {
	ctx := context.Background()
	c, _ := newAPI(t)
	rec, err := c.Create(ctx, "Acme", models.ClientFields{ClientName: "Globex"})
	require.NoError(t, err)

	status := "won"
	rev := int64(1)
	got, err := c.Replace(ctx, rec.ID, models.ClientPatch{Status: &status, ExpectedRevision: &rev})
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Revision)

	_, err = c.Replace(ctx, rec.ID, models.ClientPatch{Status: &status, ExpectedRevision: &rev})
	var ce *models.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.EqualValues(t, 1, ce.ExpectedRevision)
	assert.EqualValues(t, 2, ce.CurrentRevision)

	_, err = c.Replace(ctx, "missing", models.ClientPatch{Status: &status})
	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)
}

func TestClient_Applications(t *testing.T) {
	ctx := context.Background()
	c, mem := newAPI(t)
	rec, err := c.Create(ctx, "Acme", models.ClientFields{ClientName: "Globex"})
	require.NoError(t, err)
	reqs := []models.Requirement{{RoleName: "SRE"}}
	stored, err := mem.Replace(ctx, rec.ID, models.ClientPatch{Requirements: &reqs})
	require.NoError(t, err)

	ref := models.ByKey(stored.Requirements[0].Key)
	rev, err := c.SaveApplications(ctx, "Acme", rec.ID, ref, []models.Application{{Name: "Ann"}}, &stored.Revision)
	require.NoError(t, err)
	assert.EqualValues(t, 3, rev)

	apps, err := c.ListApplications(ctx, "Acme", rec.ID, models.At(0))
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Ann", apps[0].Name)

	_, err = c.ListApplications(ctx, "Acme", rec.ID, models.At(3))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestClient_TransportErrors(t *testing.T) {
	ctx := context.Background()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}))
	defer down.Close()
	_, err := New(down.URL, time.Second).ListPartners(ctx)
	assert.ErrorIs(t, err, models.ErrTransport)

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	_, err = New(closed.URL, time.Second).ListPartners(ctx)
	assert.ErrorIs(t, err, models.ErrTransport)
}

// The engine runs unchanged over HTTP.
func TestClient_AsSyncStore(t *testing.T) {
	ctx := context.Background()
	c, _ := newAPI(t)
	_, err := c.Create(ctx, "Acme", models.ClientFields{ClientName: "Globex"})
	require.NoError(t, err)

	a := crmsync.NewSession(c, "Acme")
	b := crmsync.NewSession(c, "Acme")
	ca, err := a.Load(ctx)
	require.NoError(t, err)
	cb, err := b.Load(ctx)
	require.NoError(t, err)

	_, err = ca[0].ApplyAndCommit(ctx, crmsync.AddRequirement{Requirement: models.Requirement{RoleName: "SRE", JobDescriptionFileName: "jd.pdf", JobDescriptionFile: []byte("%PDF")}})
	require.NoError(t, err)

	_, err = cb[0].ApplyAndCommit(ctx, crmsync.SetClientFields{Fields: models.ClientFields{ClientName: "Globex", Status: "won"}})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = b.Load(ctx)
	require.NoError(t, err)
	snap := cb[0].Snapshot()
	require.Len(t, snap.Requirements, 1)
	assert.Equal(t, []byte("%PDF"), snap.Requirements[0].JobDescriptionFile)
}
