package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

func strp(s string) *string { return &s }
func revp(n int64) *int64 { return &n }

func TestMemory_GetOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p1, created1, err := m.GetOrCreate(ctx, "  Acme ")
	require.NoError(t, err)
	p2, created2, err := m.GetOrCreate(ctx, "Acme")
	require.NoError(t, err)

	assert.True(t, created1)
	assert.False(t, created2)
	assert.Equal(t, p1.ID, p2.ID)
	assert.Equal(t, "Acme", p2.Name)

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemory_GetOrCreateRejectsBlank(t *testing.T) {
	_, _, err := NewMemory().GetOrCreate(context.Background(), "   ")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestMemory_ListFallsBackToClientPartnerNames(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	// a record written without going through the directory
	m.clients["x"] = &memClient{rec: models.ClientRecord{ID: "x", PartnerName: "Acme"}}

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)
	assert.Empty(t, list[0].ID)
}

func TestMemory_ListSortedByName(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, n := range []string{"Mondo", "Addision", "Arc Light"} {
		_, _, err := m.GetOrCreate(ctx, n)
		require.NoError(t, err)
	}
	list, err := m.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, p := range list {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Addision", "Arc Light", "Mondo"}, names)
}

func TestMemory_CreateUpsertsPartnerAndListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first, err := m.Create(ctx, "Acme", models.ClientFields{ClientName: "First"})
	require.NoError(t, err)
	second, err := m.Create(ctx, "Acme", models.ClientFields{ClientName: "Second"})
	require.NoError(t, err)

	assert.EqualValues(t, 1, first.Revision)
	assert.NotNil(t, first.Requirements)
	assert.Empty(t, first.Requirements)

	list, err := m.ListForPartner(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	partners, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.NotEmpty(t, partners[0].ID)

	none, err := m.ListForPartner(ctx, "Acme ")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemory_CreateRequiresClientName(t *testing.T) {
	_, err := NewMemory().Create(context.Background(), "Acme", models.ClientFields{ClientName: "  "})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "client", ve.Field)
}

func TestMemory_ReplacePreservesOmittedFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c, err := m.Create(ctx, "Acme", models.ClientFields{ClientName: "Globex", Location: "Pune"})
	require.NoError(t, err)
	reqs := []models.Requirement{{RoleName: "Go dev"}}
	_, err = m.Replace(ctx, c.ID, models.ClientPatch{Requirements: &reqs})
	require.NoError(t, err)

	got, err := m.Replace(ctx, c.ID, models.ClientPatch{Status: strp("won")})
	require.NoError(t, err)

	assert.Equal(t, "won", got.Status)
	assert.Equal(t, "Pune", got.Location)
	require.Len(t, got.Requirements, 1)
	assert.NotEmpty(t, got.Requirements[0].Key)
	assert.EqualValues(t, 3, got.Revision)
}

func TestMemory_ReplaceRevisionMismatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c, err := m.Create(ctx, "Acme", models.ClientFields{ClientName: "Globex"})
	require.NoError(t, err)

	_, err = m.Replace(ctx, c.ID, models.ClientPatch{Status: strp("a"), ExpectedRevision: revp(1)})
	require.NoError(t, err)
	_, err = m.Replace(ctx, c.ID, models.ClientPatch{Status: strp("b"), ExpectedRevision: revp(1)})

	var ce *models.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.EqualValues(t, 1, ce.ExpectedRevision)
	assert.EqualValues(t, 2, ce.CurrentRevision)

	got, err := m.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Status)
}

func TestMemory_ReplaceAndDeleteUnknownID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.Replace(ctx, "nope", models.ClientPatch{Status: strp("x")})
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.True(t, errors.Is(m.Delete(ctx, "nope"), models.ErrNotFound))
}

func TestMemory_WholeRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c, err := m.Create(ctx, "Acme", models.ClientFields{ClientName: "Globex"})
	require.NoError(t, err)

	work := c.Clone()
	ref := work.AddRequirement(models.Requirement{RoleName: "SRE", JobDescriptionFile: []byte("%PDF-1.4")})
	r, _, err := work.Requirement(ref)
	require.NoError(t, err)
	r.AddCandidate(models.Candidate{CandidateName: "Ann", HourlyRate: "40"})
	r.AddCandidate(models.Candidate{CandidateName: "Bob"})
	r.AddApplication(models.Application{Name: "Ann", Round1: "pass"})
	work.AddRequirement(models.Requirement{RoleName: "QA"})

	saved, err := m.Replace(ctx, c.ID, models.FullPatch(work))
	require.NoError(t, err)

	list, err := m.ListForPartner(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, *saved, list[0])
	assert.Equal(t, work.Requirements, list[0].Requirements)
}

func TestMemory_SetApplications(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c, err := m.Create(ctx, "Acme", models.ClientFields{ClientName: "Globex"})
	require.NoError(t, err)
	reqs := []models.Requirement{{RoleName: "a"}, {RoleName: "b"}}
	c, err = m.Replace(ctx, c.ID, models.ClientPatch{Requirements: &reqs})
	require.NoError(t, err)

	got, err := m.SetApplications(ctx, c.ID, models.ByKey(c.Requirements[1].Key),
		[]models.Application{{Name: "Ann"}}, revp(c.Revision))
	require.NoError(t, err)
	require.Len(t, got.Requirements[1].Applications, 1)
	assert.NotEmpty(t, got.Requirements[1].Applications[0].Key)
	assert.Empty(t, got.Requirements[0].Applications)

	_, err = m.SetApplications(ctx, c.ID, models.At(5), nil, nil)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = m.SetApplications(ctx, c.ID, models.At(0), nil, revp(c.Revision))
	assert.True(t, errors.Is(err, models.ErrConflict))
}

func TestMemory_KeylessRecordGetsStableKeys(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.clients["x"] = &memClient{rec: models.ClientRecord{ID: "x", PartnerName: "Acme", Revision: 1,
		Requirements: []models.Requirement{{RoleName: "SRE"}, {RoleName: "QA"}}}}

	first, err := m.GetByID(ctx, "x")
	require.NoError(t, err)
	second, err := m.GetByID(ctx, "x")
	require.NoError(t, err)
	require.NotEmpty(t, first.Requirements[1].Key)
	assert.Equal(t, first.Requirements, second.Requirements)

	list, err := m.ListForPartner(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.Requirements, list[0].Requirements)

	got, err := m.SetApplications(ctx, "x", models.ByKey(first.Requirements[1].Key),
		[]models.Application{{Name: "Ann"}}, revp(1))
	require.NoError(t, err)
	assert.Len(t, got.Requirements[1].Applications, 1)
	assert.Empty(t, got.Requirements[0].Applications)
}

func TestMemory_StaleRenameLeavesDirectory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c, err := m.Create(ctx, "Acme", models.ClientFields{ClientName: "Globex"})
	require.NoError(t, err)

	_, err = m.Replace(ctx, c.ID, models.ClientPatch{PartnerName: strp("Initech"), ExpectedRevision: revp(7)})
	assert.ErrorIs(t, err, models.ErrConflict)

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)
}
