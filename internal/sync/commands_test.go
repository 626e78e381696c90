package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

func TestCommands_Validate(t *testing.T) {
	cases := map[string]Command{
		"blank role":         AddRequirement{Requirement: models.Requirement{RoleName: "  "}},
		"file without name":  AddRequirement{Requirement: models.Requirement{RoleName: "SRE", JobDescriptionFile: []byte("x")}},
		"edit blank role":    EditRequirement{Ref: models.At(0)},
		"no requirement ref": DeleteRequirement{Ref: models.ItemRef{Index: models.NoIndex}},
		"blank candidate":    AddCandidate{Requirement: models.At(0), Candidate: models.Candidate{CandidateName: " "}},
		"no candidate ref":   DeleteCandidate{Requirement: models.At(0), Candidate: models.ItemRef{Index: models.NoIndex}},
		"blank applicant":    AddApplication{Requirement: models.At(0)},
		"blank client name":  SetClientFields{Fields: models.ClientFields{ClientName: " "}},
		"others w/o detail":  SetClientFields{Fields: models.ClientFields{ClientName: "x", EngagementType: models.EngagementOthers}},
	}
	for name, cmd := range cases {
		assert.ErrorIs(t, cmd.Validate(), models.ErrValidation, name)
	}
}

func TestApply_ValidationFailureLeavesCopyUnchanged(t *testing.T) {
	wc := NewWorkingCopy(nil, models.ClientRecord{ID: "c1", ClientName: "Globex", Revision: 1})
	before := wc.Snapshot()
	_, err := wc.Apply(AddRequirement{})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, before, wc.Snapshot())
}

func TestEditRequirement_KeepsNestedAndFile(t *testing.T) {
	wc := NewWorkingCopy(nil, models.ClientRecord{ID: "c1", ClientName: "Globex", Revision: 1})
	ref, err := wc.Apply(AddRequirement{Requirement: models.Requirement{
		RoleName: "SRE", JobDescriptionFileName: "jd.pdf", JobDescriptionFile: []byte("%PDF"),
	}})
	require.NoError(t, err)
	_, err = wc.Apply(AddCandidate{Requirement: ref, Candidate: models.Candidate{CandidateName: "Ann"}})
	require.NoError(t, err)
	_, err = wc.Apply(AddApplication{Requirement: ref, Application: models.Application{Name: "Ann"}})
	require.NoError(t, err)

	_, err = wc.Apply(EditRequirement{Ref: ref, Requirement: models.Requirement{RoleName: "Senior SRE", Notes: " remote "}})
	require.NoError(t, err)

	r := wc.Snapshot().Requirements[0]
	assert.Equal(t, "Senior SRE", r.RoleName)
	assert.Equal(t, "remote", r.Notes)
	assert.Equal(t, ref.Key, r.Key)
	assert.Equal(t, "jd.pdf", r.JobDescriptionFileName)
	assert.Equal(t, []byte("%PDF"), r.JobDescriptionFile)
	assert.Len(t, r.Candidates, 1)
	assert.Len(t, r.Applications, 1)

	_, err = wc.Apply(ClearJobDescription{Ref: ref})
	require.NoError(t, err)
	r = wc.Snapshot().Requirements[0]
	assert.Empty(t, r.JobDescriptionFileName)
	assert.Empty(t, r.JobDescriptionFile)
}

func TestCandidateAndApplicationCommands(t *testing.T) {
	wc := NewWorkingCopy(nil, models.ClientRecord{ID: "c1", ClientName: "Globex", Revision: 1})
	req, err := wc.Apply(AddRequirement{Requirement: models.Requirement{RoleName: "SRE"}})
	require.NoError(t, err)

	var cands []models.ItemRef
	for _, n := range []string{"Ann", "Bob", "Cid"} {
		ref, err := wc.Apply(AddCandidate{Requirement: req, Candidate: models.Candidate{CandidateName: n}})
		require.NoError(t, err)
		cands = append(cands, ref)
	}
	_, err = wc.Apply(DeleteCandidate{Requirement: req, Candidate: cands[0]})
	require.NoError(t, err)
	_, err = wc.Apply(DeleteCandidate{Requirement: req, Candidate: cands[2]})
	require.NoError(t, err)
	r := wc.Snapshot().Requirements[0]
	require.Len(t, r.Candidates, 1)
	assert.Equal(t, "Bob", r.Candidates[0].CandidateName)

	app, err := wc.Apply(AddApplication{Requirement: req, Application: models.Application{Name: "Bob", Round1: "pass"}})
	require.NoError(t, err)
	_, err = wc.Apply(DeleteApplication{Requirement: req, Application: app})
	require.NoError(t, err)
	assert.Empty(t, wc.Snapshot().Requirements[0].Applications)

	_, err = wc.Apply(ReplaceApplications{Requirement: models.At(0), Applications: []models.Application{{Name: "X"}, {Name: "Y"}}})
	require.NoError(t, err)
	apps := wc.Snapshot().Requirements[0].Applications
	require.Len(t, apps, 2)
	assert.NotEmpty(t, apps[1].Key)

	_, err = wc.Apply(AddCandidate{Requirement: models.At(4), Candidate: models.Candidate{CandidateName: "Zed"}})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetClientFields_KeepsPartnerAndRequirements(t *testing.T) {
	wc := NewWorkingCopy(nil, models.ClientRecord{ID: "c1", PartnerName: "Acme", ClientName: "Globex", Revision: 1})
	_, err := wc.Apply(AddRequirement{Requirement: models.Requirement{RoleName: "SRE"}})
	require.NoError(t, err)

	_, err = wc.Apply(SetClientFields{Fields: models.ClientFields{ClientName: " Initech ", EngagementType: "T&M", EngagementOther: "x"}})
	require.NoError(t, err)

	snap := wc.Snapshot()
	assert.Equal(t, "Initech", snap.ClientName)
	assert.Empty(t, snap.EngagementOther)
	assert.Equal(t, "Acme", snap.PartnerName)
	assert.Len(t, snap.Requirements, 1)
}
