package sync

import (
	"strings"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

// Command is one validated change to a client record. Commands are plain
// values; a WorkingCopy runs them.
type Command interface {
	Validate() error
	apply(c *models.ClientRecord) (models.ItemRef, error)
}

var none = models.ItemRef{Index: models.NoIndex}

// SetClientFields overwrites the client's scalar fields. Partner and
// requirements are untouched.
type SetClientFields struct {
	Fields models.ClientFields
}

func (s SetClientFields) Validate() error {
	f := s.Fields
	f.Normalize()
	return f.Validate()
}

func (s SetClientFields) apply(c *models.ClientRecord) (models.ItemRef, error) {
	f := s.Fields
	f.Normalize()
	c.StartDate = f.StartDate
	c.ClientName = f.ClientName
	c.SPOC = f.SPOC
	c.Location = f.Location
	c.Roles = f.Roles
	c.EngagementType = f.EngagementType
	c.EngagementOther = f.EngagementOther
	c.CurrentStatus = f.CurrentStatus
	c.Status = f.Status
	c.NextSteps = f.NextSteps
	c.Details = f.Details
	return none, nil
}

// AddRequirement appends a requirement. Its candidates and applications
// start empty unless supplied.
type AddRequirement struct {
	Requirement models.Requirement
}

func (a AddRequirement) Validate() error { return validateRequirement(a.Requirement) }

func (a AddRequirement) apply(c *models.ClientRecord) (models.ItemRef, error) {
	r := trimRequirement(a.Requirement)
	r.Key = ""
	return c.AddRequirement(r), nil
}

// EditRequirement replaces the editable fields of one requirement. Its
// key, candidates and applications are kept; the job description is kept
// unless a new file is supplied.
type EditRequirement struct {
	Ref         models.ItemRef
	Requirement models.Requirement
}

func (e EditRequirement) Validate() error { return validateRequirement(e.Requirement) }

func (e EditRequirement) apply(c *models.ClientRecord) (models.ItemRef, error) {
	cur, i, err := c.Requirement(e.Ref)
	if err != nil {
		return none, err
	}
	next := trimRequirement(e.Requirement)
	next.Key = cur.Key
	next.Candidates = cur.Candidates
	next.Applications = cur.Applications
	if len(next.JobDescriptionFile) == 0 {
		next.JobDescriptionFileName = cur.JobDescriptionFileName
		next.JobDescriptionFile = cur.JobDescriptionFile
	}
	*cur = next
	return models.ItemRef{Key: cur.Key, Index: i}, nil
}

// DeleteRequirement removes one requirement; later ones shift down.
type DeleteRequirement struct {
	Ref models.ItemRef
}

func (d DeleteRequirement) Validate() error { return validateRef("requirement", d.Ref) }

func (d DeleteRequirement) apply(c *models.ClientRecord) (models.ItemRef, error) {
	return none, c.RemoveRequirement(d.Ref)
}

type ClearJobDescription struct {
	Ref models.ItemRef
}

func (d ClearJobDescription) Validate() error { return validateRef("requirement", d.Ref) }

func (d ClearJobDescription) apply(c *models.ClientRecord) (models.ItemRef, error) {
	r, _, err := c.Requirement(d.Ref)
	if err != nil {
		return none, err
	}
	r.ClearJobDescription()
	return none, nil
}

type AddCandidate struct {
	Requirement models.ItemRef
	Candidate   models.Candidate
}

func (a AddCandidate) Validate() error {
	if err := validateRef("requirement", a.Requirement); err != nil {
		return err
	}
	if strings.TrimSpace(a.Candidate.CandidateName) == "" {
		return models.Invalid("candidateName", "candidate name is required")
	}
	return nil
}

func (a AddCandidate) apply(c *models.ClientRecord) (models.ItemRef, error) {
	r, _, err := c.Requirement(a.Requirement)
	if err != nil {
		return none, err
	}
	cand := a.Candidate
	cand.Key = ""
	cand.CandidateName = strings.TrimSpace(cand.CandidateName)
	return r.AddCandidate(cand), nil
}

type DeleteCandidate struct {
	Requirement models.ItemRef
	Candidate   models.ItemRef
}

func (d DeleteCandidate) Validate() error {
	if err := validateRef("requirement", d.Requirement); err != nil {
		return err
	}
	return validateRef("candidate", d.Candidate)
}

func (d DeleteCandidate) apply(c *models.ClientRecord) (models.ItemRef, error) {
	r, _, err := c.Requirement(d.Requirement)
	if err != nil {
		return none, err
	}
	return none, r.RemoveCandidate(d.Candidate)
}

type AddApplication struct {
	Requirement models.ItemRef
	Application models.Application
}

func (a AddApplication) Validate() error {
	if err := validateRef("requirement", a.Requirement); err != nil {
		return err
	}
	if strings.TrimSpace(a.Application.Name) == "" {
		return models.Invalid("name", "applicant name is required")
	}
	return nil
}

func (a AddApplication) apply(c *models.ClientRecord) (models.ItemRef, error) {
	r, _, err := c.Requirement(a.Requirement)
	if err != nil {
		return none, err
	}
	app := a.Application
	app.Key = ""
	app.Name = strings.TrimSpace(app.Name)
	return r.AddApplication(app), nil
}

type DeleteApplication struct {
	Requirement models.ItemRef
	Application models.ItemRef
}

func (d DeleteApplication) Validate() error {
	if err := validateRef("requirement", d.Requirement); err != nil {
		return err
	}
	return validateRef("application", d.Application)
}

func (d DeleteApplication) apply(c *models.ClientRecord) (models.ItemRef, error) {
	r, _, err := c.Requirement(d.Requirement)
	if err != nil {
		return none, err
	}
	return none, r.RemoveApplication(d.Application)
}

// ReplaceApplications swaps a requirement's whole application list, the
// way the applications tracker saves.
type ReplaceApplications struct {
	Requirement  models.ItemRef
	Applications []models.Application
}

func (s ReplaceApplications) Validate() error { return validateRef("requirement", s.Requirement) }

func (s ReplaceApplications) apply(c *models.ClientRecord) (models.ItemRef, error) {
	r, _, err := c.Requirement(s.Requirement)
	if err != nil {
		return none, err
	}
	r.SetApplications(s.Applications)
	return none, nil
}

func validateRequirement(r models.Requirement) error {
	if strings.TrimSpace(r.RoleName) == "" {
		return models.Invalid("roleName", "role name is required")
	}
	if len(r.JobDescriptionFile) > 0 && strings.TrimSpace(r.JobDescriptionFileName) == "" {
		return models.Invalid("jobDescriptionFileName", "file name is required with a file")
	}
	return nil
}

func validateRef(kind string, ref models.ItemRef) error {
	if ref.Key == "" && ref.Index < 0 {
		return models.Invalid(kind, "a key or position is required")
	}
	return nil
}

func trimRequirement(r models.Requirement) models.Requirement {
	for _, p := range []*string{
		&r.RoleName, &r.NumRequirements, &r.YearsOfExp, &r.Location, &r.TypeOfPosition,
		&r.ContractDuration, &r.NumResumeSources, &r.NumShortlistedResumes, &r.OnedriveLink, &r.Notes,
	} {
		*p = strings.TrimSpace(*p)
	}
	return r
}
