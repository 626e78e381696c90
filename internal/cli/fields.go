package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

// stringField binds one string field of T to a flag.
type stringField[T any] struct {
	flag  string
	usage string
	ptr   func(*T) *string
}

func bindStrings[T any](cmd *cobra.Command, dst *T, fields []stringField[T]) {
	for _, f := range fields {
		cmd.Flags().StringVar(f.ptr(dst), f.flag, "", f.usage)
	}
}

// overlay copies the fields whose flags were set on the command line from
// src onto dst and reports how many there were.
func overlay[T any](cmd *cobra.Command, src T, dst *T, fields []stringField[T]) int {
	n := 0
	for _, f := range fields {
		if cmd.Flags().Changed(f.flag) {
			*f.ptr(dst) = *f.ptr(&src)
			n++
		}
	}
	return n
}

var clientFlags = []stringField[models.ClientFields]{
	{"name", "client name", func(f *models.ClientFields) *string { return &f.ClientName }},
	{"start-date", "engagement start date", func(f *models.ClientFields) *string { return &f.StartDate }},
	{"spoc", "single point of contact", func(f *models.ClientFields) *string { return &f.SPOC }},
	{"location", "client location", func(f *models.ClientFields) *string { return &f.Location }},
	{"roles", "roles being hired", func(f *models.ClientFields) *string { return &f.Roles }},
	{"engagement", "engagement type", func(f *models.ClientFields) *string { return &f.EngagementType }},
	{"engagement-other", "engagement description when --engagement is Others", func(f *models.ClientFields) *string { return &f.EngagementOther }},
	{"current-status", "current status", func(f *models.ClientFields) *string { return &f.CurrentStatus }},
	{"status", "status", func(f *models.ClientFields) *string { return &f.Status }},
	{"next-steps", "next steps", func(f *models.ClientFields) *string { return &f.NextSteps }},
	{"details", "free-form details", func(f *models.ClientFields) *string { return &f.Details }},
}

var requirementFlags = []stringField[models.Requirement]{
	{"role", "role name", func(r *models.Requirement) *string { return &r.RoleName }},
	{"count", "number of openings", func(r *models.Requirement) *string { return &r.NumRequirements }},
	{"experience", "years of experience", func(r *models.Requirement) *string { return &r.YearsOfExp }},
	{"location", "work location", func(r *models.Requirement) *string { return &r.Location }},
	{"position-type", "type of position", func(r *models.Requirement) *string { return &r.TypeOfPosition }},
	{"duration", "contract duration", func(r *models.Requirement) *string { return &r.ContractDuration }},
	{"start-date", "start date", func(r *models.Requirement) *string { return &r.StartDate }},
	{"resume-sources", "number of resume sources", func(r *models.Requirement) *string { return &r.NumResumeSources }},
	{"shortlisted", "number of shortlisted resumes", func(r *models.Requirement) *string { return &r.NumShortlistedResumes }},
	{"onedrive", "OneDrive link", func(r *models.Requirement) *string { return &r.OnedriveLink }},
	{"notes", "notes", func(r *models.Requirement) *string { return &r.Notes }},
}

var candidateFlags = []stringField[models.Candidate]{
	{"name", "candidate name", func(c *models.Candidate) *string { return &c.CandidateName }},
	{"position", "position", func(c *models.Candidate) *string { return &c.Position }},
	{"experience", "years of experience", func(c *models.Candidate) *string { return &c.YearsOfExp }},
	{"current-salary", "current salary", func(c *models.Candidate) *string { return &c.CurrentSalary }},
	{"expected-salary", "expected salary", func(c *models.Candidate) *string { return &c.ExpectedSalary }},
	{"market-salary", "market salary", func(c *models.Candidate) *string { return &c.MarketSalary }},
	{"client-salary", "client salary", func(c *models.Candidate) *string { return &c.ClientSalary }},
	{"hiring-cost", "hiring cost (H2E)", func(c *models.Candidate) *string { return &c.HiringCostH2E }},
	{"cost-to-client", "cost to client (C2C)", func(c *models.Candidate) *string { return &c.CostToClientC2C }},
	{"hourly-rate", "hourly rate", func(c *models.Candidate) *string { return &c.HourlyRate }},
}

var applicationFlags = []stringField[models.Application]{
	{"name", "applicant name", func(a *models.Application) *string { return &a.Name }},
	{"exp", "experience", func(a *models.Application) *string { return &a.Exp }},
	{"work", "current employer", func(a *models.Application) *string { return &a.Work }},
	{"current", "current compensation", func(a *models.Application) *string { return &a.Current }},
	{"expected", "expected compensation", func(a *models.Application) *string { return &a.Expected }},
	{"date", "interview date", func(a *models.Application) *string { return &a.Date }},
	{"time", "interview time", func(a *models.Application) *string { return &a.Time }},
	{"r1", "round 1 result", func(a *models.Application) *string { return &a.Round1 }},
	{"r2", "round 2 result", func(a *models.Application) *string { return &a.Round2 }},
	{"r3", "round 3 result", func(a *models.Application) *string { return &a.Round3 }},
	{"r4", "round 4 result", func(a *models.Application) *string { return &a.Round4 }},
	{"final", "final outcome", func(a *models.Application) *string { return &a.FinalOutcome }},
}

// attachJD loads a job description file into r. An empty path is a no-op.
func attachJD(r *models.Requirement, path string) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "read job description", err)
	}
	r.JobDescriptionFile = b
	r.JobDescriptionFileName = filepath.Base(path)
	return nil
}
