package models

import (
	"strings"
	"time"
)

const EngagementOthers = "Others"

// ClientRecord is one client's pipeline state and the unit of persistence:
// any change in its nested tree is written back as part of this document.
// Revision increases by one on every stored write.
type ClientRecord struct {
	ID              string        `bson:"_id,omitempty" json:"id"`
	PartnerName     string        `bson:"partnerName" json:"partnerName"`
	StartDate       string        `bson:"startDate" json:"startDate"`
	ClientName      string        `bson:"client" json:"client"`
	SPOC            string        `bson:"spoc" json:"spoc"`
	Location        string        `bson:"location" json:"location"`
	Roles           string        `bson:"roles" json:"roles"`
	EngagementType  string        `bson:"engagement" json:"engagement"`
	EngagementOther string        `bson:"engagementOther" json:"engagementOther"`
	CurrentStatus   string        `bson:"currentStatus" json:"currentStatus"`
	Status          string        `bson:"status" json:"status"`
	NextSteps       string        `bson:"nextSteps" json:"nextSteps"`
	Details         string        `bson:"details" json:"details"`
	Requirements    []Requirement `bson:"requirements" json:"requirements"`
	Revision        int64         `bson:"revision" json:"revision"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// ClientFields are the scalar, user supplied fields of a client.
type ClientFields struct {
	StartDate       string `json:"startDate"`
	ClientName      string `json:"client"`
	SPOC            string `json:"spoc"`
	Location        string `json:"location"`
	Roles           string `json:"roles"`
	EngagementType  string `json:"engagement"`
	EngagementOther string `json:"engagementOther"`
	CurrentStatus   string `json:"currentStatus"`
	Status          string `json:"status"`
	NextSteps       string `json:"nextSteps"`
	Details         string `json:"details"`
}

// Normalize trims the free-text fields and drops EngagementOther unless the
// engagement is "Others".
func (f *ClientFields) Normalize() {
	for _, p := range []*string{&f.ClientName, &f.SPOC, &f.Location, &f.Roles, &f.EngagementOther, &f.Status, &f.NextSteps, &f.Details} {
		*p = strings.TrimSpace(*p)
	}
	if f.EngagementType != EngagementOthers {
		f.EngagementOther = ""
	}
}

func (f ClientFields) Validate() error {
	if strings.TrimSpace(f.ClientName) == "" {
		return Invalid("client", "client name is required")
	}
	if f.EngagementType == EngagementOthers && strings.TrimSpace(f.EngagementOther) == "" {
		return Invalid("engagementOther", "engagement type is required for Others")
	}
	return nil
}

// NewClientRecord builds an unsaved record with an empty requirement list.
func NewClientRecord(partnerName string, f ClientFields) ClientRecord {
	return ClientRecord{
		PartnerName:     partnerName,
		StartDate:       f.StartDate,
		ClientName:      f.ClientName,
		SPOC:            f.SPOC,
		Location:        f.Location,
		Roles:           f.Roles,
		EngagementType:  f.EngagementType,
		EngagementOther: f.EngagementOther,
		CurrentStatus:   f.CurrentStatus,
		Status:          f.Status,
		NextSteps:       f.NextSteps,
		Details:         f.Details,
		Requirements:    []Requirement{},
	}
}

func (c *ClientRecord) Fields() ClientFields {
	return ClientFields{
		StartDate:       c.StartDate,
		ClientName:      c.ClientName,
		SPOC:            c.SPOC,
		Location:        c.Location,
		Roles:           c.Roles,
		EngagementType:  c.EngagementType,
		EngagementOther: c.EngagementOther,
		CurrentStatus:   c.CurrentStatus,
		Status:          c.Status,
		NextSteps:       c.NextSteps,
		Details:         c.Details,
	}
}

// Requirement is an open role embedded in a ClientRecord. Key is stable
// across deletions of its siblings; its position is not.
type Requirement struct {
	Key                    string        `bson:"key" json:"key"`
	RoleName               string        `bson:"roleName" json:"roleName"`
	NumRequirements        string        `bson:"numRequirements" json:"numRequirements"`
	YearsOfExp             string        `bson:"yearsOfExp" json:"yearsOfExp"`
	Location               string        `bson:"location" json:"location"`
	TypeOfPosition         string        `bson:"typeOfPosition" json:"typeOfPosition"`
	ContractDuration       string        `bson:"contractDuration" json:"contractDuration"`
	StartDate              string        `bson:"startDate" json:"startDate"`
	NumResumeSources       string        `bson:"numResumeSources" json:"numResumeSources"`
	NumShortlistedResumes  string        `bson:"numShortlistedResumes" json:"numShortlistedResumes"`
	OnedriveLink           string        `bson:"onedriveLink" json:"onedriveLink"`
	Notes                  string        `bson:"notes" json:"notes"`
	JobDescriptionFileName string        `bson:"jobDescriptionFileName" json:"jobDescriptionFileName"`
	JobDescriptionFile     []byte        `bson:"jobDescriptionFile,omitempty" json:"jobDescriptionFileBlob,omitempty"`
	Candidates             []Candidate   `bson:"candidates" json:"candidates"`
	Applications           []Application `bson:"applications" json:"applications"`
}

type Candidate struct {
	Key             string `bson:"key" json:"key"`
	CandidateName   string `bson:"candidateName" json:"candidateName"`
	Position        string `bson:"position" json:"position"`
	YearsOfExp      string `bson:"yearsOfExp" json:"yearsOfExp"`
	CurrentSalary   string `bson:"currentSalary" json:"currentSalary"`
	ExpectedSalary  string `bson:"expectedSalary" json:"expectedSalary"`
	MarketSalary    string `bson:"marketSalary" json:"marketSalary"`
	ClientSalary    string `bson:"clientSalary" json:"clientSalary"`
	HiringCostH2E   string `bson:"hiringCostH2E" json:"hiringCostH2E"`
	CostToClientC2C string `bson:"costToClientC2C" json:"costToClientC2C"`
	HourlyRate      string `bson:"hourlyRate" json:"hourlyRate"`
}

// Application tracks one interview process entry for a requirement.
type Application struct {
	Key          string `bson:"key" json:"key"`
	Name         string `bson:"name" json:"name"`
	Exp          string `bson:"exp" json:"exp"`
	Work         string `bson:"work" json:"work"`
	Current      string `bson:"current" json:"current"`
	Expected     string `bson:"expected" json:"expected"`
	Date         string `bson:"date" json:"date"`
	Time         string `bson:"time" json:"time"`
	Round1       string `bson:"r1" json:"r1"`
	Round2       string `bson:"r2" json:"r2"`
	Round3       string `bson:"r3" json:"r3"`
	Round4       string `bson:"r4" json:"r4"`
	FinalOutcome string `bson:"final" json:"final"`
}
