package apiclient

import (
	"context"
	"net/http"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, nil, target{"service", "health"})
	return err
}

func (c *Client) ListPartners(ctx context.Context) ([]models.Partner, error) {
	var out []models.Partner
	_, err := c.do(ctx, http.MethodGet, "/partners", nil, &out, target{"partners", ""})
	return out, err
}

// ResolvePartner creates the partner or returns the existing one; created
// tells which.
func (c *Client) ResolvePartner(ctx context.Context, name string) (models.Partner, bool, error) {
	var out models.Partner
	code, err := c.do(ctx, http.MethodPost, "/partners", map[string]string{"name": name}, &out, target{"partner", name})
	return out, code == http.StatusCreated, err
}

func (c *Client) ListForPartner(ctx context.Context, partnerName string) ([]models.ClientRecord, error) {
	var out []models.ClientRecord
	_, err := c.do(ctx, http.MethodGet, "/clients/"+seg(partnerName), nil, &out, target{"partner", partnerName})
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, partnerName string, f models.ClientFields) (*models.ClientRecord, error) {
	var out models.ClientRecord
	if _, err := c.do(ctx, http.MethodPost, "/clients/"+seg(partnerName), f, &out, target{"partner", partnerName}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Replace sends the supplied fields of p; a set ExpectedRevision travels
// in the body.
func (c *Client) Replace(ctx context.Context, id string, p models.ClientPatch) (*models.ClientRecord, error) {
	var out models.ClientRecord
	if _, err := c.do(ctx, http.MethodPut, "/clients/"+seg(id), p, &out, target{"client", id}); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/clients/"+seg(id), nil, nil, target{"client", id})
	return err
}

func applicationsPath(partnerName, id string, req models.ItemRef) string {
	return "/applications/" + seg(partnerName) + "/" + seg(id) + "/" + seg(req.String())
}

func (c *Client) ListApplications(ctx context.Context, partnerName, id string, req models.ItemRef) ([]models.Application, error) {
	var out []models.Application
	_, err := c.do(ctx, http.MethodGet, applicationsPath(partnerName, id, req), nil, &out, target{"client or requirement", id + "/" + req.String()})
	return out, err
}

// SaveApplications replaces one requirement's applications and returns the
// record's new revision.
func (c *Client) SaveApplications(ctx context.Context, partnerName, id string, req models.ItemRef, apps []models.Application, expected *int64) (int64, error) {
	in := struct {
		Applications []models.Application `json:"applications"`
		Revision     *int64               `json:"revision,omitempty"`
	}{Applications: apps, Revision: expected}
	if in.Applications == nil {
		in.Applications = []models.Application{}
	}
	var out struct {
		OK       bool  `json:"ok"`
		Revision int64 `json:"revision"`
	}
	_, err := c.do(ctx, http.MethodPost, applicationsPath(partnerName, id, req), in, &out, target{"client or requirement", id + "/" + req.String()})
	return out.Revision, err
}
