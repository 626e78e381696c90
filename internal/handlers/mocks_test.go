package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/Werneck0live/pipeline-crm/internal/broker"
	"github.com/Werneck0live/pipeline-crm/internal/models"
)

type partnersMock struct {
	ListFn        func(ctx context.Context) ([]models.Partner, error)
	GetOrCreateFn func(ctx context.Context, name string) (models.Partner, bool, error)
}

func (m *partnersMock) List(ctx context.Context) ([]models.Partner, error) {
	if m.ListFn == nil {
		return nil, errors.New("ListFn not set")
	}
	return m.ListFn(ctx)
}
func (m *partnersMock) GetOrCreate(ctx context.Context, name string) (models.Partner, bool, error) {
	if m.GetOrCreateFn == nil {
		return models.Partner{}, false, errors.New("GetOrCreateFn not set")
	}
	return m.GetOrCreateFn(ctx, name)
}

type clientsMock struct {
	ListForPartnerFn  func(ctx context.Context, partnerName string) ([]models.ClientRecord, error)
	GetByIDFn         func(ctx context.Context, id string) (*models.ClientRecord, error)
	CreateFn          func(ctx context.Context, partnerName string, f models.ClientFields) (*models.ClientRecord, error)
	ReplaceFn         func(ctx context.Context, id string, p models.ClientPatch) (*models.ClientRecord, error)
	SetApplicationsFn func(ctx context.Context, id string, req models.ItemRef, apps []models.Application, expected *int64) (*models.ClientRecord, error)
	DeleteFn          func(ctx context.Context, id string) error
}

func (m *clientsMock) ListForPartner(ctx context.Context, partnerName string) ([]models.ClientRecord, error) {
	if m.ListForPartnerFn == nil {
		return nil, errors.New("ListForPartnerFn not set")
	}
	return m.ListForPartnerFn(ctx, partnerName)
}
func (m *clientsMock) GetByID(ctx context.Context, id string) (*models.ClientRecord, error) {
	if m.GetByIDFn == nil {
		return nil, errors.New("GetByIDFn not set")
	}
	return m.GetByIDFn(ctx, id)
}
func (m *clientsMock) Create(ctx context.Context, partnerName string, f models.ClientFields) (*models.ClientRecord, error) {
	if m.CreateFn == nil {
		return nil, errors.New("CreateFn not set")
	}
	return m.CreateFn(ctx, partnerName, f)
}
func (m *clientsMock) Replace(ctx context.Context, id string, p models.ClientPatch) (*models.ClientRecord, error) {
	if m.ReplaceFn == nil {
		return nil, errors.New("ReplaceFn not set")
	}
	return m.ReplaceFn(ctx, id, p)
}
func (m *clientsMock) SetApplications(ctx context.Context, id string, req models.ItemRef, apps []models.Application, expected *int64) (*models.ClientRecord, error) {
	if m.SetApplicationsFn == nil {
		return nil, errors.New("SetApplicationsFn not set")
	}
	return m.SetApplicationsFn(ctx, id, req, apps, expected)
}
func (m *clientsMock) Delete(ctx context.Context, id string) error {
	if m.DeleteFn == nil {
		return errors.New("DeleteFn not set")
	}
	return m.DeleteFn(ctx, id)
}

// pubMock records published events.
type pubMock struct {
	mu        sync.Mutex
	events    []broker.Event
	PublishFn func(ctx context.Context, e broker.Event) error
	CloseFn   func() error
}

func (p *pubMock) PublishEvent(ctx context.Context, e broker.Event) error {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
	if p.PublishFn == nil {
		return nil
	}
	return p.PublishFn(ctx, e)
}
func (p *pubMock) Close() error {
	if p.CloseFn == nil {
		return nil
	}
	return p.CloseFn()
}

func (p *pubMock) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
