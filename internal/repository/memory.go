package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

// Memory is an in-process partner directory and client repository with the
// same semantics as the Mongo implementations. It backs unit tests and
// STORE_DRIVER=memory.
type Memory struct {
	mu       sync.Mutex
	partners map[string]models.Partner // name -> partner
	clients  map[string]*memClient     // id -> client
	seq      int64
	now      func() time.Time
}

type memClient struct {
	rec models.ClientRecord
	seq int64
}

func NewMemory() *Memory {
	return &Memory{
		partners: make(map[string]models.Partner),
		clients:  make(map[string]*memClient),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (m *Memory) List(_ context.Context) ([]models.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.partners) > 0 {
		out := make([]models.Partner, 0, len(m.partners))
		for _, p := range m.partners {
			out = append(out, p)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, nil
	}
	names := make([]string, 0, len(m.clients))
	for _, c := range m.clients {
		if c.rec.PartnerName != "" {
			names = append(names, c.rec.PartnerName)
		}
	}
	return derivedPartners(names), nil
}

func (m *Memory) GetOrCreate(_ context.Context, name string) (models.Partner, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateLocked(name)
}

func (m *Memory) getOrCreateLocked(name string) (models.Partner, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Partner{}, false, models.Invalid("name", "partner name is required")
	}
	if p, ok := m.partners[name]; ok {
		return p, false, nil
	}
	now := m.now()
	p := models.Partner{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	m.partners[name] = p
	return p, true, nil
}

func (m *Memory) ListForPartner(_ context.Context, partnerName string) ([]models.ClientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*memClient, 0)
	for _, c := range m.clients {
		if c.rec.PartnerName == partnerName {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].rec.CreatedAt.Equal(matched[j].rec.CreatedAt) {
			return matched[i].rec.CreatedAt.After(matched[j].rec.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})
	out := make([]models.ClientRecord, 0, len(matched))
	for _, c := range matched {
		c.rec.BackfillKeys()
		out = append(out, c.rec.Clone())
	}
	return out, nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*models.ClientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, models.NotFound("client", id)
	}
	c.rec.BackfillKeys()
	rec := c.rec.Clone()
	return &rec, nil
}

func (m *Memory) Create(_ context.Context, partnerName string, f models.ClientFields) (*models.ClientRecord, error) {
	partnerName = strings.TrimSpace(partnerName)
	if partnerName == "" {
		return nil, models.Invalid("partnerName", "partner name is required")
	}
	f.Normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, _, err := m.getOrCreateLocked(partnerName); err != nil {
		return nil, err
	}
	c := models.NewClientRecord(partnerName, f)
	c.ID = uuid.NewString()
	c.Revision = 1
	c.CreatedAt = m.now()
	c.UpdatedAt = c.CreatedAt
	m.seq++
	m.clients[c.ID] = &memClient{rec: c, seq: m.seq}
	out := c.Clone()
	return &out, nil
}

func (m *Memory) Replace(_ context.Context, id string, p models.ClientPatch) (*models.ClientRecord, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.checkLocked(id, p.ExpectedRevision)
	if err != nil {
		return nil, err
	}
	if p.PartnerName != nil {
		if _, _, err := m.getOrCreateLocked(*p.PartnerName); err != nil {
			return nil, err
		}
	}
	next := c.rec.Clone()
	p.ApplyTo(&next)
	next.Normalize()
	next.Revision++
	next.UpdatedAt = m.now()
	c.rec = next

	out := next.Clone()
	return &out, nil
}

func (m *Memory) SetApplications(_ context.Context, id string, req models.ItemRef, apps []models.Application, expected *int64) (*models.ClientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.checkLocked(id, expected)
	if err != nil {
		return nil, err
	}
	next := c.rec.Clone()
	r, _, err := next.Requirement(req)
	if err != nil {
		return nil, err
	}
	r.SetApplications(apps)
	next.Revision++
	next.UpdatedAt = m.now()
	c.rec = next

	out := next.Clone()
	return &out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[id]; !ok {
		return models.NotFound("client", id)
	}
	delete(m.clients, id)
	return nil
}

func (m *Memory) checkLocked(id string, expected *int64) (*memClient, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, models.NotFound("client", id)
	}
	if expected != nil && *expected != c.rec.Revision {
		return nil, &models.ConflictError{ExpectedRevision: *expected, CurrentRevision: c.rec.Revision}
	}
	return c, nil
}
