package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Werneck0live/pipeline-crm/internal/broker"
	"github.com/Werneck0live/pipeline-crm/internal/models"
	"github.com/Werneck0live/pipeline-crm/internal/utils"
)

type PartnerDirectory interface {
	List(ctx context.Context) ([]models.Partner, error)
	GetOrCreate(ctx context.Context, name string) (models.Partner, bool, error)
}

type ClientStore interface {
	ListForPartner(ctx context.Context, partnerName string) ([]models.ClientRecord, error)
	GetByID(ctx context.Context, id string) (*models.ClientRecord, error)
	Create(ctx context.Context, partnerName string, f models.ClientFields) (*models.ClientRecord, error)
	Replace(ctx context.Context, id string, p models.ClientPatch) (*models.ClientRecord, error)
	SetApplications(ctx context.Context, id string, req models.ItemRef, apps []models.Application, expected *int64) (*models.ClientRecord, error)
	Delete(ctx context.Context, id string) error
}

type Publisher interface {
	PublishEvent(ctx context.Context, e broker.Event) error
	Close() error
}

type Handler struct {
	Partners PartnerDirectory
	Clients  ClientStore
	Pub      Publisher // optional
	Timeout  time.Duration
	Log      *slog.Logger
}

func New(partners PartnerDirectory, clients ClientStore, pub Publisher) *Handler {
	return &Handler{
		Partners: partners,
		Clients:  clients,
		Pub:      pub,
		Timeout:  5 * time.Second,
		Log:      slog.Default().With("cmp", "api"),
	}
}

// Routes serves every endpoint both at the root and under /api.
func (h *Handler) Routes() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /health", h.Health)
	api.HandleFunc("GET /healthz", h.Health)

	api.HandleFunc("GET /partners", h.ListPartners)
	api.HandleFunc("POST /partners", h.CreatePartner)

	api.HandleFunc("GET /clients/{partnerName}", h.ListClients)
	api.HandleFunc("POST /clients/{partnerName}", h.CreateClient)
	api.HandleFunc("PUT /clients/{id}", h.ReplaceClient)
	api.HandleFunc("DELETE /clients/{id}", h.DeleteClient)

	api.HandleFunc("GET /applications/{partnerName}/{clientId}/{req}", h.ListApplications)
	api.HandleFunc("POST /applications/{partnerName}/{clientId}/{req}", h.SaveApplications)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", api))
	mux.Handle("/", api)
	return mux
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "status": "ok"})
}

func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	d := h.Timeout
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(r.Context(), d)
}

func (h *Handler) logger() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}

// publish is fire and forget: a broker outage never fails a stored write.
func (h *Handler) publish(action, partnerName string, c *models.ClientRecord) {
	if h.Pub == nil {
		return
	}
	e := broker.Event{Action: action, PartnerName: partnerName, At: time.Now().UTC()}
	if c != nil {
		e.ClientID = c.ID
		e.PartnerName = c.PartnerName
		e.Revision = c.Revision
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.Pub.PublishEvent(ctx, e); err != nil {
		h.logger().Warn("event_publish_failed", "action", action, "client_id", e.ClientID, "err", err)
	}
}
