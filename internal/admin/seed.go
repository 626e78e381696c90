package admin

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

//go:embed seeds/partners.json
var partnersJSON []byte

type seedItem struct {
	Name string `json:"name"`
}

type PartnerDirectory interface {
	GetOrCreate(ctx context.Context, name string) (models.Partner, bool, error)
}

// SeedPartners makes sure the default partners exist. Idempotent: existing
// names are left alone.
func SeedPartners(ctx context.Context, dir PartnerDirectory, log *slog.Logger) (created int, err error) {
	var items []seedItem
	if err := json.Unmarshal(partnersJSON, &items); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}

	for _, s := range items {
		ictx, cancel := context.WithTimeout(ctx, 3*time.Second)
		p, isNew, err := dir.GetOrCreate(ictx, s.Name)
		cancel()
		if err != nil {
			return created, fmt.Errorf("seed partner %q: %w", s.Name, err)
		}
		if !isNew {
			log.Info("seed_partner_exists", "name", p.Name)
			continue
		}
		created++
		log.Info("seed_partner_created", "name", p.Name, "id", p.ID)
	}

	log.Info("seed_partners_done", "count", len(items), "created", created)
	return created, nil
}
