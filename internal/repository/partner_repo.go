package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

type PartnerRepository struct {
	coll    *mongo.Collection
	clients *mongo.Collection
}

func NewPartnerRepository(db *mongo.Database) *PartnerRepository {
	return &PartnerRepository{
		coll:    db.Collection("partners"),
		clients: db.Collection("clients"),
	}
}

func (r *PartnerRepository) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_name"),
	}
	_, err := r.coll.Indexes().CreateOne(ctx, model)
	if err == nil {
		return nil
	}
	if ce, ok := err.(mongo.CommandError); ok && ce.Code == 85 { // IndexOptionsConflict
		if _, dropErr := r.coll.Indexes().DropOne(ctx, "uniq_name"); dropErr != nil {
			return fmt.Errorf("drop index uniq_name: %w", dropErr)
		}
		_, err = r.coll.Indexes().CreateOne(ctx, model)
	}
	return err
}

// List returns the directory sorted by name. An empty directory falls back
// to the distinct partner names found on client records.
func (r *PartnerRepository) List(ctx context.Context) ([]models.Partner, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, storeErr("list partners", err)
	}
	defer cur.Close(ctx)

	list := []models.Partner{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, storeErr("list partners", err)
	}
	if len(list) > 0 {
		return list, nil
	}

	raw, err := r.clients.Distinct(ctx, "partnerName", bson.M{})
	if err != nil {
		return nil, storeErr("derive partners", err)
	}
	names := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			names = append(names, s)
		}
	}
	return derivedPartners(names), nil
}

// GetOrCreate resolves a partner by trimmed name, inserting it on first use.
func (r *PartnerRepository) GetOrCreate(ctx context.Context, name string) (models.Partner, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Partner{}, false, models.Invalid("name", "partner name is required")
	}

	p, err := r.findByName(ctx, name)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Partner{}, false, storeErr("find partner", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	p = models.Partner{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if isDuplicateKey(err) {
			// lost the race to a concurrent creator
			existing, ferr := r.findByName(ctx, name)
			if ferr != nil {
				return models.Partner{}, false, storeErr("find partner", ferr)
			}
			return existing, false, nil
		}
		return models.Partner{}, false, storeErr("insert partner", err)
	}
	return p, true, nil
}

func (r *PartnerRepository) findByName(ctx context.Context, name string) (models.Partner, error) {
	var p models.Partner
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&p)
	return p, err
}

func derivedPartners(names []string) []models.Partner {
	sort.Strings(names)
	out := make([]models.Partner, 0, len(names))
	for i, n := range names {
		if i > 0 && names[i-1] == n {
			continue
		}
		out = append(out, models.Partner{Name: n})
	}
	return out
}
