package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

// PartnerUpserter keeps the partner directory aligned with client writes.
type PartnerUpserter interface {
	GetOrCreate(ctx context.Context, name string) (models.Partner, bool, error)
}

type ClientRepository struct {
	coll     *mongo.Collection
	partners PartnerUpserter
}

func NewClientRepository(db *mongo.Database, partners PartnerUpserter) *ClientRepository {
	return &ClientRepository{coll: db.Collection("clients"), partners: partners}
}

func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "partnerName", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("partner_created"),
	})
	return err
}

// ListForPartner returns the partner's clients, newest first. partnerName
// is matched exactly.
func (r *ClientRepository) ListForPartner(ctx context.Context, partnerName string) ([]models.ClientRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"partnerName": partnerName}, opts)
	if err != nil {
		return nil, storeErr("list clients", err)
	}
	defer cur.Close(ctx)

	list := []models.ClientRecord{}
	for cur.Next(ctx) {
		var c models.ClientRecord
		if err := cur.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode client: %w", err)
		}
		list = append(list, c)
	}
	if err := cur.Err(); err != nil {
		return nil, storeErr("list clients", err)
	}
	for i := range list {
		if err := r.backfillKeys(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.ClientRecord, error) {
	var c models.ClientRecord
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NotFound("client", id)
	}
	if err != nil {
		return nil, storeErr("get client", err)
	}
	if err := r.backfillKeys(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// backfillKeys gives keyless stored items their derived keys and writes
// them back, so later reads and keyed writes see the same addresses. Each
// key is only set while its path is still keyless; a write that moved
// items in between wins and the next read backfills again.
func (r *ClientRepository) backfillKeys(ctx context.Context, c *models.ClientRecord) error {
	assigned := c.BackfillKeys()
	if len(assigned) == 0 {
		return nil
	}
	filter := bson.M{"_id": c.ID}
	set := bson.M{}
	for path, key := range assigned {
		filter[path] = bson.M{"$in": bson.A{nil, ""}}
		set[path] = key
	}
	if _, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set}); err != nil {
		return storeErr("backfill keys", err)
	}
	return nil
}

// Create stores a new record with no requirements at revision 1 and makes
// sure the partner directory knows partnerName.
func (r *ClientRepository) Create(ctx context.Context, partnerName string, f models.ClientFields) (*models.ClientRecord, error) {
	partnerName = strings.TrimSpace(partnerName)
	if partnerName == "" {
		return nil, models.Invalid("partnerName", "partner name is required")
	}
	f.Normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if r.partners != nil {
		if _, _, err := r.partners.GetOrCreate(ctx, partnerName); err != nil {
			return nil, err
		}
	}

	c := models.NewClientRecord(partnerName, f)
	c.ID = uuid.NewString()
	c.Revision = 1
	c.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	c.UpdatedAt = c.CreatedAt
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return nil, storeErr("insert client", err)
	}
	return &c, nil
}

// Replace writes only the fields the patch supplies; omitted fields keep
// their stored value. A supplied ExpectedRevision makes the write
// conditional on the stored revision.
func (r *ClientRepository) Replace(ctx context.Context, id string, p models.ClientPatch) (*models.ClientRecord, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	for k, v := range p.Fields() {
		set[k] = v
	}
	if p.Requirements != nil {
		set["requirements"] = models.NormalizeRequirements(*p.Requirements)
	}

	filter := bson.M{"_id": id}
	if p.ExpectedRevision != nil {
		filter["revision"] = *p.ExpectedRevision
	}
	out, err := r.update(ctx, id, filter, bson.M{"$set": set, "$inc": bson.M{"revision": 1}}, p.ExpectedRevision, nil)
	if err != nil {
		return nil, err
	}
	// the directory only learns names that were actually written
	if p.PartnerName != nil && r.partners != nil {
		if _, _, err := r.partners.GetOrCreate(ctx, out.PartnerName); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SetApplications replaces one requirement's application list without
// rewriting the rest of the record.
func (r *ClientRepository) SetApplications(ctx context.Context, id string, req models.ItemRef, apps []models.Application, expected *int64) (*models.ClientRecord, error) {
	var holder models.Requirement
	holder.SetApplications(apps)

	filter := bson.M{"_id": id}
	var path string
	if req.Key != "" {
		filter["requirements.key"] = req.Key
		path = "requirements.$.applications"
	} else {
		if req.Index < 0 {
			return nil, models.NotFound("requirement", req.String())
		}
		filter[fmt.Sprintf("requirements.%d", req.Index)] = bson.M{"$exists": true}
		path = fmt.Sprintf("requirements.%d.applications", req.Index)
	}
	if expected != nil {
		filter["revision"] = *expected
	}
	update := bson.M{
		"$set": bson.M{path: holder.Applications, "updatedAt": time.Now().UTC().Truncate(time.Millisecond)},
		"$inc": bson.M{"revision": 1},
	}
	return r.update(ctx, id, filter, update, expected, &req)
}

func (r *ClientRepository) update(ctx context.Context, id string, filter, update bson.M, expected *int64, req *models.ItemRef) (*models.ClientRecord, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.ClientRecord
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.explainMiss(ctx, id, expected, req)
	}
	if err != nil {
		return nil, storeErr("update client", err)
	}
	if err := r.backfillKeys(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// explainMiss tells apart the reasons a conditional update matched nothing.
func (r *ClientRepository) explainMiss(ctx context.Context, id string, expected *int64, req *models.ItemRef) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if expected != nil && current.Revision != *expected {
		return &models.ConflictError{ExpectedRevision: *expected, CurrentRevision: current.Revision}
	}
	if req != nil {
		return models.NotFound("requirement", req.String())
	}
	return models.NotFound("client", id)
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("delete client", err)
	}
	if res.DeletedCount == 0 {
		return models.NotFound("client", id)
	}
	return nil
}
