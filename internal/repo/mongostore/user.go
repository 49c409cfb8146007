package mongostore

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-api/internal/domain"
)

type addressDoc struct {
	Name      string `bson:"name"`
	Phone     string `bson:"phone"`
	Address   string `bson:"address"`
	IsDefault bool   `bson:"is_default"`
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	Image     string             `bson:"image"`
	Role      string             `bson:"role"`
	Addresses []addressDoc       `bson:"addresses"`
	CreatedAt docTime            `bson:"created_at"`
}

func (d *userDoc) toDomain() *domain.User {
	u := &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		Image:        d.Image,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt.Time,
	}
	if len(d.Addresses) > 0 {
		u.Addresses = toAddresses(d.Addresses)
	}
	return u
}

func toAddresses(ds []addressDoc) []domain.Address {
	out := make([]domain.Address, len(ds))
	for i, a := range ds {
		out[i] = domain.Address{Name: a.Name, Phone: a.Phone, Address: a.Address, IsDefault: a.IsDefault}
	}
	return out
}

type UserRepo struct{ c *mongo.Collection }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	id, err := newID(u.ID)
	if err != nil {
		return domain.InvalidArgument("%v", err)
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	doc := userDoc{
		ID:        id,
		Username:  u.Username,
		Password:  u.PasswordHash,
		Image:     u.Image,
		Role:      u.Role,
		Addresses: []addressDoc{},
		CreatedAt: docTime{now()},
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflict("Username already exists")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID, u.CreatedAt = id.Hex(), doc.CreatedAt.Time
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var d userDoc
	err := r.c.FindOne(ctx, filter).Decode(&d)
	if isNoDocs(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return d.toDomain(), nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	o, ok := oid(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": o})
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepo) List(ctx context.Context, offset, limit int, q string) ([]domain.User, int64, error) {
	filter := bson.M{}
	if q != "" {
		filter["username"] = bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	}
	total, err := r.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := limitOpt(limit).SetSkip(int64(offset)).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]domain.User, len(docs))
	for i := range docs {
		out[i] = *docs[i].toDomain()
	}
	return out, total, nil
}

func (r *UserRepo) ListAddresses(ctx context.Context, userID string) ([]domain.Address, bool, error) {
	o, ok := oid(userID)
	if !ok {
		return nil, false, nil
	}
	var d userDoc
	err := r.c.FindOne(ctx, bson.M{"_id": o},
		options.FindOne().SetProjection(bson.M{"addresses": 1})).Decode(&d)
	if isNoDocs(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("list addresses: %w", err)
	}
	return toAddresses(d.Addresses), true, nil
}

// addressPushPipeline 清旧默认与追加合并成一次流水线更新
func addressPushPipeline(a addressDoc) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"addresses": bson.M{"$concatArrays": bson.A{
				bson.M{"$map": bson.M{
					"input": bson.M{"$ifNull": bson.A{"$addresses", bson.A{}}},
					"as":    "a",
					"in":    bson.M{"$mergeObjects": bson.A{"$$a", bson.M{"is_default": false}}},
				}},
				bson.A{bson.M{"$literal": a}},
			}},
		}}},
	}
}

func (r *UserRepo) AddAddress(ctx context.Context, userID string, a domain.Address) (bool, error) {
	o, ok := oid(userID)
	if !ok {
		return false, nil
	}
	doc := addressDoc{Name: a.Name, Phone: a.Phone, Address: a.Address, IsDefault: a.IsDefault}
	var update any = bson.M{"$push": bson.M{"addresses": doc}}
	if a.IsDefault {
		update = addressPushPipeline(doc)
	}
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": o}, update)
	if err != nil {
		return false, fmt.Errorf("add address: %w", err)
	}
	return res.MatchedCount > 0, nil
}
