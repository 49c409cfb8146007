package mongostore

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shop-api/internal/domain"
)

type productDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	SellerID    string             `bson:"seller_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Price       bson.RawValue      `bson:"price"`
	Image       string             `bson:"image"`
	Images      []string           `bson:"images"`
	CreatedAt   docTime            `bson:"created_at"`
	UpdatedAt   docTime            `bson:"updated_at"`
}

func (d *productDoc) toDomain() domain.Product {
	return domain.Product{
		ID:          d.ID.Hex(),
		SellerID:    d.SellerID,
		Name:        d.Name,
		Description: d.Description,
		Price:       decimalFromRaw(d.Price),
		Image:       d.Image,
		Images:      d.Images,
		CreatedAt:   d.CreatedAt.Time,
		UpdatedAt:   d.UpdatedAt.Time,
	}
}

func productFields(p *domain.Product) bson.M {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return bson.M{
		"seller_id":   p.SellerID,
		"name":        p.Name,
		"description": p.Description,
		"price":       toDecimal128(p.Price),
		"image":       p.Image,
		"images":      images,
	}
}

type ProductRepo struct{ c *mongo.Collection }

func (r *ProductRepo) decodeAll(ctx context.Context, cur *mongo.Cursor) ([]domain.Product, error) {
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *ProductRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	keys := oids(ids)
	if len(keys) == 0 {
		return nil, nil
	}
	cur, err := r.c.Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return r.decodeAll(ctx, cur)
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	o, ok := oid(id)
	if !ok {
		return nil, nil
	}
	var d productDoc
	err := r.c.FindOne(ctx, bson.M{"_id": o}).Decode(&d)
	if isNoDocs(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	p := d.toDomain()
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	filter := bson.M{}
	if f.Q != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Q), "$options": "i"}
	}
	if f.SellerID != "" {
		filter["seller_id"] = f.SellerID
	}
	total, err := r.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := limitOpt(f.Limit).SetSkip(int64(f.Offset)).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	out, err := r.decodeAll(ctx, cur)
	return out, total, err
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	id, err := newID(p.ID)
	if err != nil {
		return domain.InvalidArgument("%v", err)
	}
	doc := productFields(p)
	ts := now()
	doc["_id"], doc["created_at"], doc["updated_at"] = id, ts, ts
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflict("product %s already exists", id.Hex())
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID, p.CreatedAt, p.UpdatedAt = id.Hex(), ts, ts
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) (bool, error) {
	o, ok := oid(p.ID)
	if !ok {
		return false, nil
	}
	set := productFields(p)
	set["updated_at"] = now()
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": o}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update product: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	o, ok := oid(id)
	if !ok {
		return false, nil
	}
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": o})
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return res.DeletedCount > 0, nil
}

type sellerDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Image     string             `bson:"image"`
	CreatedAt docTime            `bson:"created_at"`
}

func (d *sellerDoc) toDomain() domain.Seller {
	return domain.Seller{ID: d.ID.Hex(), Name: d.Name, Image: d.Image, CreatedAt: d.CreatedAt.Time}
}

type SellerRepo struct{ c *mongo.Collection }

func (r *SellerRepo) FindByID(ctx context.Context, id string) (*domain.Seller, error) {
	o, ok := oid(id)
	if !ok {
		return nil, nil
	}
	var d sellerDoc
	err := r.c.FindOne(ctx, bson.M{"_id": o}).Decode(&d)
	if isNoDocs(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find seller: %w", err)
	}
	s := d.toDomain()
	return &s, nil
}

func (r *SellerRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Seller, error) {
	keys := oids(ids)
	if len(keys) == 0 {
		return nil, nil
	}
	cur, err := r.c.Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return nil, fmt.Errorf("find sellers: %w", err)
	}
	var docs []sellerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Seller, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *SellerRepo) Create(ctx context.Context, s *domain.Seller) error {
	id, err := newID(s.ID)
	if err != nil {
		return domain.InvalidArgument("%v", err)
	}
	doc := sellerDoc{ID: id, Name: s.Name, Image: s.Image, CreatedAt: docTime{now()}}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflict("seller %s already exists", id.Hex())
		}
		return fmt.Errorf("insert seller: %w", err)
	}
	s.ID, s.CreatedAt = id.Hex(), doc.CreatedAt.Time
	return nil
}
