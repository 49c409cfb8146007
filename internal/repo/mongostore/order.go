package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shop-api/internal/domain"
)

type orderLineDoc struct {
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
}

type shippingDoc struct {
	Name    string `bson:"name"`
	Phone   string `bson:"phone"`
	Address string `bson:"address"`
}

type orderDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"user_id"`
	Items     []orderLineDoc     `bson:"items"`
	Address   shippingDoc        `bson:"address"`
	Status    string             `bson:"status"`
	Total     bson.RawValue      `bson:"total_price"`
	CreatedAt docTime            `bson:"created_at"`
}

func (d *orderDoc) toDomain() domain.Order {
	o := domain.Order{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Address:   domain.ShippingAddress{Name: d.Address.Name, Phone: d.Address.Phone, Address: d.Address.Address},
		Status:    d.Status,
		Total:     decimalFromRaw(d.Total),
		CreatedAt: d.CreatedAt.Time,
	}
	o.Lines = make([]domain.OrderLine, len(d.Items))
	for i, it := range d.Items {
		o.Lines[i] = domain.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return o
}

type OrderRepo struct{ c *mongo.Collection }

// Create 订单头与明细同一文档，一次插入
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	id, err := newID(o.ID)
	if err != nil {
		return domain.InvalidArgument("%v", err)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now()
	}
	items := make([]orderLineDoc, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = orderLineDoc{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	doc := bson.M{
		"_id":         id,
		"user_id":     o.UserID,
		"items":       items,
		"address":     shippingDoc{Name: o.Address.Name, Phone: o.Address.Phone, Address: o.Address.Address},
		"status":      o.Status,
		"total_price": toDecimal128(o.Total),
		"created_at":  o.CreatedAt,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = id.Hex()
	return nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	opts := limitOpt(limit).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Order, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *OrderRepo) FindForUser(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	o, ok := oid(orderID)
	if !ok {
		return nil, nil
	}
	var d orderDoc
	err := r.c.FindOne(ctx, bson.M{"_id": o, "user_id": userID}).Decode(&d)
	if isNoDocs(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	out := d.toDomain()
	return &out, nil
}
