package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-api/internal/domain"
)

type cartLineDoc struct {
	ProductID string        `bson:"product_id"`
	Quantity  int           `bson:"quantity"`
	Price     bson.RawValue `bson:"price"`
	Image     string        `bson:"image"`
}

type cartDoc struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	UserID string             `bson:"user_id"`
	Items  []cartLineDoc      `bson:"items"`
}

type CartRepo struct{ c *mongo.Collection }

func (r *CartRepo) incExisting(ctx context.Context, userID string, line domain.CartLine) (bool, error) {
	res, err := r.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "items.product_id": line.ProductID},
		bson.M{"$inc": bson.M{"items.$.quantity": line.Quantity}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// AddLine 先尝试累加；没有该行则 upsert 追加。并发创建购物车撞唯一索引时回到累加
func (r *CartRepo) AddLine(ctx context.Context, userID string, line domain.CartLine) error {
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := r.incExisting(ctx, userID, line)
		if err != nil {
			return fmt.Errorf("add cart line: %w", err)
		}
		if ok {
			return nil
		}
		item := bson.M{
			"product_id": line.ProductID,
			"quantity":   line.Quantity,
			"price":      toDecimal128(line.Price),
			"image":      line.Image,
		}
		_, err = r.c.UpdateOne(ctx,
			bson.M{"user_id": userID, "items.product_id": bson.M{"$ne": line.ProductID}},
			bson.M{"$push": bson.M{"items": item}},
			options.Update().SetUpsert(true),
		)
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("add cart line: %w", err)
		}
	}
	return fmt.Errorf("add cart line: concurrent update on cart of %s", userID)
}

func (r *CartRepo) Lines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	var d cartDoc
	err := r.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&d)
	if isNoDocs(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	if len(d.Items) == 0 {
		return nil, nil
	}
	out := make([]domain.CartLine, len(d.Items))
	for i, it := range d.Items {
		out[i] = domain.CartLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     decimalFromRaw(it.Price),
			Image:     it.Image,
		}
	}
	return out, nil
}

func (r *CartRepo) SetQuantity(ctx context.Context, userID, productID string, quantity int) (bool, error) {
	res, err := r.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "items.product_id": productID},
		bson.M{"$set": bson.M{"items.$.quantity": quantity}},
	)
	if err != nil {
		return false, fmt.Errorf("set cart quantity: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *CartRepo) RemoveLine(ctx context.Context, userID, productID string) (bool, error) {
	res, err := r.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"items": bson.M{"product_id": productID}}},
	)
	if err != nil {
		return false, fmt.Errorf("remove cart line: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *CartRepo) RemoveLines(ctx context.Context, userID string, productIDs []string) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	var before cartDoc
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"items": bson.M{"product_id": bson.M{"$in": productIDs}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if isNoDocs(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("remove cart lines: %w", err)
	}
	return countMatching(before.Items, productIDs), nil
}

func countMatching(items []cartLineDoc, productIDs []string) int64 {
	want := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		want[id] = struct{}{}
	}
	var n int64
	for _, it := range items {
		if _, ok := want[it.ProductID]; ok {
			n++
		}
	}
	return n
}
