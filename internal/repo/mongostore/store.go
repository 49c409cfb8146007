// Package mongostore 文档库部署下的仓储实现：地址、购物车行、聊天消息以内嵌数组保存
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-api/internal/repo"
)

const (
	colUsers     = "users"
	colProducts  = "products"
	colSellers   = "sellers"
	colCarts     = "carts"
	colOrders    = "orders"
	colChatrooms = "chatrooms"
	colFeedback  = "feedback"
)

func NewRepositories(db *mongo.Database) *repo.Repositories {
	return &repo.Repositories{
		Users:    &UserRepo{c: db.Collection(colUsers)},
		Products: &ProductRepo{c: db.Collection(colProducts)},
		Sellers:  &SellerRepo{c: db.Collection(colSellers)},
		Carts:    &CartRepo{c: db.Collection(colCarts)},
		Orders:   &OrderRepo{c: db.Collection(colOrders)},
		Chats:    &ChatRepo{c: db.Collection(colChatrooms)},
		Feedback: &FeedbackRepo{c: db.Collection(colFeedback)},
	}
}

// EnsureIndexes 唯一约束全部靠索引保证
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colCarts: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colOrders: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colChatrooms: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "seller_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "seller_id", Value: 1}}},
		},
		colProducts: {
			{Keys: bson.D{{Key: "seller_id", Value: 1}}},
		},
		colFeedback: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for col, models := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes %s: %w", col, err)
		}
	}
	return nil
}

// oid 非法 hex 视为不存在
func oid(id string) (primitive.ObjectID, bool) {
	o, err := primitive.ObjectIDFromHex(id)
	return o, err == nil
}

func oids(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if o, ok := oid(id); ok {
			out = append(out, o)
		}
	}
	return out
}

func newID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NewObjectID(), nil
	}
	o, ok := oid(id)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("invalid object id %q", id)
	}
	return o, nil
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

// decimalFromRaw 兼容历史数据里 double / int 存的价格
func decimalFromRaw(rv bson.RawValue) decimal.Decimal {
	switch rv.Type {
	case bsontype.Decimal128:
		if d, err := decimal.NewFromString(rv.Decimal128().String()); err == nil {
			return d
		}
	case bsontype.Double:
		return decimal.NewFromFloat(rv.Double())
	case bsontype.Int32:
		return decimal.NewFromInt32(rv.Int32())
	case bsontype.Int64:
		return decimal.NewFromInt(rv.Int64())
	case bsontype.String:
		if d, err := decimal.NewFromString(rv.StringValue()); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// docTime 新写入一律为 BSON 日期；历史数据里的字符串时间（无时区视为 UTC）读取时兼容
type docTime struct{ time.Time }

var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t docTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.Time)
}

func (t *docTime) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: typ, Value: data}
	switch typ {
	case bsontype.DateTime:
		t.Time = rv.Time().UTC()
	case bsontype.String:
		parsed, err := parseLegacyTime(rv.StringValue())
		if err != nil {
			return err
		}
		t.Time = parsed
	case bsontype.Null, bsontype.Undefined:
		t.Time = time.Time{}
	default:
		return fmt.Errorf("decode time: unexpected bson type %s", typ)
	}
	return nil
}

func parseLegacyTime(s string) (time.Time, error) {
	for _, layout := range legacyTimeLayouts {
		if v, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return v.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("decode time: unrecognized value %q", s)
}

func isNoDocs(err error) bool { return errors.Is(err, mongo.ErrNoDocuments) }

func limitOpt(limit int) *options.FindOptions {
	o := options.Find()
	if limit > 0 {
		o.SetLimit(int64(limit))
	}
	return o
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
