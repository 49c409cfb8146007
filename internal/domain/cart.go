package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// CartLine 价格、图片为加入购物车时的快照，不随商品目录同步
type CartLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
}

// CartRepository 每个用户一个购物车，行按加入顺序排列
type CartRepository interface {
	// AddLine 同一商品已存在则累加数量，否则追加新行（购物车不存在时创建）
	AddLine(ctx context.Context, userID string, line CartLine) error
	// Lines 购物车不存在返回 nil
	Lines(ctx context.Context, userID string) ([]CartLine, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (found bool, err error)
	RemoveLine(ctx context.Context, userID, productID string) (found bool, err error)
	RemoveLines(ctx context.Context, userID string, productIDs []string) (removed int64, err error)
}
