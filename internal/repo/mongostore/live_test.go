package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-api/internal/domain"
	"shop-api/internal/repo"
)

// 需要真实 mongo：MONGO_TEST_URI=mongodb://localhost:27017 go test ./...
func liveRepos(t *testing.T) *repo.Repositories {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	db := client.Database("shop_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, EnsureIndexes(ctx, db))
	return NewRepositories(db)
}

func TestLiveUserAddresses(t *testing.T) {
	rs := liveRepos(t)
	ctx := context.Background()

	u := &domain.User{Username: "alice", PasswordHash: "h"}
	require.NoError(t, rs.Users.Create(ctx, u))
	err := rs.Users.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	for _, a := range []domain.Address{
		{Name: "home", IsDefault: true},
		{Name: "work"},
		{Name: "new", IsDefault: true},
	} {
		found, err := rs.Users.AddAddress(ctx, u.ID, a)
		require.NoError(t, err)
		assert.True(t, found)
	}
	addrs, found, err := rs.Users.ListAddresses(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, addrs, 3)
	assert.False(t, addrs[0].IsDefault)
	assert.True(t, addrs[2].IsDefault)

	found, err = rs.Users.AddAddress(ctx, primitive.NewObjectID().Hex(), domain.Address{Name: "x"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLiveCart(t *testing.T) {
	rs := liveRepos(t)
	ctx := context.Background()

	require.NoError(t, rs.Carts.AddLine(ctx, "u1", domain.CartLine{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(10)}))
	require.NoError(t, rs.Carts.AddLine(ctx, "u1", domain.CartLine{ProductID: "p2", Quantity: 1, Price: decimal.NewFromInt(3)}))
	require.NoError(t, rs.Carts.AddLine(ctx, "u1", domain.CartLine{ProductID: "p1", Quantity: 3, Price: decimal.NewFromInt(99)}))

	lines, err := rs.Carts.Lines(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.True(t, lines[0].Price.Equal(decimal.NewFromInt(10)))

	n, err := rs.Carts.RemoveLines(ctx, "u1", []string{"p1", "zz"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	found, err := rs.Carts.RemoveLine(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLiveChatAndOrder(t *testing.T) {
	rs := liveRepos(t)
	ctx := context.Background()

	room := &domain.Chatroom{UserID: "u1", SellerID: primitive.NewObjectID().Hex()}
	require.NoError(t, rs.Chats.Create(ctx, room))
	ts := time.Now().UTC()
	found, err := rs.Chats.AppendMessages(ctx, room.ID,
		domain.Message{Sender: domain.SenderUser, Content: "hi", Timestamp: ts},
		domain.Message{Sender: domain.AutoReplySender, Content: domain.AutoReplyContent, Timestamp: ts})
	require.NoError(t, err)
	assert.True(t, found)
	got, err := rs.Chats.FindByID(ctx, room.ID, true)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "hi", got.Messages[0].Content)

	o := &domain.Order{UserID: "u1", Lines: []domain.OrderLine{{ProductID: "p", Quantity: 2}},
		Status: domain.OrderStatusPaid, Total: decimal.RequireFromString("20.00")}
	require.NoError(t, rs.Orders.Create(ctx, o))
	back, err := rs.Orders.FindForUser(ctx, o.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, back)
	assert.True(t, back.Total.Equal(decimal.NewFromInt(20)))
	none, err := rs.Orders.FindForUser(ctx, o.ID, "u2")
	require.NoError(t, err)
	assert.Nil(t, none)
}
