package repo_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-api/internal/domain"
	"shop-api/internal/repo"
	"shop-api/internal/repo/repotest"
)

func TestProductRepoCRUD(t *testing.T) {
	r := repo.NewProductRepo(repotest.NewDB(t))
	ctx := context.Background()

	p := &domain.Product{
		SellerID:    "s1",
		Name:        "Desk Lamp",
		Description: "warm light",
		Price:       decimal.RequireFromString("19.99"),
		Images:      []string{"a.png", "b.png"},
	}
	require.NoError(t, r.Create(ctx, p))
	require.NotEmpty(t, p.ID)

	got, err := r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, []string{"a.png", "b.png"}, got.Images)
	assert.Equal(t, "a.png", got.PrimaryImage())

	p.Name = "Floor Lamp"
	p.Price = decimal.NewFromInt(45)
	found, err := r.Update(ctx, p)
	require.NoError(t, err)
	assert.True(t, found)
	got, _ = r.FindByID(ctx, p.ID)
	assert.Equal(t, "Floor Lamp", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(45)))

	found, err = r.Update(ctx, &domain.Product{ID: "missing", Name: "x"})
	require.NoError(t, err)
	assert.False(t, found)

	found, err = r.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, found)
	found, err = r.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, found)

	got, err = r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProductRepoFindByIDsAndList(t *testing.T) {
	r := repo.NewProductRepo(repotest.NewDB(t))
	ctx := context.Background()
	var ids []string
	for i, n := range []string{"red mug", "blue mug", "plate"} {
		seller := "s1"
		if i == 2 {
			seller = "s2"
		}
		p := &domain.Product{Name: n, SellerID: seller, Price: decimal.NewFromInt(int64(i + 1))}
		require.NoError(t, r.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	ps, err := r.FindByIDs(ctx, []string{ids[0], "nope", ids[2]})
	require.NoError(t, err)
	assert.Len(t, ps, 2)

	ps, err = r.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, ps)

	list, total, err := r.List(ctx, domain.ProductFilter{Q: "mug", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	list, total, err = r.List(ctx, domain.ProductFilter{SellerID: "s2", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "plate", list[0].Name)

	list, total, err = r.List(ctx, domain.ProductFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 1)
}

func TestSellerRepo(t *testing.T) {
	r := repo.NewSellerRepo(repotest.NewDB(t))
	ctx := context.Background()

	s := &domain.Seller{Name: "Acme", Image: "acme.png"}
	require.NoError(t, r.Create(ctx, s))

	got, err := r.FindByID(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "acme.png", got.Image)

	none, err := r.FindByID(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, none)

	ss, err := r.FindByIDs(ctx, []string{s.ID, "x"})
	require.NoError(t, err)
	assert.Len(t, ss, 1)
}
