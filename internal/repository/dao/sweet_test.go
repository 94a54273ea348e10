package dao

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database so every pooled connection sees the
	// same in-memory store.
	dsn := fmt.Sprintf("file:%v?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, InitTables(db))

	return db
}

func mustDecimal(t *testing.T, v string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(v)
	require.NoError(t, err)

	return d
}

func insertSweet(t *testing.T, d *SweetDAO, name, category, price string, quantity int) Sweet {
	t.Helper()

	sweet, err := d.Insert(context.Background(), Sweet{
		Name:      name,
		Category:  category,
		Price:     mustDecimal(t, price),
		Quantity:  quantity,
		CreatedBy: 1,
	})
	require.NoError(t, err)
	require.NotZero(t, sweet.ID)

	return sweet
}

func TestSweetDAO_Insert(t *testing.T) {
	d := NewSweetDAO(newTestDB(t))

	insertSweet(t, d, "Gummy Bears", "Gummies", "2.50", 5)

	_, err := d.Insert(context.Background(), Sweet{
		Name:      "Gummy Bears",
		Category:  "Chocolate",
		Price:     mustDecimal(t, "9.99"),
		CreatedBy: 1,
	})
	require.ErrorIs(t, err, ErrSweetNameExists)
}

func TestSweetDAO_FindByID(t *testing.T) {
	d := NewSweetDAO(newTestDB(t))

	created := insertSweet(t, d, "Caramel Fudge", "Chocolate", "3.50", 10)

	found, err := d.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Caramel Fudge", found.Name)
	require.True(t, found.Price.Equal(mustDecimal(t, "3.50")))

	_, err = d.FindByID(context.Background(), 9999)
	require.ErrorIs(t, err, ErrSweetNotFound)
}

func TestSweetDAO_Update(t *testing.T) {
	d := NewSweetDAO(newTestDB(t))
	ctx := context.Background()

	created := insertSweet(t, d, "Caramel Fudge", "Chocolate", "3.50", 10)
	insertSweet(t, d, "Gummy Bears", "Gummies", "2.50", 5)

	updated, err := d.Update(ctx, created.ID, map[string]interface{}{
		"description": "classic caramel with fudge center",
		"price":       mustDecimal(t, "4.00"),
	})
	require.NoError(t, err)
	require.Equal(t, "classic caramel with fudge center", updated.Description)
	require.True(t, updated.Price.Equal(mustDecimal(t, "4.00")))
	require.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	// Renaming onto an existing name must collide.
	_, err = d.Update(ctx, created.ID, map[string]interface{}{"name": "Gummy Bears"})
	require.ErrorIs(t, err, ErrSweetNameExists)

	_, err = d.Update(ctx, 9999, map[string]interface{}{"name": "Nope"})
	require.ErrorIs(t, err, ErrSweetNotFound)
}

func TestSweetDAO_Delete(t *testing.T) {
	d := NewSweetDAO(newTestDB(t))
	ctx := context.Background()

	created := insertSweet(t, d, "Caramel Fudge", "Chocolate", "3.50", 10)

	require.NoError(t, d.Delete(ctx, created.ID))

	_, err := d.FindByID(ctx, created.ID)
	require.ErrorIs(t, err, ErrSweetNotFound)

	require.ErrorIs(t, d.Delete(ctx, created.ID), ErrSweetNotFound)
}

func seedForListing(t *testing.T, d *SweetDAO) {
	t.Helper()

	insertSweet(t, d, "Caramel Fudge", "Chocolate", "3.50", 10)
	insertSweet(t, d, "Dark Truffle", "Chocolate", "5.00", 4)
	insertSweet(t, d, "Gummy Bears", "Gummies", "2.50", 5)
	insertSweet(t, d, "Sour Worms", "Gummies", "3.00", 0)
}

func TestSweetDAO_List(t *testing.T) {
	d := NewSweetDAO(newTestDB(t))
	ctx := context.Background()
	seedForListing(t, d)

	t.Run("no filters returns everything ordered by name", func(t *testing.T) {
		sweets, err := d.List(ctx, SweetQuery{}, 0, 20)
		require.NoError(t, err)
		require.Len(t, sweets, 4)
		require.Equal(t, "Caramel Fudge", sweets[0].Name)
		require.Equal(t, "Dark Truffle", sweets[1].Name)
		require.Equal(t, "Gummy Bears", sweets[2].Name)
		require.Equal(t, "Sour Worms", sweets[3].Name)
	})

	t.Run("name substring match is case-insensitive", func(t *testing.T) {
		sweets, err := d.List(ctx, SweetQuery{Name: "gummy"}, 0, 20)
		require.NoError(t, err)
		require.Len(t, sweets, 1)
		require.Equal(t, "Gummy Bears", sweets[0].Name)
	})

	t.Run("category and min price combine conjunctively", func(t *testing.T) {
		minPrice := mustDecimal(t, "4.00")
		sweets, err := d.List(ctx, SweetQuery{Category: "choc", MinPrice: &minPrice}, 0, 20)
		require.NoError(t, err)
		require.Len(t, sweets, 1)
		require.Equal(t, "Dark Truffle", sweets[0].Name)
	})

	t.Run("price bounds are inclusive", func(t *testing.T) {
		minPrice := mustDecimal(t, "2.50")
		maxPrice := mustDecimal(t, "3.50")
		sweets, err := d.List(ctx, SweetQuery{MinPrice: &minPrice, MaxPrice: &maxPrice}, 0, 20)
		require.NoError(t, err)
		require.Len(t, sweets, 3)
	})

	t.Run("inverted price range yields the empty set", func(t *testing.T) {
		minPrice := mustDecimal(t, "5.00")
		maxPrice := mustDecimal(t, "3.00")
		sweets, err := d.List(ctx, SweetQuery{MinPrice: &minPrice, MaxPrice: &maxPrice}, 0, 20)
		require.NoError(t, err)
		require.Empty(t, sweets)
	})

	t.Run("pagination", func(t *testing.T) {
		sweets, err := d.List(ctx, SweetQuery{}, 2, 2)
		require.NoError(t, err)
		require.Len(t, sweets, 2)
		require.Equal(t, "Gummy Bears", sweets[0].Name)
	})
}

func TestSweetDAO_AdjustQuantity(t *testing.T) {
	d := NewSweetDAO(newTestDB(t))
	ctx := context.Background()

	created := insertSweet(t, d, "Gummy Bears", "Gummies", "2.50", 5)

	t.Run("purchase decrements", func(t *testing.T) {
		sweet, err := d.AdjustQuantity(ctx, created.ID, -2)
		require.NoError(t, err)
		require.Equal(t, 3, sweet.Quantity)
	})

	t.Run("overdraw fails without side effects", func(t *testing.T) {
		_, err := d.AdjustQuantity(ctx, created.ID, -10)
		require.ErrorIs(t, err, ErrInsufficientStock)

		sweet, err := d.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, 3, sweet.Quantity)
	})

	t.Run("restock is additive, not idempotent", func(t *testing.T) {
		_, err := d.AdjustQuantity(ctx, created.ID, 5)
		require.NoError(t, err)
		sweet, err := d.AdjustQuantity(ctx, created.ID, 5)
		require.NoError(t, err)
		require.Equal(t, 13, sweet.Quantity)
	})

	t.Run("draining to exactly zero is allowed", func(t *testing.T) {
		sweet, err := d.AdjustQuantity(ctx, created.ID, -13)
		require.NoError(t, err)
		require.Equal(t, 0, sweet.Quantity)
	})

	t.Run("missing record reports not found, not insufficient stock", func(t *testing.T) {
		_, err := d.AdjustQuantity(ctx, 9999, -1)
		require.ErrorIs(t, err, ErrSweetNotFound)
	})
}

func TestUserDAO_Insert(t *testing.T) {
	d := NewUserDAO(newTestDB(t))
	ctx := context.Background()

	created, err := d.Insert(ctx, User{
		Email:    "customer@example.com",
		Password: "hashed",
		Name:     "customer",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.False(t, created.IsAdmin)

	_, err = d.Insert(ctx, User{
		Email:    "customer@example.com",
		Password: "hashed",
		Name:     "someone else",
	})
	require.ErrorIs(t, err, ErrUserEmailExists)

	found, err := d.FindByEmail(ctx, "customer@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = d.FindByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}
