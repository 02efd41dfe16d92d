package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/nightmarket/aestore/internal/cart/domain"
	"github.com/nightmarket/aestore/internal/cart/repository"
	catalogrepo "github.com/nightmarket/aestore/internal/catalog/repository"
	"github.com/nightmarket/aestore/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.Exec(`
		CREATE TABLE packages (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			price INTEGER NOT NULL,
			aecoin_amount INTEGER NOT NULL,
			image_url TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL
		);
		CREATE TABLE cart_items (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			package_id INTEGER NOT NULL,
			quantity INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		);
	`).Error)

	require.NoError(t, gdb.Exec(
		`INSERT INTO packages (id, name, price, aecoin_amount, is_active, created_at)
		 VALUES (100, '1000 AECOIN', 4900, 1000, TRUE, ?),
		        (200, '500 AECOIN', 2500, 500, FALSE, ?)`,
		time.Now().UTC(), time.Now().UTC(),
	).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:          gdb,
		Log:         zaptest.NewLogger(t),
		Node:        node,
		Clock:       clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:        repository.Provide(),
		CatalogRepo: catalogrepo.Provide(),
	})
	return svc, gdb
}

func TestAdd(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	line, err := svc.Add(ctx, 42, domain.AddItemRequest{PackageID: "100", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(100), line.PackageID)
	assert.Equal(t, "1000 AECOIN", line.PackageName)
	assert.Equal(t, int64(2), line.Quantity)
	assert.Equal(t, int64(4900), line.UnitPrice)
	assert.Equal(t, int64(1000), line.AecoinAmount)
}

func TestAdd_DefaultsQuantityToOne(t *testing.T) {
	svc, _ := setupService(t)

	line, err := svc.Add(context.Background(), 42, domain.AddItemRequest{PackageID: "100"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), line.Quantity)
}

func TestAdd_MergesExistingLine(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, 42, domain.AddItemRequest{PackageID: "100", Quantity: 2})
	require.NoError(t, err)

	second, err := svc.Add(ctx, 42, domain.AddItemRequest{PackageID: "100", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(5), second.Quantity)

	lines, err := svc.List(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestAdd_InactivePackage(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Add(context.Background(), 42, domain.AddItemRequest{PackageID: "200"})
	assert.ErrorIs(t, err, domain.ErrPackageNotFound)
}

func TestAdd_UnknownPackage(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Add(context.Background(), 42, domain.AddItemRequest{PackageID: "999"})
	assert.ErrorIs(t, err, domain.ErrPackageNotFound)
}

func TestAdd_InvalidQuantity(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Add(context.Background(), 42, domain.AddItemRequest{PackageID: "100", Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.Add(context.Background(), 42, domain.AddItemRequest{PackageID: "100", Quantity: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestUpdateQuantity(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	line, err := svc.Add(ctx, 42, domain.AddItemRequest{PackageID: "100", Quantity: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateQuantity(ctx, 42, line.ID.String(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.Quantity)
}

func TestUpdateQuantity_OtherUsersItem(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	line, err := svc.Add(ctx, 42, domain.AddItemRequest{PackageID: "100"})
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, 77, line.ID.String(), 4)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestRemoveAndClear(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	line, err := svc.Add(ctx, 42, domain.AddItemRequest{PackageID: "100"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, 42, line.ID.String()))
	assert.ErrorIs(t, svc.Remove(ctx, 42, line.ID.String()), domain.ErrItemNotFound)

	_, err = svc.Add(ctx, 42, domain.AddItemRequest{PackageID: "100"})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, 42))

	lines, err := svc.List(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
