package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

var (
	supplierA = Caller{AccountID: "supplier-a", Role: domain.RoleSupplier}
	supplierB = Caller{AccountID: "supplier-b", Role: domain.RoleSupplier}
	vendorV   = Caller{AccountID: "vendor-v", Role: domain.RoleVendor}
	adminCall = Caller{AccountID: "admin", Role: domain.RoleAdmin}
)

func tomatoes() ProductInput {
	return ProductInput{Name: " Tomatoes ", Category: "Vegetables", PricePerUnit: 2.5, Unit: "kg", AvailableQuantity: 100}
}

func TestProductDeleteWithOrdersConflicts(t *testing.T) {
	repo := newFakeProductRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewProductService(ProductDependencies{ProductRepo: repo, Dispatcher: dispatcher})
	ctx := context.Background()

	product, err := svc.Create(ctx, supplierA, tomatoes())
	require.NoError(t, err)

	repo.deleteErr = fmt.Errorf("delete product: %w", &pgconn.PgError{Code: "23503"})
	err = svc.Delete(ctx, supplierA, product.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(err))
	assert.Equal(t, "product has bookings", apperrors.ToDomainError(err).Message)
	assert.Equal(t, []events.EventType{events.EventProductCreated}, dispatcher.types())

	_, err = svc.Get(ctx, product.ID)
	assert.NoError(t, err)
}

func TestProductCreate(t *testing.T) {
	repo := newFakeProductRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewProductService(ProductDependencies{ProductRepo: repo, Dispatcher: dispatcher})
	ctx := context.Background()

	product, err := svc.Create(ctx, supplierA, tomatoes())
	require.NoError(t, err)
	assert.Equal(t, "Tomatoes", product.Name)
	assert.Equal(t, supplierA.AccountID, product.SupplierID)
	assert.Equal(t, []events.EventType{events.EventProductCreated}, dispatcher.types())

	_, err = svc.Create(ctx, vendorV, tomatoes())
	assert.ErrorIs(t, err, auth.ErrForbidden)

	bad := tomatoes()
	bad.PricePerUnit = 0
	bad.Name = ""
	_, err = svc.Create(ctx, supplierA, bad)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestProductOwnership(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(ProductDependencies{ProductRepo: repo})
	ctx := context.Background()

	product, err := svc.Create(ctx, supplierA, tomatoes())
	require.NoError(t, err)

	in := tomatoes()
	in.PricePerUnit = 3
	_, err = svc.Update(ctx, supplierB, product.ID, in)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	updated, err := svc.Update(ctx, supplierA, product.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.PricePerUnit)

	assert.ErrorIs(t, svc.Delete(ctx, supplierB, product.ID), auth.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, adminCall, product.ID))

	_, err = svc.Get(ctx, product.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestProductList(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(ProductDependencies{ProductRepo: repo})
	ctx := context.Background()

	_, err := svc.Create(ctx, supplierA, tomatoes())
	require.NoError(t, err)
	_, err = svc.Create(ctx, supplierB, tomatoes())
	require.NoError(t, err)

	mine, err := svc.List(ctx, ProductListFilter{SupplierID: &supplierA.AccountID})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.List(ctx, ProductListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	lo, hi := 10.0, 1.0
	_, err = svc.List(ctx, ProductListFilter{MinPrice: &lo, MaxPrice: &hi})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}
