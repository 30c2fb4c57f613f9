package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/poojakit/poojakit-backend/pkg/db/models"
	pkgerrors "github.com/poojakit/poojakit-backend/pkg/errors"
)

type stubRepo struct {
	products []models.Product
	err      error
}

func (s *stubRepo) List(context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func (s *stubRepo) FindByID(_ context.Context, id string) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func TestServiceListNeverReturnsNil(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	require.NoError(t, err)

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestServiceListWrapsErrors(t *testing.T) {
	svc, err := NewService(&stubRepo{err: errors.New("boom")})
	require.NoError(t, err)

	_, err = svc.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInternal, pkgerrors.As(err).Code())
}

func TestServicePriceOf(t *testing.T) {
	svc, err := NewService(&stubRepo{products: []models.Product{
		{ID: "KIT-PRM-01", Price: 249},
	}})
	require.NoError(t, err)
	ctx := context.Background()

	price, found, err := svc.PriceOf(ctx, "KIT-PRM-01")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 249, price)

	_, found, err = svc.PriceOf(ctx, "KIT-MISSING")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}
