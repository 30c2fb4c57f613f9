package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/poojakit/poojakit-backend/pkg/db/models"
	pkgerrors "github.com/poojakit/poojakit-backend/pkg/errors"
)

// Service defines the catalog behavior needed by the controllers and the
// order service.
type Service interface {
	List(ctx context.Context) ([]models.Product, error)
	// PriceOf returns the catalog price for a product id, or found=false for
	// unknown ids.
	PriceOf(ctx context.Context, productID string) (price int, found bool, err error)
}

type repository interface {
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

type service struct {
	repo repository
}

// NewService constructs a catalog service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *service) PriceOf(ctx context.Context, productID string) (int, bool, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
	return product.Price, true, nil
}
