package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/poojakit/poojakit-backend/internal/notify"
	"github.com/poojakit/poojakit-backend/pkg/db/models"
	dbtypes "github.com/poojakit/poojakit-backend/pkg/db/types"
	"github.com/poojakit/poojakit-backend/pkg/enums"
	pkgerrors "github.com/poojakit/poojakit-backend/pkg/errors"
	"github.com/poojakit/poojakit-backend/pkg/logger"
	"github.com/poojakit/poojakit-backend/pkg/metrics"
)

// maxTrackingAttempts bounds the redraw loop when a freshly generated
// tracking id is already taken.
const maxTrackingAttempts = 5

// relayTimeout bounds the detached notification goroutine; the request that
// placed the order has usually completed by the time the relay finishes.
const relayTimeout = 15 * time.Second

// Service defines the order behavior needed by the public and admin
// controllers.
type Service interface {
	Place(ctx context.Context, req PlaceOrderRequest, userID *uuid.UUID) (*PlacedResponse, error)
	Track(ctx context.Context, trackingID string) (*OrderDTO, error)
	List(ctx context.Context) ([]OrderDTO, error)
	UpdateStatus(ctx context.Context, trackingID, status string) error
}

type repository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) error
}

type pricer interface {
	PriceOf(ctx context.Context, productID string) (price int, found bool, err error)
}

type notifier interface {
	OrderPlaced(ctx context.Context, notification notify.OrderNotification) error
}

type service struct {
	repo     repository
	catalog  pricer
	notifier notifier
	logg     *logger.Logger
	metrics  *metrics.HTTPMetrics
	genID    func() string
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	Repo    repository
	Catalog pricer
	// Notifier may be nil; placement then skips the relay entirely.
	Notifier notifier
	Logger   *logger.Logger
	Metrics  *metrics.HTTPMetrics
	// GenerateID overrides tracking id generation, used by tests.
	GenerateID func() string
}

// NewService constructs an order service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	genID := params.GenerateID
	if genID == nil {
		genID = GenerateTrackingID
	}
	return &service{
		repo:     params.Repo,
		catalog:  params.Catalog,
		notifier: params.Notifier,
		logg:     params.Logger,
		metrics:  params.Metrics,
		genID:    genID,
	}, nil
}

func (s *service) Place(ctx context.Context, req PlaceOrderRequest, userID *uuid.UUID) (*PlacedResponse, error) {
	if req.Name == "" || req.Phone == "" || req.Address == "" || len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, phone, address and items are required")
	}

	items, total, err := s.snapshotItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	if req.Total != total {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"client_total": req.Total,
			"server_total": total,
		}), "rejecting order with mismatched total")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total does not match items")
	}

	order := &models.Order{
		UserID:  userID,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
		Pin:     req.Pin,
		Items:   items,
		Total:   total,
		Status:  enums.OrderStatusPending,
		ETA:     etaFromMillis(req.ETA),
	}

	created, err := s.createWithFreshID(ctx, order)
	if err != nil {
		return nil, err
	}

	s.relayAsync(created)

	return &PlacedResponse{OK: true, ID: created.ID}, nil
}

// snapshotItems copies the submitted cart into the order's immutable item
// snapshot. Cart contents come from browser storage and are untrusted: entries
// that carry a catalog id must match the catalog price, and the total is
// recomputed server-side and checked against the client's claim.
func (s *service) snapshotItems(ctx context.Context, inputs []ItemInput) (dbtypes.OrderItems, int, error) {
	items := make(dbtypes.OrderItems, 0, len(inputs))
	for _, in := range inputs {
		if in.Title == "" {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "item title is required")
		}
		if in.Price < 0 {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "item price must not be negative")
		}
		if in.ID != "" {
			catalogPrice, found, err := s.catalog.PriceOf(ctx, in.ID)
			if err != nil {
				return nil, 0, err
			}
			if found && catalogPrice != in.Price {
				return nil, 0, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("item %s price does not match the catalog", in.ID))
			}
		}
		items = append(items, dbtypes.OrderItem{
			ProductID: in.ID,
			Title:     in.Title,
			Price:     in.Price,
			Qty:       in.Qty,
		})
	}
	return items, items.Total(), nil
}

// createWithFreshID draws tracking ids until one is unused, then inserts. The
// id space is small enough that collisions happen in practice, so both the
// pre-check and the insert race are handled.
func (s *service) createWithFreshID(ctx context.Context, order *models.Order) (*models.Order, error) {
	var lastErr error
	for attempt := 0; attempt < maxTrackingAttempts; attempt++ {
		id := s.genID()

		_, err := s.repo.FindByID(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check tracking id")
		}

		order.ID = id
		created, err := s.repo.Create(ctx, order)
		if err == nil {
			return created, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("exhausted %d tracking id attempts", maxTrackingAttempts)
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "create order")
}

// relayAsync fires the order notification on a detached context so a slow or
// failing form endpoint never delays the placement response.
func (s *service) relayAsync(order *models.Order) {
	if s.notifier == nil {
		return
	}

	logCtx := s.logg.WithField(context.Background(), "order_id", order.ID)
	notification := notify.OrderNotification{
		TrackingID: order.ID,
		Name:       order.Name,
		Phone:      order.Phone,
		Address:    order.Address,
		City:       order.City,
		Pin:        order.Pin,
		Items:      order.Items,
		Total:      order.Total,
	}

	go func() {
		relayCtx, cancel := context.WithTimeout(logCtx, relayTimeout)
		defer cancel()

		if err := s.notifier.OrderPlaced(relayCtx, notification); err != nil {
			s.metrics.IncRelay("error")
			s.logg.Error(logCtx, "order notification relay failed", err)
			return
		}
		s.metrics.IncRelay("ok")
		s.logg.Info(logCtx, "order notification relayed")
	}()
}

func (s *service) Track(ctx context.Context, trackingID string) (*OrderDTO, error) {
	id := strings.ToUpper(strings.TrimSpace(trackingID))
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context) ([]OrderDTO, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return fromModels(orders), nil
}

func (s *service) UpdateStatus(ctx context.Context, trackingID, status string) error {
	next, err := enums.ParseOrderStatus(status)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	id := strings.ToUpper(strings.TrimSpace(trackingID))
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}

	if !order.Status.CanTransitionTo(next) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	return nil
}

func etaFromMillis(millis *int64) *time.Time {
	if millis == nil || *millis <= 0 {
		return nil
	}
	t := time.UnixMilli(*millis).UTC()
	return &t
}
