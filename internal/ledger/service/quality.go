package service

import (
	"context"
	"time"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/events"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
	"github.com/foodtrace/foodtrace-backend/pkg/messaging"
)

// QualityService records quality checks against products and lots
type QualityService struct {
	quality  *repository.QualityRepository
	products *repository.ProductRepository
	lots     *repository.LotRepository
	events   *events.Publisher
	log      *logger.Logger
}

// NewQualityService creates the quality service
func NewQualityService(
	quality *repository.QualityRepository,
	products *repository.ProductRepository,
	lots *repository.LotRepository,
	pub *events.Publisher,
	log *logger.Logger,
) *QualityService {
	return &QualityService{
		quality:  quality,
		products: products,
		lots:     lots,
		events:   pub,
		log:      log.WithComponent("quality"),
	}
}

// CreateCheckType creates a quality check type
func (s *QualityService) CreateCheckType(ctx context.Context, t *repository.QualityCheckType) error {
	if t.Name == "" {
		return errors.Validation(map[string]string{"name": "is required"})
	}
	return s.quality.CreateType(ctx, t)
}

// ListCheckTypes lists active quality check types
func (s *QualityService) ListCheckTypes(ctx context.Context) ([]*repository.QualityCheckType, error) {
	return s.quality.ListTypes(ctx)
}

// RecordCheckInput describes a quality check to record. Exactly a product
// or a lot target is required; a lot check also names the lot's product.
type RecordCheckInput struct {
	CheckTypeID string  `json:"check_type_id" validate:"required,uuid"`
	ProductID   *string `json:"product_id,omitempty"`
	LotID       *string `json:"lot_id,omitempty"`
	Passed      bool    `json:"passed"`
	Notes       *string `json:"notes,omitempty"`
}

// RecordCheck records a quality check against a product or a lot
func (s *QualityService) RecordCheck(ctx context.Context, in RecordCheckInput) (*repository.QualityCheck, error) {
	if in.ProductID == nil && in.LotID == nil {
		return nil, errors.Validation(map[string]string{"target": "a product_id or lot_id is required"})
	}

	checkType, err := s.quality.GetType(ctx, in.CheckTypeID)
	if err != nil {
		return nil, err
	}

	productID := in.ProductID
	if in.LotID != nil {
		lot, err := s.lots.GetByID(ctx, *in.LotID)
		if err != nil {
			return nil, err
		}
		if productID == nil {
			productID = &lot.ProductID
		} else if *productID != lot.ProductID {
			return nil, errors.Validation(map[string]string{"product_id": "does not match the lot's product"})
		}
	} else if productID != nil {
		if _, err := s.products.GetByID(ctx, *productID); err != nil {
			return nil, err
		}
	}

	by := performedBy(ctx)
	check := &repository.QualityCheck{
		CheckTypeID: in.CheckTypeID,
		ProductID:   productID,
		LotID:       in.LotID,
		Passed:      in.Passed,
		Notes:       in.Notes,
		CheckedBy:   by,
	}
	if err := s.quality.Create(ctx, check); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("check_id", check.ID).
		Str("check_type", checkType.Name).
		Bool("passed", check.Passed).
		Msg("quality check recorded")

	event := messaging.QualityRecordedEvent{
		CheckID:   check.ID,
		CheckType: checkType.Name,
		Passed:    check.Passed,
		CheckedBy: actorID(ctx),
	}
	if check.ProductID != nil {
		event.ProductID = *check.ProductID
	}
	if check.LotID != nil {
		event.LotID = *check.LotID
	}
	s.events.QualityRecorded(ctx, event)
	return check, nil
}

// ChecksByLot lists checks recorded against a lot
func (s *QualityService) ChecksByLot(ctx context.Context, lotID string) ([]*repository.QualityCheckRow, error) {
	return s.quality.ListByLot(ctx, lotID)
}

// ChecksByProduct lists checks recorded against a product
func (s *QualityService) ChecksByProduct(ctx context.Context, productID string) ([]*repository.QualityCheckRow, error) {
	return s.quality.ListByProduct(ctx, productID)
}

// FailureRates aggregates failure rates per check type over a window
func (s *QualityService) FailureRates(ctx context.Context, from, to time.Time) ([]*repository.FailureRate, error) {
	if !to.After(from) {
		return nil, errors.Validation(map[string]string{"to": "must be after from"})
	}
	return s.quality.FailureRates(ctx, from, to)
}
