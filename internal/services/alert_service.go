package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/dealwatch/internal/errors"
	"github.com/tropicaldog17/dealwatch/internal/logger"
	"github.com/tropicaldog17/dealwatch/internal/models"
)

type alertService struct {
	client BackendClient
	logger *zap.Logger
}

func NewAlertService(client BackendClient, log *zap.Logger) AlertService {
	return &alertService{client: client, logger: logger.OrNop(log)}
}

// Editor returns the initial target price state for a product's alert dialog.
func (s *alertService) Editor(product *models.Product, isEdit bool) models.TargetPriceState {
	if product == nil {
		return models.NewTargetPriceState(decimal.Zero)
	}
	if isEdit && product.TargetPrice != nil {
		return models.NewEditTargetPriceState(product.CurrentPrice, product.TargetPrice)
	}
	return models.NewTargetPriceState(product.CurrentPrice)
}

// Submit saves the alert, refusing states that are not submittable.
func (s *alertService) Submit(ctx context.Context, product *models.Product, state models.TargetPriceState, isEdit bool) error {
	if product == nil || product.ActivityID == "" {
		return &apperrors.ErrValidation{Field: "activityId", Code: "EMPTY", Message: "product is required"}
	}
	if code := state.SubmitError(); code != models.TargetPriceOK {
		return &apperrors.ErrValidation{Field: "targetPrice", Code: code.String(), Message: code.Message()}
	}
	if !state.ReferencePrice.Equal(product.CurrentPrice) {
		// the price moved while the dialog was open; re-check against the live one
		state = models.NewEditTargetPriceState(product.CurrentPrice, state.Value)
		if code := state.SubmitError(); code != models.TargetPriceOK {
			return &apperrors.ErrValidation{Field: "targetPrice", Code: code.String(), Message: code.Message()}
		}
	}

	target := *state.Value
	var err error
	if isEdit {
		err = s.client.UpdateNotification(ctx, product.ActivityID, target)
	} else {
		err = s.client.CreateNotification(ctx, product.ActivityID, target)
	}
	if err != nil {
		s.logger.Error("failed to save price alert",
			zap.String("activity_id", product.ActivityID),
			zap.Bool("edit", isEdit),
			zap.Error(err),
		)
		return fmt.Errorf("save alert: %w", err)
	}

	s.logger.Info("price alert saved",
		zap.String("activity_id", product.ActivityID),
		zap.String("target_price", target.StringFixed(2)),
		zap.String("current_price", product.CurrentPrice.StringFixed(2)),
		zap.Bool("edit", isEdit),
	)
	return nil
}

func (s *alertService) Remove(ctx context.Context, activityID string) error {
	if activityID == "" {
		return &apperrors.ErrValidation{Field: "activityId", Code: "EMPTY", Message: "activityId is required"}
	}
	if err := s.client.DeleteNotification(ctx, activityID); err != nil {
		return fmt.Errorf("remove alert: %w", err)
	}
	s.logger.Info("price alert removed", zap.String("activity_id", activityID))
	return nil
}
