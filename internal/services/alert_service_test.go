package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tropicaldog17/dealwatch/internal/errors"
	"github.com/tropicaldog17/dealwatch/internal/models"
)

func testProduct(price string) *models.Product {
	return &models.Product{ActivityID: "a1", Title: "双人套餐", CurrentPrice: decimal.RequireFromString(price), SalesStatus: models.SalesStatusOnSale}
}

func TestAlertService_SubmitCreatesAlert(t *testing.T) {
	client := newMockBackendClient()
	svc := NewAlertService(client, nil)
	product := testProduct("100")

	state := svc.Editor(product, false).Apply(models.PresetEdit{Discount: decimal.RequireFromString("0.2")})
	require.NoError(t, svc.Submit(context.Background(), product, state, false))

	require.Len(t, client.saved, 1)
	assert.Equal(t, "a1", client.saved[0].activityID)
	assert.True(t, client.saved[0].targetPrice.Equal(decimal.NewFromInt(80)))
	assert.False(t, client.saved[0].update)
}

func TestAlertService_EditorWithoutProduct(t *testing.T) {
	svc := NewAlertService(newMockBackendClient(), nil)

	state := svc.Editor(nil, true)
	assert.True(t, state.ReferencePrice.IsZero())
	assert.Nil(t, state.Value)
	assert.False(t, state.IsSubmittable())
	assert.Error(t, svc.Submit(context.Background(), nil, state, true))
}

func TestAlertService_SubmitUpdatesInEditMode(t *testing.T) {
	client := newMockBackendClient()
	svc := NewAlertService(client, nil)
	product := testProduct("50")
	stored := decimal.RequireFromString("40")
	product.TargetPrice = &stored
	product.HasNotification = true

	state := svc.Editor(product, true)
	assert.Equal(t, "40", state.RawInput)
	assert.Equal(t, 80, state.SliderPercent)

	state = state.Apply(models.SliderEdit{Percent: 60})
	require.NoError(t, svc.Submit(context.Background(), product, state, true))
	require.Len(t, client.saved, 1)
	assert.True(t, client.saved[0].update)
	assert.True(t, client.saved[0].targetPrice.Equal(decimal.NewFromInt(30)))
}

func TestAlertService_RefusesInvalidStates(t *testing.T) {
	product := testProduct("100")
	tests := []struct {
		name  string
		input string
		code  string
		msg   string
	}{
		{"empty", "", "EMPTY", "请输入有效的目标价格"},
		{"not a number", "abc", "INVALID_NUMBER", "请输入有效价格"},
		{"not below current", "100", "NOT_BELOW_REFERENCE", "目标价格需低于当前价格"},
		{"too low", "9", "TOO_LOW", "目标价格过低"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockBackendClient()
			svc := NewAlertService(client, nil)
			state := svc.Editor(product, false).Apply(models.TextEdit{Text: tt.input})

			err := svc.Submit(context.Background(), product, state, false)
			v, ok := apperrors.AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, "targetPrice", v.Field)
			assert.Equal(t, tt.code, v.Code)
			assert.Equal(t, tt.msg, v.Message)
			assert.Empty(t, client.saved)
		})
	}
}

func TestAlertService_RechecksAgainstLivePrice(t *testing.T) {
	client := newMockBackendClient()
	svc := NewAlertService(client, nil)

	state := svc.Editor(testProduct("100"), false).Apply(models.TextEdit{Text: "60"})
	require.True(t, state.IsSubmittable())

	// the deal dropped to 55 while the dialog was open
	err := svc.Submit(context.Background(), testProduct("55"), state, false)
	v, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_BELOW_REFERENCE", v.Code)
	assert.Empty(t, client.saved)
}

func TestAlertService_WrapsBackendErrors(t *testing.T) {
	client := newMockBackendClient()
	client.saveErr = &apperrors.ErrAPI{Status: 500, Message: "boom"}
	svc := NewAlertService(client, nil)
	product := testProduct("20")

	err := svc.Submit(context.Background(), product, svc.Editor(product, false).Apply(models.TextEdit{Text: "15"}), false)
	require.Error(t, err)
	_, ok := apperrors.AsAPI(err)
	assert.True(t, ok)
	_, ok = apperrors.AsValidation(err)
	assert.False(t, ok)
}

func TestAlertService_Remove(t *testing.T) {
	client := newMockBackendClient()
	svc := NewAlertService(client, nil)

	require.NoError(t, svc.Remove(context.Background(), "a1"))
	assert.Equal(t, []string{"a1"}, client.deleted)

	err := svc.Remove(context.Background(), "")
	var v *apperrors.ErrValidation
	assert.True(t, errors.As(err, &v))
}
