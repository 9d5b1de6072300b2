package models

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// TargetPriceError classifies why a target price cannot be submitted.
type TargetPriceError int

const (
	TargetPriceOK TargetPriceError = iota
	TargetPriceEmpty
	TargetPriceInvalidNumber
	TargetPriceNotBelowReference
	TargetPriceTooLow
)

func (e TargetPriceError) String() string {
	switch e {
	case TargetPriceOK:
		return "NONE"
	case TargetPriceEmpty:
		return "EMPTY"
	case TargetPriceInvalidNumber:
		return "INVALID_NUMBER"
	case TargetPriceNotBelowReference:
		return "NOT_BELOW_REFERENCE"
	case TargetPriceTooLow:
		return "TOO_LOW"
	default:
		return "UNKNOWN"
	}
}

// Message returns the inline message shown next to the price input.
func (e TargetPriceError) Message() string {
	switch e {
	case TargetPriceEmpty:
		return "请输入有效的目标价格"
	case TargetPriceInvalidNumber:
		return "请输入有效价格"
	case TargetPriceNotBelowReference:
		return "目标价格需低于当前价格"
	case TargetPriceTooLow:
		return "目标价格过低"
	default:
		return ""
	}
}

// Slider stops, in percent of the reference price.
const (
	SliderMinPercent = 10
	SliderMaxPercent = 95
)

var (
	// PresetTolerance is the absolute distance under which a preset counts as selected.
	PresetTolerance = decimal.NewFromFloat(0.01)

	// MinTargetRatio is the lowest accepted target as a fraction of the reference price.
	MinTargetRatio = decimal.NewFromFloat(0.1)

	hundred = decimal.NewFromInt(100)
)

// DiscountPreset is a one-click "N% off" shortcut.
type DiscountPreset struct {
	Label    string
	Discount decimal.Decimal
}

// DiscountPresets lists the shortcuts in display order.
var DiscountPresets = []DiscountPreset{
	{Label: "9折", Discount: decimal.NewFromFloat(0.1)},
	{Label: "8折", Discount: decimal.NewFromFloat(0.2)},
	{Label: "7折", Discount: decimal.NewFromFloat(0.3)},
	{Label: "半价", Discount: decimal.NewFromFloat(0.5)},
}

// Price returns the preset's target price for the given reference price.
func (p DiscountPreset) Price(reference decimal.Decimal) decimal.Decimal {
	return reference.Mul(decimal.NewFromInt(1).Sub(p.Discount)).Round(2)
}

// Savings is what the user would save if the alert fired at the target price.
type Savings struct {
	Amount  decimal.Decimal `json:"amount"`
	Percent decimal.Decimal `json:"percent"`
}

// TargetPriceState keeps the typed text, the numeric value and the slider position
// of a target price in sync. Every setter returns a new state.
type TargetPriceState struct {
	ReferencePrice decimal.Decimal
	RawInput       string
	Value          *decimal.Decimal
	SliderPercent  int
	Error          TargetPriceError
}

// NewTargetPriceState starts an empty editor for a new alert.
func NewTargetPriceState(reference decimal.Decimal) TargetPriceState {
	return TargetPriceState{
		ReferencePrice: reference,
		SliderPercent:  SliderMaxPercent,
	}
}

// NewEditTargetPriceState seeds the editor from a previously stored target price.
func NewEditTargetPriceState(reference decimal.Decimal, stored *decimal.Decimal) TargetPriceState {
	s := NewTargetPriceState(reference)
	if stored == nil || !stored.IsPositive() {
		return s
	}
	v := *stored
	s.RawInput = v.String()
	s.Value = &v
	s.Error = ValidateTargetPrice(s.Value, reference)
	if reference.IsPositive() {
		s.SliderPercent = percentOf(v, reference)
	}
	return s
}

// ValidateTargetPrice applies the alert rules in order. A nil value means nothing
// was entered, which is not an error but is not submittable either.
func ValidateTargetPrice(value *decimal.Decimal, reference decimal.Decimal) TargetPriceError {
	if value == nil {
		return TargetPriceOK
	}
	if !value.IsPositive() {
		return TargetPriceInvalidNumber
	}
	if value.GreaterThanOrEqual(reference) {
		return TargetPriceNotBelowReference
	}
	if value.LessThan(reference.Mul(MinTargetRatio)) {
		return TargetPriceTooLow
	}
	return TargetPriceOK
}

// priceTextPattern is what a numeric price field accepts: plain decimals, no exponent.
var priceTextPattern = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

// ParsePriceText parses user-typed price text. Exponent notation is rejected.
func ParsePriceText(text string) (decimal.Decimal, bool) {
	text = strings.TrimSpace(text)
	if !priceTextPattern.MatchString(text) {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// SetFromText handles a keystroke in the price input.
func (s TargetPriceState) SetFromText(text string) TargetPriceState {
	s.RawInput = text
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		s.Value = nil
		s.Error = TargetPriceOK
		return s
	}

	v, ok := ParsePriceText(trimmed)
	if !ok {
		s.Value = nil
		s.Error = TargetPriceInvalidNumber
		return s
	}
	s.Value = &v
	s.Error = ValidateTargetPrice(s.Value, s.ReferencePrice)
	if s.Error == TargetPriceOK {
		s.SliderPercent = percentOf(v, s.ReferencePrice)
	}
	return s
}

// SetFromSlider handles a slider drag.
func (s TargetPriceState) SetFromSlider(percent int) TargetPriceState {
	percent = clampPercent(percent)
	v := s.ReferencePrice.Mul(decimal.NewFromInt(int64(percent))).Div(hundred).Round(2)
	s.SliderPercent = percent
	return s.withValue(v)
}

// SetFromPreset handles a click on a discount preset.
func (s TargetPriceState) SetFromPreset(discount decimal.Decimal) TargetPriceState {
	v := DiscountPreset{Discount: discount}.Price(s.ReferencePrice)
	s.SliderPercent = clampPercent(int(hundred.Sub(discount.Mul(hundred)).Round(0).IntPart()))
	return s.withValue(v)
}

func (s TargetPriceState) withValue(v decimal.Decimal) TargetPriceState {
	s.Value = &v
	s.RawInput = v.StringFixed(2)
	s.Error = ValidateTargetPrice(s.Value, s.ReferencePrice)
	return s
}

// IsSubmittable reports whether the alert can be saved as is.
func (s TargetPriceState) IsSubmittable() bool {
	if s.Value == nil || s.Error != TargetPriceOK {
		return false
	}
	return s.Value.IsPositive() && s.Value.LessThan(s.ReferencePrice)
}

// SubmitError returns the reason submission is blocked, or TargetPriceOK.
func (s TargetPriceState) SubmitError() TargetPriceError {
	if s.Value == nil {
		if s.Error != TargetPriceOK {
			return s.Error
		}
		return TargetPriceEmpty
	}
	if s.Error != TargetPriceOK {
		return s.Error
	}
	if !s.IsSubmittable() {
		return TargetPriceNotBelowReference
	}
	return TargetPriceOK
}

// Savings is zero unless the state is submittable.
func (s TargetPriceState) Savings() Savings {
	if !s.IsSubmittable() {
		return Savings{Amount: decimal.Zero, Percent: decimal.Zero}
	}
	amount := s.ReferencePrice.Sub(*s.Value)
	return Savings{
		Amount:  amount,
		Percent: amount.Mul(hundred).Div(s.ReferencePrice),
	}
}

// ActivePreset returns the preset matching the current value, if any.
func (s TargetPriceState) ActivePreset() (DiscountPreset, bool) {
	if s.Value == nil {
		return DiscountPreset{}, false
	}
	for _, p := range DiscountPresets {
		if s.Value.Sub(p.Price(s.ReferencePrice)).Abs().LessThan(PresetTolerance) {
			return p, true
		}
	}
	return DiscountPreset{}, false
}

// TargetPriceUpdate is one edit coming from a single input channel.
type TargetPriceUpdate interface {
	apply(TargetPriceState) TargetPriceState
}

// TextEdit is a change of the typed price.
type TextEdit struct{ Text string }

// SliderEdit is a slider move.
type SliderEdit struct{ Percent int }

// PresetEdit is a preset click.
type PresetEdit struct{ Discount decimal.Decimal }

func (u TextEdit) apply(s TargetPriceState) TargetPriceState   { return s.SetFromText(u.Text) }
func (u SliderEdit) apply(s TargetPriceState) TargetPriceState { return s.SetFromSlider(u.Percent) }
func (u PresetEdit) apply(s TargetPriceState) TargetPriceState { return s.SetFromPreset(u.Discount) }

// Apply returns the state after the given edit.
func (s TargetPriceState) Apply(u TargetPriceUpdate) TargetPriceState {
	return u.apply(s)
}

// percentOf is the slider position for value; callers guarantee reference > 0.
func percentOf(value, reference decimal.Decimal) int {
	return clampPercent(int(value.Mul(hundred).Div(reference).Round(0).IntPart()))
}

func clampPercent(p int) int {
	if p < SliderMinPercent {
		return SliderMinPercent
	}
	if p > SliderMaxPercent {
		return SliderMaxPercent
	}
	return p
}
