// Package pricing computes itemized ticket prices as a fixed pipeline:
// per-seat base and surcharges, order-level discounts, tax, then rounding.
// Everything runs on exact decimals and only on data already resolved from
// the catalog, so a fixed input set always prices identically.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/shopspring/decimal"
)

type LineType string

const (
	LineBase      LineType = "BASE"
	LineSurcharge LineType = "SURCHARGE"
	LineDiscount  LineType = "DISCOUNT"
	LineTax       LineType = "TAX"
	LineRounding  LineType = "ROUNDING"
)

// Line is one signed entry of the breakdown. Discounts are negative, the
// rounding delta carries whichever sign the snap produced.
type Line struct {
	Type   LineType          `json:"type"`
	Label  string            `json:"label"`
	Amount decimal.Decimal   `json:"amount"`
	Meta   map[string]string `json:"meta,omitempty"`
}

type Result struct {
	BasePrice     decimal.Decimal `json:"basePrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	RoundingDelta decimal.Decimal `json:"roundingDelta"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	Breakdown     []Line          `json:"breakdown"`
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Price runs the pipeline for every seat in pctx. Surcharges accrue per seat
// and are aggregated per label; membership, promo and voucher apply once at
// order level, each on the remainder left by the previous stage. The
// breakdown always sums exactly to the grand total.
func (e *Engine) Price(pctx *domain.PricingContext, membershipTier, voucherCode string) (*Result, error) {
	if len(pctx.Seats) == 0 {
		return nil, domain.ErrEmptySeatSet
	}

	weekend := isWeekend(pctx.ShowStart)
	evening := pctx.ShowStart.Hour() >= e.cfg.EveningStartHour

	breakdown := []Line{{
		Type:   LineBase,
		Label:  "Base price",
		Amount: pctx.BasePrice.Mul(decimal.NewFromInt(int64(len(pctx.Seats)))),
		Meta:   map[string]string{"movie": pctx.MovieTitle, "seatCount": fmt.Sprint(len(pctx.Seats))},
	}}

	basePrice := breakdown[0].Amount
	subtotal := basePrice

	surcharges := newAggregator()
	for _, seat := range pctx.Seats {
		if amount, ok := e.cfg.SeatTypeSurcharges[seat.TypeCode]; ok && amount.IsPositive() {
			surcharges.add(
				fmt.Sprintf("%s seat", strings.ToUpper(seat.TypeCode)),
				amount,
				map[string]string{"seatType": seat.TypeCode},
			)
		}
		if amount, ok := e.cfg.FormatSurcharges[pctx.FormatCode]; ok && amount.IsPositive() {
			surcharges.add(
				fmt.Sprintf("%s screen", pctx.FormatCode),
				amount,
				map[string]string{"format": pctx.FormatCode},
			)
		}
		if e.cfg.VenueSurcharge.IsPositive() {
			surcharges.add("Venue surcharge", e.cfg.VenueSurcharge, map[string]string{"venueId": fmt.Sprint(pctx.VenueID)})
		}
		if weekend && evening && e.cfg.WeekendEveningSurcharge.IsPositive() {
			surcharges.add("Weekend evening", e.cfg.WeekendEveningSurcharge, map[string]string{"slot": "weekend-evening"})
		}
	}

	for _, line := range surcharges.lines(LineSurcharge) {
		breakdown = append(breakdown, line)
		subtotal = subtotal.Add(line.Amount)
	}

	current := subtotal
	totalDiscount := decimal.Zero

	if tier, ok := e.cfg.MembershipDiscounts[membershipTier]; ok {
		discount := capped(percentOf(current, tier.Percent), tier.Cap)
		if discount.IsPositive() {
			breakdown = append(breakdown, Line{
				Type:   LineDiscount,
				Label:  fmt.Sprintf("%s member -%s%%", strings.ToUpper(membershipTier), tier.Percent),
				Amount: discount.Neg(),
				Meta:   map[string]string{"tier": membershipTier, "percent": tier.Percent.String()},
			})
			current = current.Sub(discount)
			totalDiscount = totalDiscount.Add(discount)
		}
	}

	if weekend && e.cfg.WeekendPromo.Percent.IsPositive() {
		discount := capped(percentOf(current, e.cfg.WeekendPromo.Percent), e.cfg.WeekendPromo.Cap)
		if discount.IsPositive() {
			breakdown = append(breakdown, Line{
				Type:   LineDiscount,
				Label:  fmt.Sprintf("Promo %s", e.cfg.WeekendPromoCode),
				Amount: discount.Neg(),
				Meta:   map[string]string{"code": e.cfg.WeekendPromoCode, "percent": e.cfg.WeekendPromo.Percent.String()},
			})
			current = current.Sub(discount)
			totalDiscount = totalDiscount.Add(discount)
		}
	}

	if voucherCode != "" {
		voucher, ok := e.cfg.Vouchers[voucherCode]
		if !ok {
			return nil, domain.ErrUnknownVoucher
		}

		var discount decimal.Decimal
		switch voucher.Kind {
		case VoucherPercent:
			discount = capped(percentOf(current, voucher.Value), voucher.Cap)
		default:
			discount = decimal.Min(voucher.Value, current)
		}

		if discount.IsPositive() {
			breakdown = append(breakdown, Line{
				Type:   LineDiscount,
				Label:  fmt.Sprintf("Voucher %s", voucherCode),
				Amount: discount.Neg(),
				Meta:   map[string]string{"code": voucherCode},
			})
			current = current.Sub(discount)
			totalDiscount = totalDiscount.Add(discount)
		}
	}

	tax := percentOf(current, e.cfg.TaxPercent)
	breakdown = append(breakdown, Line{
		Type:   LineTax,
		Label:  fmt.Sprintf("VAT %s%%", e.cfg.TaxPercent),
		Amount: tax,
		Meta:   map[string]string{"ratePct": e.cfg.TaxPercent.String()},
	})
	current = current.Add(tax)

	rounded := current.Div(e.cfg.RoundingStep).Round(0).Mul(e.cfg.RoundingStep)
	delta := rounded.Sub(current)
	if !delta.IsZero() {
		breakdown = append(breakdown, Line{
			Type:   LineRounding,
			Label:  "Rounding",
			Amount: delta,
			Meta:   map[string]string{"mode": "nearest", "step": e.cfg.RoundingStep.String()},
		})
	}

	return &Result{
		BasePrice:     basePrice,
		Subtotal:      subtotal,
		TotalDiscount: totalDiscount,
		TotalTax:      tax,
		RoundingDelta: delta,
		GrandTotal:    rounded,
		Breakdown:     breakdown,
	}, nil
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(decimal.NewFromInt(100))
}

func capped(amount, cap decimal.Decimal) decimal.Decimal {
	if cap.IsPositive() {
		return decimal.Min(amount, cap)
	}
	return amount
}

// aggregator folds repeated per-seat surcharges into one line per label while
// preserving first-seen order, so breakdowns stay stable across runs.
type aggregator struct {
	order []string
	total map[string]decimal.Decimal
	meta  map[string]map[string]string
}

func newAggregator() *aggregator {
	return &aggregator{
		total: make(map[string]decimal.Decimal),
		meta:  make(map[string]map[string]string),
	}
}

func (a *aggregator) add(label string, amount decimal.Decimal, meta map[string]string) {
	if _, ok := a.total[label]; !ok {
		a.order = append(a.order, label)
		a.meta[label] = meta
	}
	a.total[label] = a.total[label].Add(amount)
}

func (a *aggregator) lines(lineType LineType) []Line {
	lines := make([]Line, 0, len(a.order))
	for _, label := range a.order {
		lines = append(lines, Line{
			Type:   lineType,
			Label:  label,
			Amount: a.total[label],
			Meta:   a.meta[label],
		})
	}
	return lines
}
