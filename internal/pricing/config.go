package pricing

import "github.com/shopspring/decimal"

// PercentDiscount is a percentage discount capped at an absolute maximum.
type PercentDiscount struct {
	Percent decimal.Decimal
	Cap     decimal.Decimal
}

type VoucherKind string

const (
	VoucherFlat    VoucherKind = "flat"
	VoucherPercent VoucherKind = "percent"
)

type Voucher struct {
	Kind  VoucherKind
	Value decimal.Decimal
	// Cap bounds percent vouchers; ignored for flat ones.
	Cap decimal.Decimal
}

// Config carries every pricing constant. It is passed into the engine
// explicitly so environments can tune surcharges, discounts, tax and rounding
// without touching the pipeline itself.
type Config struct {
	SeatTypeSurcharges map[string]decimal.Decimal
	FormatSurcharges   map[string]decimal.Decimal
	VenueSurcharge     decimal.Decimal

	// WeekendEveningSurcharge applies when the show starts on a weekend
	// between EveningStartHour and midnight.
	WeekendEveningSurcharge decimal.Decimal
	EveningStartHour        int

	MembershipDiscounts map[string]PercentDiscount
	WeekendPromo        PercentDiscount
	WeekendPromoCode    string

	Vouchers map[string]Voucher

	TaxPercent   decimal.Decimal
	RoundingStep decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		SeatTypeSurcharges: map[string]decimal.Decimal{
			"vip": decimal.NewFromInt(20000),
		},
		FormatSurcharges: map[string]decimal.Decimal{
			"IMAX": decimal.NewFromInt(30000),
		},
		VenueSurcharge:          decimal.NewFromInt(10000),
		WeekendEveningSurcharge: decimal.NewFromInt(10000),
		EveningStartHour:        18,
		MembershipDiscounts: map[string]PercentDiscount{
			"diamond": {Percent: decimal.NewFromInt(15), Cap: decimal.NewFromInt(50000)},
		},
		WeekendPromo:     PercentDiscount{Percent: decimal.NewFromInt(15), Cap: decimal.NewFromInt(20000)},
		WeekendPromoCode: "WEEKEND15",
		Vouchers: map[string]Voucher{
			"MOVIE5K": {Kind: VoucherFlat, Value: decimal.NewFromInt(5000)},
		},
		TaxPercent:   decimal.NewFromInt(8),
		RoundingStep: decimal.NewFromInt(1000),
	}
}
