package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/gateops/internal/core"
	"github.com/yegors/gateops/pkg/logger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func billingRegistry(t *testing.T) *core.Registry {
	t.Helper()
	r := core.NewRegistry()
	require.NoError(t, r.AddAirline(core.Airline{
		Code: "SQ",
		Name: "Singapore Airlines",
		FeeSchedule: core.FeeSchedule{
			ArrivalFee:   dec("10"),
			DepartureFee: dec("12"),
			GateBaseFee:  dec("5"),
			SpecialRequestFees: map[core.SpecialRequestCode]decimal.Decimal{
				core.RequestOverSize: dec("8"),
			},
		},
	}))
	require.NoError(t, r.AddGate(core.BoardingGate{
		Name:                  "G2",
		SupportedRequestCodes: []core.SpecialRequestCode{core.RequestOverSize},
	}))
	return r
}

func TestInvoiceStackedDiscounts(t *testing.T) {
	r := billingRegistry(t)
	// One arriving OverSize flight at an assigned gate:
	// arrival 10 + gate 5 + special 8 = 23.
	require.NoError(t, r.AddFlight(core.Flight{
		Number:             "SQ100",
		AirlineCode:        "SQ",
		Origin:             "NRT",
		Destination:        "SIN",
		ScheduledTime:      8 * 60,
		Status:             core.StatusScheduled,
		SpecialRequestCode: core.RequestOverSize,
	}))
	require.NoError(t, r.Update(func(tx *core.Tx) error { return tx.Pair("SQ100", "G2") }))

	rules := []DiscountRule{
		{Name: "loyalty", Kind: DiscountPercentage, Value: dec("10"), Priority: 1},
		{Name: "launch", Kind: DiscountFlat, Value: dec("2"), Priority: 2},
	}
	e, err := NewEngine(r, "SIN", rules, logger.Nop())
	require.NoError(t, err)

	inv, err := e.ComputeAirlineInvoice("SQ")
	require.NoError(t, err)

	assert.Equal(t, 1, inv.FlightCount)
	assert.True(t, inv.ArrivalDepartureFees.Equal(dec("10")), "got %s", inv.ArrivalDepartureFees)
	assert.True(t, inv.GateBaseFees.Equal(dec("5")))
	assert.True(t, inv.SpecialRequestFees.Equal(dec("8")))
	assert.True(t, inv.Subtotal.Equal(dec("23")))
	// 23 - 10% (2.3) - flat 2 = 18.7, exactly.
	assert.True(t, inv.DiscountTotal.Equal(dec("4.3")), "got %s", inv.DiscountTotal)
	assert.True(t, inv.Total.Equal(dec("18.7")), "got %s", inv.Total)

	// Total identity holds.
	identity := inv.ArrivalDepartureFees.Add(inv.GateBaseFees).Add(inv.SpecialRequestFees).Sub(inv.DiscountTotal)
	assert.True(t, inv.Total.Equal(identity))
}

func TestInvoiceDirectionAndUnassignedGate(t *testing.T) {
	r := billingRegistry(t)
	// Departure (origin is the station), no gate assigned: departure 12 only.
	require.NoError(t, r.AddFlight(core.Flight{
		Number:             "SQ200",
		AirlineCode:        "SQ",
		Origin:             "SIN",
		Destination:        "NRT",
		ScheduledTime:      9 * 60,
		Status:             core.StatusScheduled,
		SpecialRequestCode: core.RequestNone,
	}))

	e, err := NewEngine(r, "SIN", nil, logger.Nop())
	require.NoError(t, err)

	inv, err := e.ComputeAirlineInvoice("SQ")
	require.NoError(t, err)

	require.Len(t, inv.Lines, 1)
	assert.Equal(t, DirectionDeparture, inv.Lines[0].Direction)
	assert.True(t, inv.ArrivalDepartureFees.Equal(dec("12")))
	assert.True(t, inv.GateBaseFees.IsZero())
	assert.True(t, inv.Total.Equal(dec("12")))
}

func TestInvoiceMissingFeeRule(t *testing.T) {
	r := billingRegistry(t)
	// LWTT has no entry in the airline's fee table.
	require.NoError(t, r.AddFlight(core.Flight{
		Number:             "SQ300",
		AirlineCode:        "SQ",
		Origin:             "NRT",
		Destination:        "SIN",
		ScheduledTime:      7 * 60,
		Status:             core.StatusScheduled,
		SpecialRequestCode: core.RequestLWTT,
	}))

	e, err := NewEngine(r, "SIN", nil, logger.Nop())
	require.NoError(t, err)

	_, err = e.ComputeAirlineInvoice("SQ")
	assert.ErrorIs(t, err, core.ErrMissingFeeRule)
}

func TestInvoiceUnknownAirline(t *testing.T) {
	e, err := NewEngine(billingRegistry(t), "SIN", nil, logger.Nop())
	require.NoError(t, err)

	_, err = e.ComputeAirlineInvoice("ZZ")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestApplyDiscountsOrderIndependent(t *testing.T) {
	subtotal := dec("100")
	rules := []DiscountRule{
		{Name: "flat-b", Kind: DiscountFlat, Value: dec("3"), Priority: 2},
		{Name: "pct-a", Kind: DiscountPercentage, Value: dec("10"), Priority: 1},
		{Name: "pct-b", Kind: DiscountPercentage, Value: dec("5"), Priority: 2},
		{Name: "flat-a", Kind: DiscountFlat, Value: dec("7"), Priority: 1},
	}

	applied, total := ApplyDiscounts(subtotal, rules)

	// Percentages first (by priority), each on the pre-discount subtotal,
	// then flats: 10 + 5 + 7 + 3 = 25.
	require.Len(t, applied, 4)
	assert.Equal(t, "pct-a", applied[0].RuleName)
	assert.Equal(t, "pct-b", applied[1].RuleName)
	assert.Equal(t, "flat-a", applied[2].RuleName)
	assert.Equal(t, "flat-b", applied[3].RuleName)
	assert.True(t, total.Equal(dec("25")))

	// Registration order must not change the outcome.
	reversed := []DiscountRule{rules[3], rules[2], rules[1], rules[0]}
	appliedRev, totalRev := ApplyDiscounts(subtotal, reversed)
	assert.Equal(t, applied, appliedRev)
	assert.True(t, total.Equal(totalRev))
}

func TestApplyDiscountsNeverNegative(t *testing.T) {
	rules := []DiscountRule{
		{Name: "huge", Kind: DiscountFlat, Value: dec("50"), Priority: 1},
	}
	_, total := ApplyDiscounts(dec("20"), rules)
	assert.True(t, total.Equal(dec("20"))) // clamped at the subtotal
}

func TestDiscountRuleValidate(t *testing.T) {
	bad := []DiscountRule{
		{Name: "", Kind: DiscountFlat, Value: dec("1")},
		{Name: "x", Kind: "half-off", Value: dec("1")},
		{Name: "x", Kind: DiscountFlat, Value: dec("-1")},
		{Name: "x", Kind: DiscountPercentage, Value: dec("120")},
	}
	for _, r := range bad {
		assert.Error(t, r.Validate())
	}
	ok := DiscountRule{Name: "x", Kind: DiscountPercentage, Value: dec("15")}
	assert.NoError(t, ok.Validate())
}

func TestAirlineScopedDiscount(t *testing.T) {
	r := billingRegistry(t)
	require.NoError(t, r.AddAirline(core.Airline{
		Code: "AK",
		Name: "AirAsia",
		FeeSchedule: core.FeeSchedule{
			ArrivalFee:   dec("10"),
			DepartureFee: dec("10"),
			GateBaseFee:  dec("5"),
		},
	}))
	for _, number := range []string{"SQ1", "AK1"} {
		airline := number[:2]
		require.NoError(t, r.AddFlight(core.Flight{
			Number:             number,
			AirlineCode:        airline,
			Origin:             "NRT",
			Destination:        "SIN",
			ScheduledTime:      8 * 60,
			Status:             core.StatusScheduled,
			SpecialRequestCode: core.RequestNone,
		}))
	}

	rules := []DiscountRule{
		{Name: "sq-only", Kind: DiscountPercentage, Value: dec("50"), Priority: 1, AirlineCode: "SQ"},
	}
	e, err := NewEngine(r, "SIN", rules, logger.Nop())
	require.NoError(t, err)

	sq, err := e.ComputeAirlineInvoice("SQ")
	require.NoError(t, err)
	ak, err := e.ComputeAirlineInvoice("AK")
	require.NoError(t, err)

	assert.True(t, sq.Total.Equal(dec("5")))
	assert.True(t, ak.Total.Equal(dec("10")))
	assert.Empty(t, ak.Discounts)
}
