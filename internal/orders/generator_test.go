package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/pkg/logger"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator(logger.NewNop())

	prior := &contracts.Portfolio{
		Month: contracts.MonthKey{Year: 2025, Month: 1},
		TopN:  []string{"A", "B"},
		Holdings: []contracts.Holding{
			{Symbol: "A", FinalPrice: 110},
			{Symbol: "B", FinalPrice: 60},
		},
	}
	current := &contracts.Portfolio{
		Month: contracts.MonthKey{Year: 2025, Month: 2},
		TradingDates: contracts.TradingDates{
			First:    day(2025, 2, 3),
			Last:     day(2025, 2, 27),
			RollOver: day(2025, 1, 30),
		},
		TopN:         []string{"A", "C"},
		Added:        []string{"C"},
		Removed:      []string{"B"},
		CarryForward: []string{"A"},
		Holdings: []contracts.Holding{
			{Symbol: "A", InitialPrice: 110},
			{Symbol: "C", InitialPrice: 20},
		},
	}

	out := g.Generate("V3", "NIFTY500", current, prior)
	require.Len(t, out, 2, "one sell for B, one buy for C; carries trade nothing")

	sell := out[0]
	assert.Equal(t, contracts.OrderTypeSell, sell.Type)
	assert.Equal(t, "B", sell.Symbol)
	assert.Equal(t, contracts.MonthKey{Year: 2025, Month: 1}, sell.Month, "sells close the prior month's position")
	assert.Equal(t, 60.0, sell.ReferencePrice)

	buy := out[1]
	assert.Equal(t, contracts.OrderTypeBuy, buy.Type)
	assert.Equal(t, "C", buy.Symbol)
	assert.Equal(t, contracts.MonthKey{Year: 2025, Month: 2}, buy.Month)
	assert.Equal(t, 20.0, buy.ReferencePrice)

	for _, o := range out {
		assert.NotEmpty(t, o.ID)
		assert.Equal(t, contracts.OrderStatusPending, o.Status)
		assert.Equal(t, "V3", o.Strategy)
		assert.Equal(t, "NIFTY500", o.Universe)
		assert.Equal(t, day(2025, 2, 3), o.PlacementDate)
	}
	assert.NotEqual(t, out[0].ID, out[1].ID)
}

func TestGenerator_InceptionHasNoSells(t *testing.T) {
	g := NewGenerator(logger.NewNop())

	p := &contracts.Portfolio{
		Month: contracts.MonthKey{Year: 2025, Month: 1},
		TradingDates: contracts.TradingDates{
			First:    day(2025, 1, 2),
			Last:     day(2025, 1, 30),
			RollOver: day(2025, 1, 2),
		},
		TopN:  []string{"A"},
		Added: []string{"A"},
		Holdings: []contracts.Holding{
			{Symbol: "A", InitialPrice: 100},
		},
	}

	out := g.Generate("V3", "NIFTY500", p, nil)
	require.Len(t, out, 1)
	assert.Equal(t, contracts.OrderTypeBuy, out[0].Type)
}
