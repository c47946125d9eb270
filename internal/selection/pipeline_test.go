package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmill/momentum/pkg/logger"
)

// dropFilter drops a fixed set of symbols; failOn aborts the run.
type dropFilter struct {
	name   string
	drop   map[string]bool
	failOn string
}

func (f *dropFilter) Name() string { return f.name }

func (f *dropFilter) Passes(_ Input, symbol string) (bool, error) {
	if symbol == f.failOn {
		return false, fmt.Errorf("boom")
	}
	return !f.drop[symbol], nil
}

func TestPipeline_PreservesRankOrder(t *testing.T) {
	p := NewPipeline([]Filter{
		&dropFilter{name: "first", drop: map[string]bool{"B": true}},
	}, logger.NewNop())

	out, err := p.TopN(Input{}, []string{"A", "B", "C", "D"}, 10)
	require.NoError(t, err)

	// Survivors keep their relative rank, never re-sorted
	assert.Equal(t, []string{"A", "C", "D"}, out)
}

func TestPipeline_Conjunction(t *testing.T) {
	p := NewPipeline([]Filter{
		&dropFilter{name: "first", drop: map[string]bool{"B": true}},
		&dropFilter{name: "second", drop: map[string]bool{"D": true}},
	}, logger.NewNop())

	out, err := p.TopN(Input{}, []string{"A", "B", "C", "D"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, out)
}

func TestPipeline_TruncatesAfterFiltering(t *testing.T) {
	p := NewPipeline([]Filter{
		&dropFilter{name: "first", drop: map[string]bool{"A": true}},
	}, logger.NewNop())

	// If truncation ran before filtering, the result would be just [B]
	out, err := p.TopN(Input{}, []string{"A", "B", "C"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, out)
}

func TestPipeline_FewerSurvivorsThanN(t *testing.T) {
	p := NewPipeline([]Filter{
		&dropFilter{name: "first", drop: map[string]bool{"A": true, "B": true}},
	}, logger.NewNop())

	out, err := p.TopN(Input{}, []string{"A", "B", "C"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, out, "no padding to n")
}

func TestPipeline_FilterErrorAborts(t *testing.T) {
	p := NewPipeline([]Filter{
		&dropFilter{name: "strict", failOn: "B"},
	}, logger.NewNop())

	_, err := p.TopN(Input{}, []string{"A", "B"}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict")
	assert.Contains(t, err.Error(), "B")
}

func TestPipeline_NoFilters(t *testing.T) {
	p := NewPipeline(nil, logger.NewNop())

	out, err := p.TopN(Input{}, []string{"A", "B", "C"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, out)
}
