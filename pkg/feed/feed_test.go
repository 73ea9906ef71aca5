package feed

import (
	"strings"
	"testing"

	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	parser, err := NewParser(core.NewLogicalClock())
	require.NoError(t, err)
	return parser
}

func TestNewParser_NilClock(t *testing.T) {
	_, err := NewParser(nil)
	assert.ErrorIs(t, err, core.ErrNilClock)
}

func TestParseLine_LimitOrder(t *testing.T) {
	parser := newTestParser(t)

	order, err := parser.ParseLine("B,100322,5103,7500")
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, "100322", order.ID())
	assert.Equal(t, core.Buy, order.Side())
	assert.True(t, order.IsLimitOrder())
	assert.Equal(t, fpdecimal.FromInt(5103), order.Price())
	assert.Equal(t, fpdecimal.FromInt(7500), order.VisibleQuantity())
}

func TestParseLine_IcebergOrder(t *testing.T) {
	parser := newTestParser(t)

	order, err := parser.ParseLine("S,100345,5103,100000,10000")
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, "100345", order.ID())
	assert.Equal(t, core.Sell, order.Side())
	assert.True(t, order.IsIcebergOrder())
	assert.Equal(t, fpdecimal.FromInt(10000), order.VisibleQuantity())
	assert.Equal(t, fpdecimal.FromInt(90000), order.HiddenReserve())
	assert.Equal(t, fpdecimal.FromInt(100000), order.TotalQuantity())
}

func TestParseLine_SkipsBlankAndCommentLines(t *testing.T) {
	parser := newTestParser(t)

	for _, line := range []string{"", "   ", "# a comment", "B,1,100,10 # trailing comment"} {
		order, err := parser.ParseLine(line)
		assert.NoError(t, err, "line %q", line)
		assert.Nil(t, order, "line %q", line)
	}
}

func TestParseLine_TrimsWhitespace(t *testing.T) {
	parser := newTestParser(t)

	order, err := parser.ParseLine(" B , 1 , 100 , 10 ")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "1", order.ID())
	assert.Equal(t, fpdecimal.FromInt(100), order.Price())
}

func TestParseLine_Malformed(t *testing.T) {
	parser := newTestParser(t)

	tests := []struct {
		name string
		line string
		want error
	}{
		{"too few fields", "B,1,100", ErrFieldCount},
		{"too many fields", "B,1,100,10,5,9", ErrFieldCount},
		{"bad side", "X,1,100,10", ErrBadSide},
		{"zero quantity", "B,1,100,0", core.ErrInvalidQuantity},
		{"zero price", "B,1,0,10", core.ErrInvalidPrice},
		{"peak above quantity", "B,1,100,10,20", core.ErrInvalidPeak},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			order, err := parser.ParseLine(tc.line)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := parser.ParseLine("B,1,abc,10")
	assert.Error(t, err)
}

func TestEach(t *testing.T) {
	parser := newTestParser(t)

	input := strings.Join([]string{
		"# warm-up book",
		"B,1,99,1000",
		"",
		"S,2,101,500,100",
	}, "\n")

	var orders []*core.Order
	err := parser.Each(strings.NewReader(input), func(order *core.Order) error {
		orders = append(orders, order)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, orders, 2)
	assert.Equal(t, "1", orders[0].ID())
	assert.Equal(t, "2", orders[1].ID())
	// Timestamps follow feed order
	assert.Less(t, orders[0].Timestamp(), orders[1].Timestamp())
}

func TestEach_StopsOnMalformedLine(t *testing.T) {
	parser := newTestParser(t)

	input := "B,1,99,1000\nX,2,100,10\nB,3,99,1000"

	var count int
	err := parser.Each(strings.NewReader(input), func(*core.Order) error {
		count++
		return nil
	})
	assert.ErrorIs(t, err, ErrBadSide)
	assert.ErrorContains(t, err, "line 2")
	assert.Equal(t, 1, count)
}
