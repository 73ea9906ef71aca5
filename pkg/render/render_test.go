package render

import (
	"strings"
	"testing"

	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLimit(t *testing.T, id string, side core.Side, quantity, price int64, clock core.Clock) *core.Order {
	t.Helper()
	order, err := core.NewLimitOrder(id, side, fpdecimal.FromInt(quantity), fpdecimal.FromInt(price), clock)
	require.NoError(t, err)
	return order
}

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{7500, "7,500"},
		{100000, "100,000"},
		{1234567890, "1,234,567,890"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, groupDigits(fpdecimal.FromInt(tc.in)))
	}
}

func TestBookTable_EmptyBook(t *testing.T) {
	table := BookTable(nil, nil)

	want := strings.Join([]string{
		"+----------+-------------+-------+-------+-------------+----------+",
		"| BUY                            | SELL                           |",
		"| Id       | Volume      | Price | Price | Volume      | Id       |",
		"+----------+-------------+-------+-------+-------------+----------+",
		"+----------+-------------+-------+-------+-------------+----------+",
		"",
	}, "\n")
	assert.Equal(t, want, table)
}

func TestBookTable_BothSides(t *testing.T) {
	clock := core.NewLogicalClock()
	buys := []*core.Order{
		mustLimit(t, "100322", core.Buy, 7500, 5103, clock),
	}
	sells := []*core.Order{
		mustLimit(t, "100345", core.Sell, 20000, 5103, clock),
		mustLimit(t, "100346", core.Sell, 5000, 5104, clock),
	}

	table := BookTable(buys, sells)

	want := strings.Join([]string{
		"+----------+-------------+-------+-------+-------------+----------+",
		"| BUY                            | SELL                           |",
		"| Id       | Volume      | Price | Price | Volume      | Id       |",
		"+----------+-------------+-------+-------+-------------+----------+",
		"|    100322|        7,500|  5,103|  5,103|       20,000|    100345|",
		"|          |             |       |  5,104|        5,000|    100346|",
		"+----------+-------------+-------+-------+-------------+----------+",
		"",
	}, "\n")
	assert.Equal(t, want, table)
}

func TestBookTable_BuyOnly(t *testing.T) {
	clock := core.NewLogicalClock()
	buys := []*core.Order{
		mustLimit(t, "1", core.Buy, 1000000, 99, clock),
	}

	table := BookTable(buys, nil)
	assert.Contains(t, table, "|         1|    1,000,000|     99|       |             |          |")
}

func TestBookTable_FixedWidth(t *testing.T) {
	clock := core.NewLogicalClock()
	buys := []*core.Order{
		mustLimit(t, "100322", core.Buy, 7500, 5103, clock),
	}
	sells := []*core.Order{
		mustLimit(t, "100345", core.Sell, 20000, 5103, clock),
	}

	for _, line := range strings.Split(strings.TrimRight(BookTable(buys, sells), "\n"), "\n") {
		assert.Len(t, line, 67, "line %q", line)
	}
}
