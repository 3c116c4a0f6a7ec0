package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{
			name: "zero value gets defaults",
			in:   PageRequest{},
			want: PageRequest{Page: 0, Size: DefaultPageSize, Sort: DefaultSort},
		},
		{
			name: "negative page and size",
			in:   PageRequest{Page: -3, Size: -1},
			want: PageRequest{Page: 0, Size: DefaultPageSize, Sort: DefaultSort},
		},
		{
			name: "size clamped",
			in:   PageRequest{Page: 2, Size: 5000},
			want: PageRequest{Page: 2, Size: MaxPageSize, Sort: DefaultSort},
		},
		{
			name: "huge page pulled back below max offset",
			in:   PageRequest{Page: 461168601842738791, Size: 20},
			want: PageRequest{Page: MaxOffset / 20, Size: 20, Sort: DefaultSort},
		},
		{
			name: "explicit sort kept",
			in:   PageRequest{Page: 1, Size: 1, Sort: []SortOrder{{SortByAmount, Desc}}},
			want: PageRequest{Page: 1, Size: 1, Sort: []SortOrder{{SortByAmount, Desc}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	require.Equal(t, 0, PageRequest{Page: 0, Size: 20}.Offset())
	require.Equal(t, 6, PageRequest{Page: 3, Size: 2}.Offset())

	huge := PageRequest{Page: 461168601842738791, Size: MaxPageSize}.Normalize()
	require.GreaterOrEqual(t, huge.Offset(), 0)
	require.LessOrEqual(t, huge.Offset(), MaxOffset)
}

func TestParseSortOrder(t *testing.T) {
	order, err := ParseSortOrder("amount,desc")
	require.NoError(t, err)
	require.Equal(t, SortOrder{Field: SortByAmount, Direction: Desc}, order)

	order, err = ParseSortOrder("id")
	require.NoError(t, err)
	require.Equal(t, SortOrder{Field: SortByID, Direction: Asc}, order)

	order, err = ParseSortOrder("owner,DESC")
	require.NoError(t, err)
	require.Equal(t, Desc, order.Direction)

	for _, raw := range []string{"", "balance", "amount,sideways", "amount,asc,desc", "amount; drop table"} {
		_, err := ParseSortOrder(raw)
		require.ErrorIs(t, err, ErrInvalidSort, raw)
	}
}

func TestCashCardEqual(t *testing.T) {
	a := &CashCard{ID: 1, Amount: decimal.RequireFromString("100.5"), Owner: "sarah"}
	b := &CashCard{ID: 1, Amount: decimal.RequireFromString("100.50"), Owner: "sarah"}
	require.True(t, a.Equal(b))

	require.False(t, a.Equal(&CashCard{ID: 2, Amount: a.Amount, Owner: "sarah"}))
	require.False(t, a.Equal(&CashCard{ID: 1, Amount: a.Amount, Owner: "kumar2"}))
	require.False(t, a.Equal(nil))

	var none *CashCard
	require.True(t, none.Equal(nil))
}

func TestCashCardWithAmountKeepsIdentity(t *testing.T) {
	card := &CashCard{ID: 7, Amount: decimal.NewFromInt(1), Owner: "sarah"}
	updated := card.WithAmount(decimal.RequireFromString("19.99"))

	require.Equal(t, int64(7), updated.ID)
	require.Equal(t, "sarah", updated.Owner)
	require.True(t, updated.Amount.Equal(decimal.RequireFromString("19.99")))
	require.True(t, card.Amount.Equal(decimal.NewFromInt(1)), "receiver must not change")
}

func TestValidateAmount(t *testing.T) {
	for _, ok := range []string{"0", "0e30", "123.45", "-325.33", "999999999999999.9999", "1.50000", "100e2"} {
		require.NoError(t, ValidateAmount(decimal.RequireFromString(ok)), ok)
	}
	for _, bad := range []string{"1e20000000", "1e-20000000", "1000000000000000", "0.00001", "1.23456", "-1e16"} {
		require.ErrorIs(t, ValidateAmount(decimal.RequireFromString(bad)), ErrInvalidAmount, bad)
	}
}
