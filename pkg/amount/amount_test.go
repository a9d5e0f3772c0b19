package amount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals int
		want     string
		wantErr  bool
	}{
		{name: "near sell amount", input: "2.5", decimals: 24, want: "2500000000000000000000000"},
		{name: "integer", input: "7", decimals: 6, want: "7000000"},
		{name: "zero", input: "0", decimals: 18, want: "0"},
		{name: "leading zeros stripped", input: "000.5", decimals: 2, want: "50"},
		{name: "bare fraction", input: ".5", decimals: 2, want: "50"},
		{name: "zero decimals integer only", input: "42", decimals: 0, want: "42"},
		{name: "max fractional digits", input: "1.234567", decimals: 6, want: "1234567"},
		{name: "too many fractional digits", input: "1.23", decimals: 1, wantErr: true},
		{name: "fraction with zero decimals", input: "1.0", decimals: 0, wantErr: true},
		{name: "empty", input: "", decimals: 6, wantErr: true},
		{name: "whitespace only", input: "   ", decimals: 6, wantErr: true},
		{name: "lone dot", input: ".", decimals: 6, wantErr: true},
		{name: "negative decimals", input: "1", decimals: -1, wantErr: true},
		{name: "signed input rejected", input: "-1", decimals: 6, wantErr: true},
		{name: "letters rejected", input: "1e5", decimals: 6, wantErr: true},
		{name: "two dots rejected", input: "1.2.3", decimals: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.input, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	tests := []struct {
		name      string
		units     string
		decimals  int
		precision int
		want      string
	}{
		{name: "usdc amount", units: "100000000", decimals: 6, precision: 6, want: "100"},
		{name: "trailing zeros trimmed", units: "2500000000000000000000000", decimals: 24, precision: 24, want: "2.5"},
		{name: "precision clips fraction", units: "1234567", decimals: 6, precision: 2, want: "1.23"},
		{name: "precision beyond decimals", units: "15", decimals: 1, precision: 9, want: "1.5"},
		{name: "zero decimals", units: "42", decimals: 0, precision: 6, want: "42"},
		{name: "negative preserved", units: "-1500000", decimals: 6, precision: 6, want: "-1.5"},
		{name: "sub unit", units: "1", decimals: 6, precision: 6, want: "0.000001"},
		{name: "zero precision", units: "1234567", decimals: 6, precision: 0, want: "1"},
		{name: "zero", units: "0", decimals: 18, precision: 6, want: "0"},
		{name: "malformed", units: "not-a-number", decimals: 6, precision: 6, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromBaseUnits(tt.units, tt.decimals, tt.precision))
		})
	}
}

// Round-trip law: parse then format reproduces the canonical input for any
// valid decimal string with at most decimals fractional digits.
func TestRoundTrip(t *testing.T) {
	cases := []struct {
		input    string
		decimals int
		want     string
	}{
		{"2.5", 24, "2.5"},
		{"0.000001", 6, "0.000001"},
		{"1000000", 0, "1000000"},
		{"003.1400", 8, "3.14"},
		{"0", 18, "0"},
		{"123456789.123456789", 18, "123456789.123456789"},
	}

	for _, tc := range cases {
		units, err := ToBaseUnits(tc.input, tc.decimals)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, FromBaseUnits(units, tc.decimals, tc.decimals), tc.input)
	}
}

func TestIsPositive(t *testing.T) {
	for _, d := range []int{0, 1, 6, 18, 24, 77} {
		units, err := ToBaseUnits("0", d)
		require.NoError(t, err)
		assert.False(t, IsPositive(units), "decimals=%d", d)
	}

	assert.True(t, IsPositive("1"))
	assert.True(t, IsPositive("2500000000000000000000000"))
	assert.False(t, IsPositive("-1"))
	assert.False(t, IsPositive(""))
	assert.False(t, IsPositive("abc"))
}

func TestIsWithinBalance(t *testing.T) {
	// Values past 2^63 to confirm no silent truncation.
	huge := "92233720368547758079" // > math.MaxInt64
	hugePlus := "92233720368547758080"

	assert.True(t, IsWithinBalance(huge, huge))
	assert.True(t, IsWithinBalance(huge, hugePlus))
	assert.False(t, IsWithinBalance(hugePlus, huge))
	assert.True(t, IsWithinBalance("0", "0"))
	assert.False(t, IsWithinBalance("1", "0"))
	assert.False(t, IsWithinBalance("x", "1"))
	assert.False(t, IsWithinBalance("1", "x"))
}

func TestIsDecimalInput(t *testing.T) {
	assert.True(t, IsDecimalInput("1.5"))
	assert.True(t, IsDecimalInput("0"))
	assert.True(t, IsDecimalInput(""))
	assert.False(t, IsDecimalInput("1,5"))
	assert.False(t, IsDecimalInput("-1"))
	assert.False(t, IsDecimalInput("1.5e3"))
}
