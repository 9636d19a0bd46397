package quote

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimChild/papertrade-quotes/internal/apperror"
)

func TestNormalizeTicker(t *testing.T) {
	cases := []struct {
		raw  string
		want Ticker
		ok   bool
	}{
		{"aapl", "AAPL", true},
		{"  msft ", "MSFT", true},
		{"BRK-B", "BRK-B", true},
		{"^gspc", "^GSPC", true},
		{"asml.as", "ASML.AS", true},
		{"", "", false},
		{"   ", "", false},
		{"AA PL", "", false},
		{"AAPL!", "", false},
		{"ABCDEFGHIJKLM", "", false},
	}

	for _, tc := range cases {
		got, err := NormalizeTicker(tc.raw)
		if !tc.ok {
			require.Error(t, err, "raw=%q", tc.raw)
			assert.Equal(t, apperror.InvalidTicker, apperror.CodeOf(err), "raw=%q", tc.raw)
			continue
		}
		require.NoError(t, err, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestWithSourceLeavesOriginalUntouched(t *testing.T) {
	p := PricePoint{
		Ticker:     "AAPL",
		Price:      decimal.NewFromFloat(258.10),
		ObservedAt: time.Now().UTC(),
		Source:     SourceLive,
		Vendor:     "yahoo",
	}

	tagged := p.WithSource(SourceDurableCache)

	assert.Equal(t, SourceDurableCache, tagged.Source)
	assert.Equal(t, SourceLive, p.Source, "re-tagging must produce a new value")
	assert.Equal(t, "yahoo", tagged.Vendor, "vendor is provenance, not retrieval mechanism")
	assert.True(t, tagged.Price.Equal(p.Price))
}
