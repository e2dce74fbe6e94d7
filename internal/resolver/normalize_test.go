package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/adboard/internal/resolver"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already canonical",
			input: "https://www.avito.ru/moskva/telefony/iphone_123",
			want:  "https://www.avito.ru/moskva/telefony/iphone_123",
		},
		{
			name:  "host lowercased path preserved",
			input: "HTTPS://WWW.Avito.RU/Moskva/Item_123",
			want:  "https://www.avito.ru/Moskva/Item_123",
		},
		{
			name:  "query and fragment dropped",
			input: "https://www.avito.ru/item/1?utm_source=share#photo",
			want:  "https://www.avito.ru/item/1",
		},
		{
			name:  "missing scheme assumes https",
			input: "avito.ru/item/1",
			want:  "https://avito.ru/item/1",
		},
		{
			name:  "scheme-relative input",
			input: "//m.avito.ru/item/1",
			want:  "https://m.avito.ru/item/1",
		},
		{
			name:  "http preserved",
			input: "http://avito.ru/item/1",
			want:  "http://avito.ru/item/1",
		},
		{
			name:  "port stripped",
			input: "https://www.avito.ru:443/item/1",
			want:  "https://www.avito.ru/item/1",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  https://www.avito.ru/item/1  ",
			want:  "https://www.avito.ru/item/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolver.NormalizeURL(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"HTTPS://M.Avito.ru/Item/42?q=1",
		"avito.ru/x",
		"https://www.avito.ru/moskva/telefony/iphone_123",
	}

	for _, input := range inputs {
		once, err := resolver.NormalizeURL(input)
		require.NoError(t, err)

		twice, err := resolver.NormalizeURL(once)
		require.NoError(t, err)

		assert.Equal(t, once, twice, "normalization must be idempotent for %q", input)
	}
}

func TestNormalizeURLInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   "},
		{name: "unparsable", input: "http://[bad"},
		{name: "non-http scheme", input: "ftp://avito.ru/item/1"},
		{name: "no host", input: "https:///path/only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := resolver.NormalizeURL(tt.input)
			assert.ErrorIs(t, err, resolver.ErrInvalidURL)
		})
	}
}

func TestNormalizeURLUnsupportedDomain(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"https://example.com/item/1",
		"https://www.ebay.com/itm/1",
		"ozon.ru/product/1",
	} {
		_, err := resolver.NormalizeURL(input)
		assert.ErrorIs(t, err, resolver.ErrUnsupportedDomain, "input %q", input)
	}
}
