package recipients

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  []string
		stats Stats
	}{
		{
			name:  "keeps first occurrence order",
			raw:   "b@x.com\na@x.com\nb@x.com",
			want:  []string{"b@x.com", "a@x.com"},
			stats: Stats{Total: 3, Unique: 2, Duplicates: 1},
		},
		{
			name:  "mixed separators and case",
			raw:   "A@X.com, b@y.com; a@x.com",
			want:  []string{"a@x.com", "b@y.com"},
			stats: Stats{Total: 3, Unique: 2, Duplicates: 1},
		},
		{
			name:  "runs of separators collapse",
			raw:   "a@x.com,,;\n\n;b@x.com",
			want:  []string{"a@x.com", "b@x.com"},
			stats: Stats{Total: 2, Unique: 2},
		},
		{
			name:  "blank tokens are not counted",
			raw:   "  ,a@x.com,   ,\t\n",
			want:  []string{"a@x.com"},
			stats: Stats{Total: 1, Unique: 1},
		},
		{
			name:  "windows line endings",
			raw:   "a@x.com\r\nb@x.com\r\n",
			want:  []string{"a@x.com", "b@x.com"},
			stats: Stats{Total: 2, Unique: 2},
		},
		{
			name:  "invalid tokens are kept for validation",
			raw:   "not-an-email\nNOT-AN-EMAIL",
			want:  []string{"not-an-email"},
			stats: Stats{Total: 2, Unique: 1, Duplicates: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.Equal(t, tt.want, got.Addresses)
			assert.Equal(t, tt.stats, got.Stats)
			assert.Equal(t, tt.raw, got.RawText)
		})
	}
}

func TestNormalizeEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n", " ,; \n"} {
		got := Normalize(raw)
		assert.Empty(t, got.Addresses, "raw=%q", raw)
		assert.Equal(t, Stats{}, got.Stats, "raw=%q", raw)
		assert.Equal(t, 0, got.Len())
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"b@x.com\na@x.com\nb@x.com",
		"A@X.com, b@y.com; a@x.com",
		"  Foo@Bar.org ;;; foo@bar.org,\nqux@bar.org  ",
		"",
	}

	for _, raw := range inputs {
		first := Normalize(raw)
		second := Normalize(first.Text())
		assert.Equal(t, first.Addresses, second.Addresses, "raw=%q", raw)
		assert.Equal(t, 0, second.Stats.Duplicates, "raw=%q", raw)
	}
}

func TestNormalizeDuplicatesInvariant(t *testing.T) {
	inputs := []string{
		"a@x.com,a@x.com,a@x.com",
		"a@x.com;b@x.com\nA@x.com\nc@x.com,B@X.COM",
		";;;",
	}

	for _, raw := range inputs {
		s := Normalize(raw).Stats
		assert.Equal(t, s.Total-s.Unique, s.Duplicates, "raw=%q", raw)
	}
}
