package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"(11) 98765-4321", "11987654321", false},
		{"+55 11 98765 4321", "5511987654321", false},
		{"11 3456-7890", "1134567890", false},
		{"98765-4321", "", true},
		{"", "", true},
		{"+55 (11) 98765-4321 ext 99", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizePhone(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, ErrInvalidPhone, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, Digits(got), "only digits survive")
	}
}

func TestInternationalPhone(t *testing.T) {
	assert.Equal(t, "5511987654321", InternationalPhone("(11) 98765-4321", "+55"))
	assert.Equal(t, "5511987654321", InternationalPhone("5511987654321", "55"))
	assert.Equal(t, "11987654321", InternationalPhone("11987654321", ""))
}
