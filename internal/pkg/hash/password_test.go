package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	tests := []struct {
		name     string
		password string
		attempt  string
		wantErr  bool
	}{
		{name: "correct password", password: "secret123", attempt: "secret123"},
		{name: "wrong password", password: "secret123", attempt: "secret124", wantErr: true},
		{name: "case sensitive", password: "secret123", attempt: "SECRET123", wantErr: true},
		{name: "empty attempt", password: "secret123", attempt: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := Hash(tt.password)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hashed)

			err = Compare(hashed, tt.attempt)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashLongPassword(t *testing.T) {
	long := strings.Repeat("a", 100)

	hashed, err := Hash(long)
	require.NoError(t, err)

	// Only the first 72 bytes are significant.
	assert.NoError(t, Compare(hashed, strings.Repeat("a", 72)+"different tail"))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	pw := strings.Repeat("a", 71) + "é" // é is two bytes, straddling the limit
	got := truncate(pw)

	assert.Len(t, got, 71)
	assert.Equal(t, strings.Repeat("a", 71), string(got))
}
