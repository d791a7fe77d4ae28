package donation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	served, err := Aggregate(Demographics{White: 2, Latino: 1, Asian: 4})
	require.NoError(t, err)
	assert.Equal(t, 7, served)

	_, err = Aggregate(Demographics{})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "numberServed", verr.Field)

	_, err = Aggregate(Demographics{White: 3, Black: -1})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "blackNum", verr.Field)
}

func TestStats(t *testing.T) {
	stats := Demographics{Native: 1, Other: 2}.Stats(42, 3)
	assert.Equal(t, int64(42), stats.DonationID)
	assert.Equal(t, 3, stats.NumberServed)
	assert.Equal(t, 1, stats.NativeNum)
	assert.Equal(t, 2, stats.OtherNum)
	assert.Zero(t, stats.WhiteNum)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"12", 12, false},
		{"-3", -3, false},
		{"4.0", 4, false},
		{"1e2", 100, false},
		{"2.5", 0, true},
		{"1e12", 0, true},
		{"99999999999999999999", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCount("whiteNum", json.Number(tt.in))
			if tt.wantErr {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "got %v", err)
				assert.Equal(t, "whiteNum", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
