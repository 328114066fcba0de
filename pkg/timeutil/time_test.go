package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30m", want: 30 * time.Minute},
		{in: "4h", want: 4 * time.Hour},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "xd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDatetime(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := ParseDatetime("now", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = ParseDatetime("", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = ParseDatetime("1709294400000", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), got.UnixMilli())

	got, err = ParseDatetime("2024-03-01 10:30:00", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), got)

	got, err = ParseDatetime("2024-03-01T10:30:00Z", now, time.UTC)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)))

	_, err = ParseDatetime("yesterday-ish", now, time.UTC)
	assert.Error(t, err)
}

func TestMillisRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, FromMillis(Millis(ts)).Equal(ts))
}
