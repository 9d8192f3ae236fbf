package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "hours and minutes", input: "09:30", want: "09:30"},
		{name: "with seconds", input: "17:05:00", want: "17:05"},
		{name: "end of day", input: "24:00", want: "24:00"},
		{name: "midnight", input: "00:00", want: "00:00"},
		{name: "garbage", input: "nine", wantErr: true},
		{name: "out of range", input: "25:00", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTimeString_Arithmetic(t *testing.T) {
	start := MustTimeString("09:00")

	next, err := start.Add(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "10:00", next.String())
	assert.Equal(t, time.Hour, next.Sub(start))
	assert.True(t, start.IsBefore(next))
	assert.True(t, next.IsAfter(start))
	assert.False(t, start.IsAfter(start))

	_, err = start.Add(90 * time.Second)
	assert.Error(t, err)

	_, err = MustTimeString("23:30").AddMinutes(60)
	assert.ErrorIs(t, err, ErrTimeOverflow)

	end, err := MustTimeString("23:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, "24:00", end.String())
}

func TestTimeString_On(t *testing.T) {
	date := time.Date(2025, 3, 14, 18, 45, 0, 0, time.UTC)

	got := MustTimeString("10:15").On(date)

	assert.Equal(t, time.Date(2025, 3, 14, 10, 15, 0, 0, time.UTC), got)
}

func TestTimeString_ScanAndValue(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("11:00:00")))
	assert.Equal(t, "11:00", ts.String())

	require.NoError(t, ts.Scan("12:30"))
	assert.Equal(t, "12:30", ts.String())

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 8, 5, 0, 0, time.UTC)))
	assert.Equal(t, "08:05", ts.String())

	v, err := ts.Value()
	require.NoError(t, err)
	assert.Equal(t, "08:05:00", v)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())
	v, err = ts.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_TextRoundTrip(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.UnmarshalText([]byte("07:45")))

	out, err := ts.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "07:45", string(out))
}

func TestDateHelpers(t *testing.T) {
	d := time.Date(2025, 5, 2, 13, 14, 15, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), DateOnly(d))
	assert.True(t, IsSameDay(d, DateOnly(d)))
	assert.False(t, IsSameDay(d, d.AddDate(0, 0, 1)))

	parsed, err := ParseDate("2025-05-02")
	require.NoError(t, err)
	assert.True(t, IsSameDay(parsed, d))

	_, err = ParseDate("02.05.2025")
	assert.Error(t, err)
}
