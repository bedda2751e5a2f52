package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
		minutes int
	}{
		{in: "00:00", minutes: 0},
		{in: "09:30", minutes: 570},
		{in: "23:59", minutes: 1439},
		{in: "24:00", wantErr: true},
		{in: "9:30", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "09:30:00", wantErr: true},
		{in: "", wantErr: true},
		{in: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ts, err := NewTimeStringFromString(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeFormat)
				assert.True(t, ts.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.minutes, ts.Minutes())
			assert.Equal(t, tt.in, ts.String())
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	start := MustTimeString("17:00")

	end, err := start.AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, "18:00", end.String())

	_, err = MustTimeString("23:30").AddMinutes(30)
	assert.ErrorIs(t, err, ErrTimeOutOfRange)
}

func TestTimeString_Compare(t *testing.T) {
	a := MustTimeString("10:00")
	b := MustTimeString("10:30")

	assert.True(t, a.IsBefore(b))
	assert.False(t, b.IsBefore(a))
	assert.True(t, b.IsAfter(a))
	assert.False(t, a.IsBefore(a))
	assert.True(t, a.Equal(MustTimeString("10:00")))
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("14:15:00")))
	assert.Equal(t, "14:15", ts.String())

	require.NoError(t, ts.Scan("08:05"))
	assert.Equal(t, "08:05", ts.String())

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 21, 45, 10, 0, time.UTC)))
	assert.Equal(t, "21:45", ts.String())

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_Value(t *testing.T) {
	v, err := MustTimeString("07:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "07:00", v)

	v, err = TimeString{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTimeString_JSON(t *testing.T) {
	type wrapper struct {
		Open  TimeString `json:"open"`
		Close TimeString `json:"close"`
	}

	data, err := json.Marshal(wrapper{Open: MustTimeString("09:00")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"open":"09:00","close":null}`, string(data))

	var decoded wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"open":"09:00","close":"18:00"}`), &decoded))
	assert.Equal(t, "09:00", decoded.Open.String())
	assert.Equal(t, "18:00", decoded.Close.String())

	assert.Error(t, json.Unmarshal([]byte(`{"open":"9am"}`), &decoded))
}

func TestTimeString_OnDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	date := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

	got := MustTimeString("10:30").OnDate(date, loc)
	assert.Equal(t, time.Date(2025, 10, 15, 10, 30, 0, 0, loc), got)
}
