package nuodb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	enc, err := encodeValue(nil, v)
	require.NoError(t, err)
	got, rest, err := decodeValue(enc)
	require.NoError(t, err)
	require.Empty(t, rest)
	return got
}

func TestCodecRoundTripScalars(t *testing.T) {
	require.True(t, roundTrip(t, NullValue()).IsNull())
	require.Equal(t, true, roundTrip(t, BoolValue(true)).b)
	require.Equal(t, false, roundTrip(t, BoolValue(false)).b)

	for _, n := range []int64{-10, -1, 0, 31, 32, -11, 255, -256, 1 << 40, -(1 << 40)} {
		got := roundTrip(t, IntValue(n))
		v, ok := got.asInt64()
		require.True(t, ok)
		require.Equal(t, n, v)
	}
}

func TestCodecRoundTripDecimal(t *testing.T) {
	dec := DecimalValue(int128FromInt64(123456789), 3)
	got := roundTrip(t, dec)
	require.Equal(t, int8(3), got.scale)
	require.Equal(t, "123456.789", Decimal{Unscaled: got.u128, Scale: got.scale}.String())
}

func TestCodecRoundTripDouble(t *testing.T) {
	for _, f := range []float64{0, 1, -1, 3.14159, 1e100, -1e-100} {
		got := roundTrip(t, DoubleValue(f))
		require.Equal(t, f, got.f64)
	}
}

func TestCodecRoundTripString(t *testing.T) {
	short := "hello"
	long := make([]byte, 500)
	for i := range long {
		long[i] = byte('a' + i%26)
	}
	require.Equal(t, short, roundTrip(t, StringValue(short)).str)
	require.Equal(t, string(long), roundTrip(t, StringValue(string(long))).str)
}

func TestCodecRoundTripUUID(t *testing.T) {
	id := uuid.New()
	got := roundTrip(t, UUIDValue(id))
	require.Equal(t, id, got.id)
}

func TestCodecRoundTripDate(t *testing.T) {
	d := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	got := roundTrip(t, DateValue(d))
	require.Equal(t, d, got.t)
}

func TestCodecRoundTripTimestamp(t *testing.T) {
	ts := time.Date(2024, time.March, 15, 12, 30, 45, 123000000, time.UTC)
	got := roundTrip(t, TimestampValue(ts, 3))
	require.WithinDuration(t, ts, got.t, time.Millisecond)
}

func TestCodecShortBufferErrors(t *testing.T) {
	_, _, err := decodeValue(nil)
	require.Error(t, err)

	_, _, err = decodeValue([]byte{byte(tagIntLenBase + 3)}) // claims 4 bytes, has none
	require.Error(t, err)
}
