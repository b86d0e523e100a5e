package nuodb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestValueToDriverValue(t *testing.T) {
	require.Equal(t, nil, mustToDriverValue(t, NullValue()))
	require.Equal(t, true, mustToDriverValue(t, BoolValue(true)))
	require.Equal(t, int64(42), mustToDriverValue(t, IntValue(42)))
	require.Equal(t, 3.5, mustToDriverValue(t, DoubleValue(3.5)))
	require.Equal(t, "abc", mustToDriverValue(t, StringValue("abc")))
	require.Equal(t, []byte{1, 2, 3}, mustToDriverValue(t, BytesValue([]byte{1, 2, 3})))

	id := uuid.New()
	require.Equal(t, id.String(), mustToDriverValue(t, UUIDValue(id)))

	dec := mustToDriverValue(t, DecimalValue(int128FromInt64(12345), 2))
	require.Equal(t, Decimal{Unscaled: int128FromInt64(12345), Scale: 2}, dec)
}

func mustToDriverValue(t *testing.T, v Value) interface{} {
	t.Helper()
	dv, err := v.toDriverValue()
	require.NoError(t, err)
	return dv
}

func TestValueFromDriverValue(t *testing.T) {
	v, err := valueFromDriverValue(nil)
	require.NoError(t, err)
	require.True(t, v.IsNull())

	v, err = valueFromDriverValue(int64(7))
	require.NoError(t, err)
	n, ok := v.asInt64()
	require.True(t, ok)
	require.Equal(t, int64(7), n)

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	v, err = valueFromDriverValue(now)
	require.NoError(t, err)
	require.Equal(t, now, v.t)

	_, err = valueFromDriverValue(42)
	require.Error(t, err)
	var de *DriverError
	require.ErrorAs(t, err, &de)
	require.Equal(t, InterfaceError, de.Kind)
}

func TestDecimalValuer(t *testing.T) {
	d := Decimal{Unscaled: int128FromInt64(-500), Scale: 2}
	dv, err := d.Value()
	require.NoError(t, err)
	require.Equal(t, "-5.00", dv)
}

func TestScaledToInt64(t *testing.T) {
	n, ok := scaledToInt64(int128FromInt64(12300), 2)
	require.True(t, ok)
	require.Equal(t, int64(123), n)

	_, ok = scaledToInt64(int128FromInt64(125), 2)
	require.True(t, ok)

	n, ok = scaledToInt64(int128FromInt64(100), 2)
	require.True(t, ok)
	require.Equal(t, int64(1), n)
}

func TestAsInt64RejectsNonIntegralKinds(t *testing.T) {
	_, ok := StringValue("5").asInt64()
	require.False(t, ok)
	_, ok = DoubleValue(5).asInt64()
	require.False(t, ok)
}
