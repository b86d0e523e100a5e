package nuodb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeRowWindow(t *testing.T, rows [][]Value, terminate bool) []byte {
	t.Helper()
	var b []byte
	for _, row := range rows {
		var err error
		b, err = encodeValue(b, IntValue(1))
		require.NoError(t, err)
		for _, v := range row {
			b, err = encodeValue(b, v)
			require.NoError(t, err)
		}
	}
	if terminate {
		b, _ = encodeValue(b, IntValue(0))
	}
	return b
}

func TestDecodeRowWindowExhausted(t *testing.T) {
	rows := [][]Value{
		{IntValue(1), StringValue("a")},
		{IntValue(2), StringValue("b")},
	}
	buf := encodeRowWindow(t, rows, true)

	got, rest, exhausted, err := decodeRowWindow(buf, 2)
	require.NoError(t, err)
	require.True(t, exhausted)
	require.Empty(t, rest)
	require.Len(t, got, 2)
	n, _ := got[0][0].asInt64()
	require.Equal(t, int64(1), n)
	require.Equal(t, "b", got[1][1].str)
}

func TestDecodeRowWindowUnterminatedMeansMoreAvailable(t *testing.T) {
	rows := [][]Value{{IntValue(7)}}
	buf := encodeRowWindow(t, rows, false)

	got, rest, exhausted, err := decodeRowWindow(buf, 1)
	require.NoError(t, err)
	require.False(t, exhausted)
	require.Empty(t, rest)
	require.Len(t, got, 1)
}

func TestDecodeRowWindowEmpty(t *testing.T) {
	got, _, exhausted, err := decodeRowWindow(nil, 3)
	require.NoError(t, err)
	require.False(t, exhausted)
	require.Empty(t, got)
}

func TestDecodeRowWindowTruncatedRowErrors(t *testing.T) {
	var b []byte
	b, _ = encodeValue(b, IntValue(1))
	b, _ = encodeValue(b, IntValue(42)) // only one of two expected columns present
	_, _, _, err := decodeRowWindow(b, 2)
	require.Error(t, err)
}

func TestResultSetNextDrainsBufferedWindowWithoutFetching(t *testing.T) {
	rs := &resultSet{
		columnCount: 1,
		rows:        [][]Value{{IntValue(10)}, {IntValue(20)}},
		exhausted:   true,
	}
	row, err := rs.next()
	require.NoError(t, err)
	n, _ := row[0].asInt64()
	require.Equal(t, int64(10), n)

	row, err = rs.next()
	require.NoError(t, err)
	n, _ = row[0].asInt64()
	require.Equal(t, int64(20), n)

	row, err = rs.next()
	require.NoError(t, err)
	require.Nil(t, row)
}

func TestParseResultSetBootstrap(t *testing.T) {
	var b []byte
	b, _ = encodeValue(b, IntValue(99))   // handle
	b, _ = encodeValue(b, IntValue(2))    // column count
	b, _ = encodeValue(b, StringValue("ID"))
	b, _ = encodeValue(b, StringValue("NAME"))
	b = append(b, encodeRowWindow(t, [][]Value{{IntValue(1), StringValue("x")}}, true)...)

	rs, err := parseResultSetBootstrap(b)
	require.NoError(t, err)
	require.Equal(t, int64(99), rs.handle)
	require.Equal(t, 2, rs.columnCount)
	require.True(t, rs.exhausted)
	require.Len(t, rs.rows, 1)
}
