package nuodb

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInt128RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 12345, -12345, 1<<62 - 1, -(1 << 62)} {
		got := int128FromInt64(v).toBig()
		require.Equal(t, big.NewInt(v), got)
	}
}

func TestInt128FromBigTruncatesLikeTwosComplement(t *testing.T) {
	b := new(big.Int).Lsh(big.NewInt(1), 200)
	v := int128FromBig(b)
	require.Equal(t, int128{}, v) // 2^200 mod 2^128 == 0
}

func TestInt128SignedBytesRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 127, -128, 128, -129, 70000, -70000} {
		b := int128FromInt64(v).bytesSigned()
		got := int128FromSigned(b)
		require.Equal(t, int128FromInt64(v).toBig(), got.toBig())
	}
}

func TestDecimalString(t *testing.T) {
	cases := []struct {
		unscaled int64
		scale    int8
		want     string
	}{
		{12345, 2, "123.45"},
		{-12345, 2, "-123.45"},
		{5, 0, "5"},
		{5, 3, "0.005"},
		{-5, 3, "-0.005"},
	}
	for _, c := range cases {
		got := decimalString(int128FromInt64(c.unscaled), c.scale)
		require.Equal(t, c.want, got)
	}
}
