package nuodb

import (
	"math/big"
	"strings"
)

var bigTen = big.NewInt(10)

// int128 is a two's-complement 128-bit signed integer, used as the unscaled
// magnitude of a Decimal. A fixed 128-bit type (rather than *big.Int) keeps
// the decimal stored inline in Value as a plain two-word field; math/big is reserved for the SRP layer, where true arbitrary
// precision modular exponentiation is required (see srp.go).
type int128 struct {
	hi int64
	lo uint64
}

func int128FromInt64(v int64) int128 {
	if v < 0 {
		return int128{hi: -1, lo: uint64(v)}
	}
	return int128{hi: 0, lo: uint64(v)}
}

func (v int128) negative() bool {
	return v.hi < 0
}

// toBig reinterprets v's 128-bit two's-complement pattern as a *big.Int.
func (v int128) toBig() *big.Int {
	lo := new(big.Int).SetUint64(v.lo)
	hi := new(big.Int).Lsh(new(big.Int).SetUint64(uint64(v.hi)), 64)
	val := new(big.Int).Or(hi, lo)
	if v.negative() {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		val.Sub(val, mod)
	}
	return val
}

// int128FromBig truncates b into its 128-bit two's-complement representation.
func int128FromBig(b *big.Int) int128 {
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	v := new(big.Int).Mod(b, mod)
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := int64(new(big.Int).Rsh(v, 64).Uint64())
	return int128{hi: hi, lo: lo}
}

// bytesSigned returns the shortest big-endian two's-complement
// representation of v, matching how the tagged codec picks the smallest
// legal payload for an integer or scaled-integer field.
func (v int128) bytesSigned() []byte {
	return bigToMinimalSigned(v.toBig())
}

// bigToMinimalSigned encodes b as the shortest big-endian two's-complement
// byte string that round-trips under bigFromSigned.
func bigToMinimalSigned(b *big.Int) []byte {
	if b.Sign() == 0 {
		return nil
	}
	if b.Sign() > 0 {
		raw := b.Bytes()
		if len(raw) > 0 && raw[0]&0x80 != 0 {
			raw = append([]byte{0}, raw...)
		}
		return raw
	}
	// negative: encode abs(b)-1, complement every byte, then make sure the
	// leading byte's sign bit is still set (prepend 0xff if it isn't).
	mag := new(big.Int).Neg(b)
	mag.Sub(mag, big.NewInt(1))
	raw := mag.Bytes()
	out := make([]byte, len(raw))
	for i, c := range raw {
		out[i] = ^c
	}
	if len(out) == 0 || out[0]&0x80 == 0 {
		out = append([]byte{0xff}, out...)
	}
	return out
}

// bigFromSigned decodes a big-endian two's-complement byte string (as
// produced by bigToMinimalSigned, or received on the wire) into a *big.Int.
func bigFromSigned(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	if b[0]&0x80 == 0 {
		return new(big.Int).SetBytes(b)
	}
	inv := make([]byte, len(b))
	for i, c := range b {
		inv[i] = ^c
	}
	v := new(big.Int).SetBytes(inv)
	v.Add(v, big.NewInt(1))
	v.Neg(v)
	return v
}

func int128FromSigned(b []byte) int128 {
	return int128FromBig(bigFromSigned(b))
}

// decimalString renders unscaled*10^-scale in plain decimal notation.
func decimalString(unscaled int128, scale int8) string {
	neg := unscaled.negative()
	b := unscaled.toBig()
	if neg {
		b = new(big.Int).Neg(b)
	}
	digits := b.String()

	var out string
	switch {
	case scale <= 0:
		out = digits + strings.Repeat("0", int(-scale))
	case int(scale) >= len(digits):
		out = "0." + strings.Repeat("0", int(scale)-len(digits)) + digits
	default:
		cut := len(digits) - int(scale)
		out = digits[:cut] + "." + digits[cut:]
	}
	if neg {
		out = "-" + out
	}
	return out
}

