package nuodb

import (
	"encoding/hex"
	"math"
	"time"
)

// Tag byte layout, transcribed from the authoritative table in spec.md
// §4.C (itself transcribed from original_source/pynuodb/protocol.py's
// "Data Types Encoding Rules" section, version 11). Each constant names the
// first tag of its range; width/length is derived arithmetically from the
// tag the way the source's encodedsession.py does, but through one
// tagged-union encode/decode pair instead of a chain of isinstance checks.
const (
	tagNull = 1
	tagTrue = 2
	tagFalse = 3

	tagIntNegBase   = 10 // 10..19: int -10..-1, value = tag-20
	tagIntSmallBase = 20 // 20..51: int 0..31, value = tag-20
	tagIntLenBase   = 52 // 52..59: signed int, length 1..8 = tag-51

	tagScaledIntBase = 60 // 60..68: scale byte + signed int, length 0..8 = tag-60

	tagStringLenPrefixBase = 69 // 69..72: length-prefix width 1..4 = tag-68
	tagOpaqueLenPrefixBase = 73 // 73..76: length-prefix width 1..4 = tag-72

	tagDoubleBase          = 77  // 77..85: length 0..8 = tag-77
	tagMillisEpochBase     = 86  // 86..94: length 0..8 = tag-86
	tagNanosEpochBase      = 95  // 95..103: length 0..8 = tag-95
	tagMillisMidnightBase  = 104 // 104..108: length 0..4 = tag-104

	tagStringInlineBase = 109 // 109..148: length 0..39 = tag-109
	tagOpaqueInlineBase = 149 // 149..188: length 0..39 = tag-149

	tagBlobBase = 189 // 189..193: length-prefix width 0..4 = tag-189
	tagClobBase = 194 // 194..198: length-prefix width 0..4 = tag-194

	tagFixedLegacy = 199

	tagUUID = 200

	// Scaled date/time/timestamp never use a zero-length payload (that
	// would collide with tagUUID at 200); a value of exactly 0 is encoded
	// with a single zero byte instead. This resolves the table's
	// otherwise-ambiguous "0..8 byte signed" wording for a range that only
	// has 8 tags to cover it.
	tagScaledDateBase      = 200 // 201..208: length 1..8 = tag-200
	tagScaledTimeBase      = 208 // 209..216: length 1..8 = tag-208
	tagScaledTimestampBase = 216 // 217..224: length 1..8 = tag-216

	tagFixedAlt = 225
)

const maxInlineLen = 39

// encodeValue appends v's shortest legal tagged encoding to dst and returns
// the result.
func encodeValue(dst []byte, v Value) ([]byte, error) {
	switch v.kind {
	case kindNull:
		return append(dst, tagNull), nil

	case kindBool:
		if v.b {
			return append(dst, tagTrue), nil
		}
		return append(dst, tagFalse), nil

	case kindInt:
		return encodeInt(dst, v.i64), nil

	case kindScaledInt:
		return encodeScaledInt(dst, v.u128, v.scale), nil

	case kindDouble:
		return encodeDouble(dst, v.f64), nil

	case kindString:
		return encodeStringLike(dst, tagStringInlineBase, tagStringLenPrefixBase, []byte(v.str)), nil

	case kindBytes:
		return encodeStringLike(dst, tagOpaqueInlineBase, tagOpaqueLenPrefixBase, v.bytes), nil

	case kindBlob:
		return encodeLobLike(dst, tagBlobBase, v.bytes), nil

	case kindClob:
		return encodeLobLike(dst, tagClobBase, []byte(v.str)), nil

	case kindUUID:
		enc := make([]byte, hex.EncodedLen(16))
		hex.Encode(enc, v.id[:])
		dst = append(dst, tagUUID)
		return append(dst, enc...), nil

	case kindDate:
		return encodeScaledTemporal(dst, tagScaledDateBase, dateToDays(v.t), 0), nil

	case kindTime:
		return encodeScaledTemporal(dst, tagScaledTimeBase, timeOfDayToScaledUnits(v.t, v.scale), v.scale), nil

	case kindTimestamp:
		return encodeScaledTemporal(dst, tagScaledTimestampBase, timestampToScaledUnits(v.t, v.scale), v.scale), nil

	default:
		return nil, newError(DataError, "cannot encode value of kind %d", v.kind)
	}
}

func encodeInt(dst []byte, v int64) []byte {
	if v >= -10 && v <= -1 {
		return append(dst, byte(v+20))
	}
	if v >= 0 && v <= 31 {
		return append(dst, byte(v+20))
	}
	payload := minimalSignedBytes(v)
	dst = append(dst, byte(tagIntLenBase+len(payload)-1))
	return append(dst, payload...)
}

func encodeScaledInt(dst []byte, u int128, scale int8) []byte {
	payload := u.bytesSigned()
	dst = append(dst, byte(tagScaledIntBase+len(payload)))
	dst = append(dst, byte(scale))
	return append(dst, payload...)
}

func encodeDouble(dst []byte, f float64) []byte {
	var buf [8]byte
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits >> (56 - 8*i))
	}
	n := 8
	for n > 0 && buf[n-1] == 0 {
		n--
	}
	dst = append(dst, byte(tagDoubleBase+n))
	return append(dst, buf[:n]...)
}

func decodeDouble(b []byte, n int) float64 {
	var buf [8]byte
	copy(buf[:n], b[:n])
	var bits uint64
	for i := 0; i < 8; i++ {
		bits = bits<<8 | uint64(buf[i])
	}
	return math.Float64frombits(bits)
}

// encodeStringLike picks the inline form when payload fits in maxInlineLen
// bytes, otherwise the length-prefixed form with the smallest length-field
// width that holds len(payload).
func encodeStringLike(dst []byte, inlineBase, lenPrefixBase int, payload []byte) []byte {
	if len(payload) <= maxInlineLen {
		dst = append(dst, byte(inlineBase+len(payload)))
		return append(dst, payload...)
	}
	width, lenBytes := minimalLengthField(len(payload))
	dst = append(dst, byte(lenPrefixBase+width-1))
	dst = append(dst, lenBytes...)
	return append(dst, payload...)
}

// encodeLobLike picks width 0 (no length field, implying empty payload) or
// the smallest of widths 1..4 that holds len(payload).
func encodeLobLike(dst []byte, base int, payload []byte) []byte {
	if len(payload) == 0 {
		return append(dst, byte(base))
	}
	width, lenBytes := minimalLengthField(len(payload))
	dst = append(dst, byte(base+width))
	dst = append(dst, lenBytes...)
	return append(dst, payload...)
}

// minimalLengthField returns the smallest big-endian byte width (1..4) that
// holds n, and that encoding.
func minimalLengthField(n int) (width int, b []byte) {
	switch {
	case n <= 0xff:
		return 1, []byte{byte(n)}
	case n <= 0xffff:
		return 2, []byte{byte(n >> 8), byte(n)}
	case n <= 0xffffff:
		return 3, []byte{byte(n >> 16), byte(n >> 8), byte(n)}
	default:
		return 4, []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	}
}

func encodeScaledTemporal(dst []byte, base int, units int64, scale int8) []byte {
	payload := minimalSignedBytes(units)
	dst = append(dst, byte(base+len(payload)))
	dst = append(dst, byte(scale))
	return append(dst, payload...)
}

// decodeValue consumes one tagged field from b and returns the decoded
// Value together with the unconsumed remainder.
func decodeValue(b []byte) (Value, []byte, error) {
	if len(b) == 0 {
		return Value{}, nil, newError(ProtocolError, "empty buffer while decoding a tagged value")
	}
	tag := int(b[0])
	rest := b[1:]

	switch {
	case tag == tagNull:
		return NullValue(), rest, nil
	case tag == tagTrue:
		return BoolValue(true), rest, nil
	case tag == tagFalse:
		return BoolValue(false), rest, nil

	case tag >= tagIntNegBase && tag <= 19:
		return IntValue(int64(tag - 20)), rest, nil
	case tag >= tagIntSmallBase && tag <= 51:
		return IntValue(int64(tag - 20)), rest, nil
	case tag >= tagIntLenBase && tag <= 59:
		n := tag - tagIntLenBase + 1
		payload, r, err := take(rest, n)
		if err != nil {
			return Value{}, nil, err
		}
		return IntValue(signedBytesFromMinimal(payload)), r, nil

	case tag >= tagScaledIntBase && tag <= 68:
		n := tag - tagScaledIntBase
		scaleByte, r, err := take(rest, 1)
		if err != nil {
			return Value{}, nil, err
		}
		payload, r2, err := take(r, n)
		if err != nil {
			return Value{}, nil, err
		}
		return DecimalValue(int128FromSigned(payload), int8(scaleByte[0])), r2, nil

	case tag >= tagStringLenPrefixBase && tag <= 72:
		width := tag - tagStringLenPrefixBase + 1
		payload, r, err := readLengthPrefixed(rest, width)
		if err != nil {
			return Value{}, nil, err
		}
		return StringValue(string(payload)), r, nil

	case tag >= tagOpaqueLenPrefixBase && tag <= 76:
		width := tag - tagOpaqueLenPrefixBase + 1
		payload, r, err := readLengthPrefixed(rest, width)
		if err != nil {
			return Value{}, nil, err
		}
		return BytesValue(payload), r, nil

	case tag >= tagDoubleBase && tag <= 85:
		n := tag - tagDoubleBase
		payload, r, err := take(rest, n)
		if err != nil {
			return Value{}, nil, err
		}
		return DoubleValue(decodeDouble(payload, n)), r, nil

	case tag >= tagMillisEpochBase && tag <= 94:
		n := tag - tagMillisEpochBase
		payload, r, err := take(rest, n)
		if err != nil {
			return Value{}, nil, err
		}
		ms := signedBytesFromMinimal(payload)
		return TimestampValue(time.UnixMilli(ms).UTC(), 3), r, nil

	case tag >= tagNanosEpochBase && tag <= 103:
		n := tag - tagNanosEpochBase
		payload, r, err := take(rest, n)
		if err != nil {
			return Value{}, nil, err
		}
		ns := signedBytesFromMinimal(payload)
		return TimestampValue(time.Unix(0, ns).UTC(), 9), r, nil

	case tag >= tagMillisMidnightBase && tag <= 108:
		n := tag - tagMillisMidnightBase
		payload, r, err := take(rest, n)
		if err != nil {
			return Value{}, nil, err
		}
		ms := signedBytesFromMinimal(payload)
		return TimeValue(scaledUnitsToTimeOfDay(ms, 3), 3), r, nil

	case tag >= tagStringInlineBase && tag <= 148:
		n := tag - tagStringInlineBase
		payload, r, err := take(rest, n)
		if err != nil {
			return Value{}, nil, err
		}
		return StringValue(string(payload)), r, nil

	case tag >= tagOpaqueInlineBase && tag <= 188:
		n := tag - tagOpaqueInlineBase
		payload, r, err := take(rest, n)
		if err != nil {
			return Value{}, nil, err
		}
		return BytesValue(payload), r, nil

	case tag >= tagBlobBase && tag <= 193:
		width := tag - tagBlobBase
		payload, r, err := readLengthPrefixedOrEmpty(rest, width)
		if err != nil {
			return Value{}, nil, err
		}
		return BlobValue(payload), r, nil

	case tag >= tagClobBase && tag <= 198:
		width := tag - tagClobBase
		payload, r, err := readLengthPrefixedOrEmpty(rest, width)
		if err != nil {
			return Value{}, nil, err
		}
		return ClobValue(string(payload)), r, nil

	case tag == tagFixedLegacy || tag == tagFixedAlt:
		scaleByte, r, err := take(rest, 1)
		if err != nil {
			return Value{}, nil, err
		}
		payload, r2, err := take(r, 8)
		if err != nil {
			return Value{}, nil, err
		}
		return DecimalValue(int128FromSigned(payload), int8(scaleByte[0])), r2, nil

	case tag == tagUUID:
		payload, r, err := take(rest, hex.EncodedLen(16))
		if err != nil {
			return Value{}, nil, err
		}
		var raw [16]byte
		if _, err := hex.Decode(raw[:], payload); err != nil {
			return Value{}, nil, wrapError(ProtocolError, err, "malformed UUID payload")
		}
		return UUIDValue(raw), r, nil

	case tag >= 201 && tag <= 208:
		n := tag - tagScaledDateBase
		scaleByte, r, err := take(rest, 1)
		if err != nil {
			return Value{}, nil, err
		}
		payload, r2, err := take(r, n)
		if err != nil {
			return Value{}, nil, err
		}
		days := signedBytesFromMinimal(payload)
		return Value{kind: kindDate, t: daysToDate(days), scale: int8(scaleByte[0])}, r2, nil

	case tag >= 209 && tag <= 216:
		n := tag - tagScaledTimeBase
		scaleByte, r, err := take(rest, 1)
		if err != nil {
			return Value{}, nil, err
		}
		payload, r2, err := take(r, n)
		if err != nil {
			return Value{}, nil, err
		}
		units := signedBytesFromMinimal(payload)
		scale := int8(scaleByte[0])
		return TimeValue(scaledUnitsToTimeOfDay(units, scale), scale), r2, nil

	case tag >= 217 && tag <= 224:
		n := tag - tagScaledTimestampBase
		scaleByte, r, err := take(rest, 1)
		if err != nil {
			return Value{}, nil, err
		}
		payload, r2, err := take(r, n)
		if err != nil {
			return Value{}, nil, err
		}
		units := signedBytesFromMinimal(payload)
		scale := int8(scaleByte[0])
		return TimestampValue(scaledUnitsToTimestamp(units, scale, time.UTC), scale), r2, nil

	default:
		return Value{}, nil, newError(ProtocolError, "unrecognized tag %d", tag)
	}
}

func take(b []byte, n int) ([]byte, []byte, error) {
	if len(b) < n {
		return nil, nil, newError(ProtocolError, "short buffer: need %d bytes, have %d", n, len(b))
	}
	return b[:n], b[n:], nil
}

func readLengthPrefixed(b []byte, width int) ([]byte, []byte, error) {
	lenBytes, r, err := take(b, width)
	if err != nil {
		return nil, nil, err
	}
	n := 0
	for _, c := range lenBytes {
		n = n<<8 | int(c)
	}
	return take(r, n)
}

func readLengthPrefixedOrEmpty(b []byte, width int) ([]byte, []byte, error) {
	if width == 0 {
		return nil, b, nil
	}
	return readLengthPrefixed(b, width)
}
