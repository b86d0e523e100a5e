/*
  The MIT License (MIT)

  Copyright (c) 2015 Nirbhay Choubey

  Permission is hereby granted, free of charge, to any person obtaining a copy
  of this software and associated documentation files (the "Software"), to deal
  in the Software without restriction, including without limitation the rights
  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
  copies of the Software, and to permit persons to whom the Software is
  furnished to do so, subject to the following conditions:

  The above copyright notice and this permission notice shall be included in all
  copies or substantial portions of the Software.

  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
  SOFTWARE.
*/

package nuodb

// The wire format is big-endian throughout, unlike the little-endian,
// length-encoded-integer scheme this file's MySQL ancestor implemented; the
// helpers below replace getLenencInt/putLenencInt and the null-bitmap
// helpers with the minimal-signed-bytes encoding the tagged codec needs.

// putUint32 writes v as 4 big-endian bytes, used for the frame length prefix.
func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

// getUint32 reads 4 big-endian bytes, used for the frame length prefix.
func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// minimalSignedBytes returns the shortest big-endian two's-complement
// encoding of v, 1..8 bytes, matching the codec's signed-int tag payload.
func minimalSignedBytes(v int64) []byte {
	var buf [8]byte
	putUint32(buf[0:4], uint32(v>>32))
	putUint32(buf[4:8], uint32(v))

	start := 0
	for start < 7 {
		b, next := buf[start], buf[start+1]
		if (b == 0x00 && next&0x80 == 0) || (b == 0xff && next&0x80 != 0) {
			start++
			continue
		}
		break
	}
	return append([]byte{}, buf[start:]...)
}

// signedBytesFromMinimal decodes a 1..8-byte big-endian two's-complement
// payload, sign-extending to int64.
func signedBytesFromMinimal(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}
	var v int64
	if b[0]&0x80 != 0 {
		v = -1
	}
	for _, c := range b {
		v = v<<8 | int64(uint8(c))
	}
	return v
}

// zerofy overwrites b with zeros. Nothing in the package calls it.
func zerofy(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
