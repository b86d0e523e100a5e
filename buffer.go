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

// buffer is a reusable byte buffer backing one frame's enciphered wire bytes.
// It is reset and reused across requests/responses on the same connection so
// those bytes do not need a fresh array per frame; readFrame still allocates
// a new slice for each deciphered body.
type buffer struct {
	buff   []byte
	cap    int
	off    int
	length int
}

func (b *buffer) New(cap int) {
	b.off, b.length = 0, 0
	b.buff = make([]byte, cap)
	b.cap = cap
}

func (b *buffer) Set(length int) {
	b.length = length
}

func (b *buffer) Len() int {
	return b.length
}

// Reset discards prior content and ensures capacity for at least cap bytes,
// growing the backing array if needed, and returns it for writing.
func (b *buffer) Reset(cap int) []byte {
	b.off = 0
	b.length = 0

	if cap > b.cap {
		b.buff = make([]byte, cap)
		b.cap = cap
	}

	return b.buff[0:]
}

func (b *buffer) Seek(off int) {
	b.off = off
}

func (b *buffer) Tell() int {
	return b.off
}

func (b *buffer) Read(length int) []byte {
	beg := b.off
	b.off += length
	return b.buff[beg:b.off]
}

func (b *buffer) Write(p []byte) (int, error) {
	n := copy(b.buff[b.off:], p)
	b.off += n
	b.length = b.off
	return n, nil
}
