package uniuri

import (
	"crypto/rand"
)

const (
	// TokenLen gives roughly 190 bits of entropy with TokenChars.
	TokenLen = 32
	// ReferenceLen is the length of a download request reference code.
	ReferenceLen = 10
)

var (
	// TokenChars is the alphabet for visitor and session tokens.
	TokenChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")
	// ReferenceChars leaves out 0, O, 1 and I so codes can be read over the phone.
	ReferenceChars = []byte("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
)

// NewToken returns a random visitor token.
func NewToken() string {
	return NewLenChars(TokenLen, TokenChars)
}

// NewReference returns a random reference code.
func NewReference() string {
	return NewLenChars(ReferenceLen, ReferenceChars)
}

// NewLenChars returns a random string of length characters drawn from chars
// (between 2 and 256 of them). Bytes that would bias the modulo are rejected.
func NewLenChars(length int, chars []byte) string {
	if length <= 0 {
		return ""
	}

	clen := len(chars)
	if clen < 2 || clen > 256 {
		panic("uniuri: wrong charset length for NewLenChars")
	}

	limit := 256 - (256 % clen)
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2+1)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: error reading random bytes: " + err.Error())
		}

		for _, rb := range buf {
			if int(rb) >= limit {
				continue
			}

			out = append(out, chars[int(rb)%clen])
			if len(out) == length {
				break
			}
		}
	}

	return string(out)
}
