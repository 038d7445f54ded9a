// Package keypath parses BIP 32 derivation paths and converts them to the
// binary layout the Ledger CKB app expects.
//
// A path is written as slash-separated segments with an optional "m/" prefix,
// e.g. "44'/309'/0'/0/0". A trailing apostrophe (or "h"/"H") marks a hardened
// segment, which sets the top bit of the 32-bit value.
package keypath

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// HardenedOffset is added to a segment value when the hardened marker is present.
const HardenedOffset uint32 = 0x80000000

// MaxSegments is the largest segment count that fits the one-byte length
// prefix of the wire encoding.
const MaxSegments = 255

// ErrMalformedPath is returned when a path string fails to parse or encodes
// to more segments than the wire format can carry.
var ErrMalformedPath = errors.New("keypath: malformed derivation path")

// DerivationPath is the computer friendly form of a hierarchical deterministic
// wallet derivation path: one uint32 per segment, hardened segments with the
// top bit set.
type DerivationPath []uint32

// Parse converts a textual derivation path into its numeric form.
func Parse(path string) (DerivationPath, error) {
	s := strings.TrimPrefix(path, "m/")
	if s == "m" || s == "" {
		return DerivationPath{}, nil
	}

	parts := strings.Split(s, "/")
	if len(parts) > MaxSegments {
		return nil, fmt.Errorf("%w: %d segments exceeds maximum of %d", ErrMalformedPath, len(parts), MaxSegments)
	}

	result := make(DerivationPath, 0, len(parts))
	for _, part := range parts {
		var hardened bool
		switch {
		case strings.HasSuffix(part, "'"), strings.HasSuffix(part, "h"), strings.HasSuffix(part, "H"):
			hardened = true
			part = part[:len(part)-1]
		}
		value, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q: %v", ErrMalformedPath, part, err)
		}
		if hardened && uint32(value) >= HardenedOffset {
			return nil, fmt.Errorf("%w: segment %q out of range for hardened derivation", ErrMalformedPath, part)
		}
		segment := uint32(value)
		if hardened {
			segment += HardenedOffset
		}
		result = append(result, segment)
	}
	return result, nil
}

// Encode flattens the path into the device layout: one segment-count byte
// followed by four big-endian bytes per segment.
func (path DerivationPath) Encode() ([]byte, error) {
	if len(path) > MaxSegments {
		return nil, fmt.Errorf("%w: %d segments exceeds maximum of %d", ErrMalformedPath, len(path), MaxSegments)
	}
	encoded := make([]byte, 1+4*len(path))
	encoded[0] = byte(len(path))
	for i, segment := range path {
		binary.BigEndian.PutUint32(encoded[1+4*i:], segment)
	}
	return encoded, nil
}

// Decode reverses Encode. The buffer must be exactly one count byte plus four
// bytes per counted segment.
func Decode(encoded []byte) (DerivationPath, error) {
	if len(encoded) < 1 {
		return nil, fmt.Errorf("%w: empty buffer", ErrMalformedPath)
	}
	count := int(encoded[0])
	if len(encoded) != 1+4*count {
		return nil, fmt.Errorf("%w: buffer length %d does not match %d segments", ErrMalformedPath, len(encoded), count)
	}
	path := make(DerivationPath, count)
	for i := range path {
		path[i] = binary.BigEndian.Uint32(encoded[1+4*i:])
	}
	return path, nil
}

// String renders the path back in the apostrophe notation.
func (path DerivationPath) String() string {
	var sb strings.Builder
	for i, segment := range path {
		if i > 0 {
			sb.WriteByte('/')
		}
		if segment >= HardenedOffset {
			sb.WriteString(strconv.FormatUint(uint64(segment-HardenedOffset), 10))
			sb.WriteByte('\'')
		} else {
			sb.WriteString(strconv.FormatUint(uint64(segment), 10))
		}
	}
	return sb.String()
}
