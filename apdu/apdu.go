// Package apdu defines the wire-level command framing shared by every
// operation of the Ledger CKB app, along with the transport capability the
// protocol layer consumes.
//
// The command layout follows the ISO 7816-4 short form used by Ledger apps:
//
//	Description        | Length
//	-------------------+--------
//	APDU CLA           | 1 byte
//	APDU INS           | 1 byte
//	APDU P1            | 1 byte
//	APDU P2            | 1 byte
//	APDU length (Lc)   | 1 byte
//	Optional APDU data | arbitrary
package apdu

import (
	"context"
	"errors"
	"fmt"
)

// CLA is the instruction class byte. It is the same for every command the
// CKB app understands.
const CLA byte = 0x80

// Instruction codes of the CKB app.
const (
	InsGetVersion           byte = 0x00 // App version, three raw bytes
	InsGetWalletID          byte = 0x01 // 32-byte wallet identifier
	InsGetPublicKey         byte = 0x02 // Public key for a derivation path
	InsGetExtendedPublicKey byte = 0x04 // Public key plus chain code
	InsSignMessage          byte = 0x06 // Chunked message signing
	InsSignMessageHash      byte = 0x07 // Signing of a caller-supplied digest
	InsGetAppHash           byte = 0x09 // Build hash of the app binary
)

// P1 values sequencing multi-frame exchanges. The same values are reused
// across instructions.
const (
	P1Init     byte = 0x00 // First frame of an exchange
	P1Continue byte = 0x01 // Intermediate message chunk
	P1Final    byte = 0x81 // Last message chunk, reply carries the signature
	P1HashSign byte = 0x80 // Digest frame of a sign-hash exchange
)

// MaxChunkSize is the largest data payload a single frame may carry.
const MaxChunkSize = 230

// SignatureLength is the byte length of the recoverable signatures the app
// returns.
const SignatureLength = 65

// StatusOK is the status word a successful exchange trails with.
const StatusOK uint16 = 0x9000

// ErrResponseTooShort is returned when a device reply is shorter than the
// operation's response layout requires. Replies are decoded positionally, so
// a short buffer means the host and the app firmware disagree about the
// protocol; it is never truncated-read.
var ErrResponseTooShort = errors.New("apdu: response too short")

// Transport moves one command frame to the device and returns its reply.
// The reply includes the trailing two status bytes; implementations must
// reject non-OK status words themselves. Errors propagate to the caller
// unchanged, and no retries happen at this layer.
type Transport interface {
	Exchange(ctx context.Context, cla, ins, p1, p2 byte, data []byte) ([]byte, error)
}

// Command is a single request frame prior to serialization. CLA and Lc are
// filled in during marshaling.
type Command struct {
	INS  byte
	P1   byte
	P2   byte
	Data []byte
}

// MarshalBinary encodes the command in the short-form APDU layout.
func (c Command) MarshalBinary() ([]byte, error) {
	if len(c.Data) > 255 {
		return nil, fmt.Errorf("apdu: data length %d exceeds one-byte Lc", len(c.Data))
	}
	frame := make([]byte, 0, 5+len(c.Data))
	frame = append(frame, CLA, c.INS, c.P1, c.P2, byte(len(c.Data)))
	frame = append(frame, c.Data...)
	return frame, nil
}
