// Package transport provides an apdu.Transport over a TCP connection, using
// the framing spoken by the Speculos emulator and Ledger TCP proxies: each
// direction is a 4-byte big-endian length followed by that many bytes, with
// the reply trailed by a 2-byte status word outside the counted length.
package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/linkdesu/hw-app-ckb/apdu"
)

// StatusError reports a device reply whose status word is not 0x9000. This
// covers on-device rejections such as the user declining a signature.
type StatusError struct {
	Code uint16
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: device returned status 0x%04x", e.Code)
}

// TCP is an apdu.Transport over a single TCP connection. It is not safe for
// concurrent exchanges; callers run one operation at a time, which is also
// what the device's session state requires.
type TCP struct {
	conn net.Conn
}

// Dial connects to a Speculos emulator or APDU proxy at addr ("host:port").
func Dial(addr string) (*TCP, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return &TCP{conn: conn}, nil
}

// NewTCP wraps an existing connection. Mainly useful for tests.
func NewTCP(conn net.Conn) *TCP {
	return &TCP{conn: conn}
}

// Exchange sends one command frame and reads its reply. The returned bytes
// include the trailing status word, matching what the protocol layer
// expects; a non-OK status word fails with *StatusError.
func (t *TCP) Exchange(ctx context.Context, cla, ins, p1, p2 byte, data []byte) ([]byte, error) {
	if cla != apdu.CLA {
		return nil, fmt.Errorf("transport: unsupported class byte 0x%02x", cla)
	}
	frame, err := apdu.Command{INS: ins, P1: p1, P2: p2, Data: data}.MarshalBinary()
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("transport: set deadline: %w", err)
		}
	}

	out := make([]byte, 4+len(frame))
	binary.BigEndian.PutUint32(out, uint32(len(frame)))
	copy(out[4:], frame)
	if _, err := t.conn.Write(out); err != nil {
		return nil, fmt.Errorf("transport: write: %w", err)
	}

	var lengthPrefix [4]byte
	if _, err := io.ReadFull(t.conn, lengthPrefix[:]); err != nil {
		return nil, fmt.Errorf("transport: read length: %w", err)
	}
	length := binary.BigEndian.Uint32(lengthPrefix[:])

	reply := make([]byte, length+2)
	if _, err := io.ReadFull(t.conn, reply); err != nil {
		return nil, fmt.Errorf("transport: read reply: %w", err)
	}

	status := binary.BigEndian.Uint16(reply[length:])
	if status != apdu.StatusOK {
		return nil, &StatusError{Code: status}
	}
	return reply, nil
}

// Close shuts the underlying connection down.
func (t *TCP) Close() error {
	return t.conn.Close()
}
