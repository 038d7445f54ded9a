package apdu

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestCommandMarshalBinary(t *testing.T) {
	cmd := Command{INS: InsGetPublicKey, P1: 0x00, P2: 0x00, Data: []byte{0x01, 0x80, 0x00, 0x00, 0x2c}}

	frame, err := cmd.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{0x80, 0x02, 0x00, 0x00, 0x05, 0x01, 0x80, 0x00, 0x00, 0x2c}, frame)
}

func TestCommandMarshalBinaryEmptyData(t *testing.T) {
	frame, err := Command{INS: InsGetVersion}.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{0x80, 0x00, 0x00, 0x00, 0x00}, frame)
}

func TestCommandMarshalBinaryOversized(t *testing.T) {
	_, err := Command{INS: InsSignMessage, Data: make([]byte, 256)}.MarshalBinary()
	require.Error(t, err)
}

type recordingTransport struct {
	lastData []byte
	reply    []byte
	err      error
}

func (r *recordingTransport) Exchange(_ context.Context, _, _, _, _ byte, data []byte) ([]byte, error) {
	r.lastData = append([]byte(nil), data...)
	return r.reply, r.err
}

func TestWithLoggerPassesThrough(t *testing.T) {
	inner := &recordingTransport{reply: []byte{0xAA, 0x90, 0x00}}
	var buf bytes.Buffer
	wrapped := WithLogger(inner, zerolog.New(&buf))

	reply, err := wrapped.Exchange(context.Background(), CLA, InsGetWalletID, 0, 0, []byte{0x01})
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0x90, 0x00}, reply)
	require.Equal(t, []byte{0x01}, inner.lastData)
	require.Contains(t, buf.String(), "apdu out")
	require.Contains(t, buf.String(), "apdu in")
}

func TestWithLoggerPropagatesError(t *testing.T) {
	wantErr := errors.New("device unplugged")
	inner := &recordingTransport{err: wantErr}
	wrapped := WithLogger(inner, zerolog.Nop())

	_, err := wrapped.Exchange(context.Background(), CLA, InsGetVersion, 0, 0, nil)
	require.ErrorIs(t, err, wantErr)
}
