package ckb

import (
	"context"

	"github.com/linkdesu/hw-app-ckb/apdu"
)

// signState tracks where a chunked signing exchange is. The device
// accumulates message bytes across frames, so frames must be sent strictly
// in order, each waiting for the previous reply.
type signState int

const (
	stateInit signState = iota
	stateContinuing
	stateFinal
	stateDone
)

// splitMessage slices a message into frames of at most apdu.MaxChunkSize
// bytes. Every frame before the last is exactly full-sized. When the length
// is an exact multiple of the chunk size the final frame is empty: the
// device requires an explicit final marker even with no payload, and
// skipping it would desynchronize its accumulation state.
func splitMessage(message []byte) [][]byte {
	full := len(message) / apdu.MaxChunkSize
	chunks := make([][]byte, 0, full+1)
	for i := 0; i < full; i++ {
		chunks = append(chunks, message[i*apdu.MaxChunkSize:(i+1)*apdu.MaxChunkSize])
	}
	return append(chunks, message[full*apdu.MaxChunkSize:])
}

// signChunked runs the init/continue/final frame sequence of a message
// signing exchange and returns the final frame's reply. Replies to the
// handshake and continuation frames carry no payload of interest. Any frame
// failure aborts the sequence; no partial result survives.
func (a *App) signChunked(ctx context.Context, handshake, message []byte) ([]byte, error) {
	chunks := splitMessage(message)

	var reply []byte
	state := stateInit
	for state != stateDone {
		switch state {
		case stateInit:
			if _, err := a.exchange(ctx, apdu.InsSignMessage, apdu.P1Init, 0, handshake); err != nil {
				return nil, err
			}
			if len(chunks) > 1 {
				state = stateContinuing
			} else {
				state = stateFinal
			}

		case stateContinuing:
			if _, err := a.exchange(ctx, apdu.InsSignMessage, apdu.P1Continue, 0, chunks[0]); err != nil {
				return nil, err
			}
			chunks = chunks[1:]
			if len(chunks) == 1 {
				state = stateFinal
			}

		case stateFinal:
			final, err := a.exchange(ctx, apdu.InsSignMessage, apdu.P1Final, 0, chunks[0])
			if err != nil {
				return nil, err
			}
			reply = final
			state = stateDone
		}
	}
	return reply, nil
}
