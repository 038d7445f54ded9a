package apdu

import (
	"context"

	"github.com/rs/zerolog"
)

// WithLogger wraps a transport so that every exchange is traced at debug
// level: the command header and payload on the way out, the reply or the
// failure on the way back.
func WithLogger(next Transport, logger zerolog.Logger) Transport {
	return &loggingTransport{next: next, logger: logger}
}

type loggingTransport struct {
	next   Transport
	logger zerolog.Logger
}

func (t *loggingTransport) Exchange(ctx context.Context, cla, ins, p1, p2 byte, data []byte) ([]byte, error) {
	t.logger.Debug().
		Uint8("cla", cla).
		Uint8("ins", ins).
		Uint8("p1", p1).
		Uint8("p2", p2).
		Hex("data", data).
		Msg("apdu out")

	reply, err := t.next.Exchange(ctx, cla, ins, p1, p2, data)
	if err != nil {
		t.logger.Debug().Err(err).Uint8("ins", ins).Msg("apdu failed")
		return nil, err
	}

	t.logger.Debug().Hex("reply", reply).Msg("apdu in")
	return reply, nil
}
