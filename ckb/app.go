// Package ckb implements the host-side protocol of the Ledger Nervos CKB
// app: it encodes each operation into APDU command frames, drives the
// multi-frame exchanges signing requires, and decodes the binary replies
// into public keys, addresses and signatures.
//
// All operations are strict sequences of blocking round trips over one
// transport. The package performs no retries and holds no state between
// operations; the device is the sole source of truth for keys. Callers must
// not issue more than one operation at a time against the same transport,
// because the device keeps per-exchange accumulation state.
package ckb

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/linkdesu/hw-app-ckb/address"
	"github.com/linkdesu/hw-app-ckb/apdu"
	"github.com/linkdesu/hw-app-ckb/keypath"
)

// MagicPrefix is prepended to every message before signing. It binds the
// signature to the message-signing domain so a signed message can never be
// replayed as a transaction.
const MagicPrefix = "Nervos Message:"

// App drives the CKB app on a Ledger device through an injected transport.
type App struct {
	transport apdu.Transport
}

// New wraps a transport in a CKB app client.
func New(transport apdu.Transport) *App {
	return &App{transport: transport}
}

// AppConfiguration reports the version and build hash of the app binary
// running on the device.
type AppConfiguration struct {
	Version string `json:"version"`
	Hash    string `json:"hash"`
}

// ExtendedPublicKey is a public key together with its BIP 32 chain code,
// both hex encoded.
type ExtendedPublicKey struct {
	PublicKey string `json:"publicKey"`
	ChainCode string `json:"chainCode"`
}

// GetAppConfiguration retrieves the app version and build hash in two
// sub-requests.
//
// The first reply carries three raw bytes:
//
//	Description               | Length
//	--------------------------+--------
//	Application major version | 1 byte
//	Application minor version | 1 byte
//	Application patch version | 1 byte
//
// The second reply is the ASCII build hash followed by a NUL byte and the
// status word; the trailing three bytes are dropped.
func (a *App) GetAppConfiguration(ctx context.Context) (*AppConfiguration, error) {
	versionReply, err := a.exchange(ctx, apdu.InsGetVersion, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	if len(versionReply) < 3 {
		return nil, fmt.Errorf("%w: version reply has %d bytes, want at least 3", apdu.ErrResponseTooShort, len(versionReply))
	}

	hashReply, err := a.exchange(ctx, apdu.InsGetAppHash, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	if len(hashReply) < 3 {
		return nil, fmt.Errorf("%w: hash reply has %d bytes, want at least 3", apdu.ErrResponseTooShort, len(hashReply))
	}

	return &AppConfiguration{
		Version: fmt.Sprintf("%d.%d.%d", versionReply[0], versionReply[1], versionReply[2]),
		Hash:    string(hashReply[:len(hashReply)-3]),
	}, nil
}

// GetWalletID retrieves the 32-byte identifier of the wallet held by the
// device, as a lowercase hex string. Any reply bytes past the identifier are
// ignored.
func (a *App) GetWalletID(ctx context.Context) (string, error) {
	reply, err := a.exchange(ctx, apdu.InsGetWalletID, 0, 0, nil)
	if err != nil {
		return "", err
	}
	if len(reply) < 32 {
		return "", fmt.Errorf("%w: wallet id reply has %d bytes, want at least 32", apdu.ErrResponseTooShort, len(reply))
	}
	return hex.EncodeToString(reply[:32]), nil
}

// GetWalletPublicKey retrieves the public key at the given derivation path
// and derives its address on the given network.
//
// The reply layout is:
//
//	Description       | Length
//	------------------+----------
//	Public key length | 1 byte
//	Public key        | arbitrary
func (a *App) GetWalletPublicKey(ctx context.Context, path string, network address.Network) (*address.KeyInfo, error) {
	encodedPath, err := encodePath(path)
	if err != nil {
		return nil, err
	}
	reply, err := a.exchange(ctx, apdu.InsGetPublicKey, 0, 0, encodedPath)
	if err != nil {
		return nil, err
	}
	rawKey, _, err := readLengthPrefixed(reply, "public key")
	if err != nil {
		return nil, err
	}
	return address.Derive(rawKey, network)
}

// GetWalletExtendedPublicKey retrieves the public key and BIP 32 chain code
// at the given derivation path.
//
// The reply layout is:
//
//	Description       | Length
//	------------------+----------
//	Public key length | 1 byte
//	Public key        | arbitrary
//	Chain code length | 1 byte
//	Chain code        | arbitrary
func (a *App) GetWalletExtendedPublicKey(ctx context.Context, path string) (*ExtendedPublicKey, error) {
	encodedPath, err := encodePath(path)
	if err != nil {
		return nil, err
	}
	reply, err := a.exchange(ctx, apdu.InsGetExtendedPublicKey, 0, 0, encodedPath)
	if err != nil {
		return nil, err
	}
	publicKey, rest, err := readLengthPrefixed(reply, "public key")
	if err != nil {
		return nil, err
	}
	chainCode, _, err := readLengthPrefixed(rest, "chain code")
	if err != nil {
		return nil, err
	}
	return &ExtendedPublicKey{
		PublicKey: hex.EncodeToString(publicKey),
		ChainCode: hex.EncodeToString(chainCode),
	}, nil
}

// SignMessage signs an arbitrary message with the key at the given
// derivation path and returns the 65-byte recoverable signature as hex. The
// message is prefixed with MagicPrefix before signing. When displayHex is
// set the device renders the message as hex instead of ASCII.
//
// The exchange is a handshake frame followed by one or more message chunks:
//
//	INS | P1 | Payload
//	----+----+------------------------------------
//	06  | 00 | display-as-hex flag + encoded path
//	06  | 01 | full 230-byte message chunk (repeated)
//	06  | 81 | final message chunk, 0-230 bytes
//
// Only the final frame's reply carries data: its first 65 bytes are the
// signature. A failure at any frame aborts the whole operation.
func (a *App) SignMessage(ctx context.Context, path string, messageHex string, displayHex bool) (string, error) {
	encodedPath, err := encodePath(path)
	if err != nil {
		return "", err
	}
	message, err := hex.DecodeString(messageHex)
	if err != nil {
		return "", fmt.Errorf("ckb: message is not valid hex: %w", err)
	}

	flag := byte(0x00)
	if displayHex {
		flag = 0x01
	}
	handshake := append([]byte{flag}, encodedPath...)

	prefixed := append([]byte(MagicPrefix), message...)
	reply, err := a.signChunked(ctx, handshake, prefixed)
	if err != nil {
		return "", err
	}
	return extractSignature(reply)
}

// SignMessageHash signs a caller-supplied digest with the key at the given
// derivation path. The digest always fits a single frame, so no chunking is
// involved:
//
//	INS | P1 | Payload
//	----+----+--------------
//	07  | 00 | encoded path
//	07  | 80 | raw digest
//
// The second reply's first 65 bytes are the signature.
func (a *App) SignMessageHash(ctx context.Context, path string, digestHex string) (string, error) {
	encodedPath, err := encodePath(path)
	if err != nil {
		return "", err
	}
	digest, err := hex.DecodeString(digestHex)
	if err != nil {
		return "", fmt.Errorf("ckb: digest is not valid hex: %w", err)
	}

	if _, err := a.exchange(ctx, apdu.InsSignMessageHash, apdu.P1Init, 0, encodedPath); err != nil {
		return "", err
	}
	reply, err := a.exchange(ctx, apdu.InsSignMessageHash, apdu.P1HashSign, 0, digest)
	if err != nil {
		return "", err
	}
	return extractSignature(reply)
}

func (a *App) exchange(ctx context.Context, ins, p1, p2 byte, data []byte) ([]byte, error) {
	return a.transport.Exchange(ctx, apdu.CLA, ins, p1, p2, data)
}

// encodePath parses and flattens a textual derivation path. Malformed paths
// fail here, before any transport call is made.
func encodePath(path string) ([]byte, error) {
	parsed, err := keypath.Parse(path)
	if err != nil {
		return nil, err
	}
	return parsed.Encode()
}

// readLengthPrefixed consumes a one-byte length and that many bytes from the
// front of buf, returning the field and the remainder.
func readLengthPrefixed(buf []byte, field string) ([]byte, []byte, error) {
	if len(buf) < 1 {
		return nil, nil, fmt.Errorf("%w: reply lacks %s length", apdu.ErrResponseTooShort, field)
	}
	length := int(buf[0])
	if len(buf) < 1+length {
		return nil, nil, fmt.Errorf("%w: reply carries %d of %d %s bytes", apdu.ErrResponseTooShort, len(buf)-1, length, field)
	}
	return buf[1 : 1+length], buf[1+length:], nil
}

func extractSignature(reply []byte) (string, error) {
	if len(reply) < apdu.SignatureLength {
		return "", fmt.Errorf("%w: signature reply has %d bytes, want at least %d", apdu.ErrResponseTooShort, len(reply), apdu.SignatureLength)
	}
	return hex.EncodeToString(reply[:apdu.SignatureLength]), nil
}
