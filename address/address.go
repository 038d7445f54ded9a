// Package address turns a raw public key returned by the device into a
// Nervos CKB address.
//
// The pipeline is fixed: compress the secp256k1 point, hash it with CKB's
// personalized blake2b, keep the first twenty bytes as the lock script
// argument, wrap that in the secp256k1-blake160 lock script payload and
// encode the result as a bech32m string with the network prefix.
package address

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/minio/blake2b-simd"
)

// Network selects the human-readable prefix of encoded addresses.
type Network int

const (
	// Mainnet addresses carry the "ckb" prefix.
	Mainnet Network = iota
	// Testnet addresses carry the "ckt" prefix.
	Testnet
)

// Personalization is the 16-byte domain separator of CKB's blake2b variant.
const Personalization = "ckb-default-hash"

// HashType of the lock script in the full address payload. 0x01 selects
// resolution by type script hash.
const HashType byte = 0x01

// MaxEncodedLength caps encoded addresses. CKB full addresses exceed the
// conventional bech32 90-character limit, so the chain defines its own
// ceiling instead.
const MaxEncodedLength = 1023

// rawPublicKeyLength is the uncompressed point layout the device returns:
// 0x04 || X[32] || Y[32].
const rawPublicKeyLength = 65

// lockArgLength is the truncated-hash length identifying a key in a lock
// script.
const lockArgLength = 20

// codeHash is the on-chain hash of the secp256k1-blake160-sighash-all lock
// script every derived address spends through.
var codeHash = [32]byte{
	0x9b, 0xd7, 0xe0, 0x6f, 0x3e, 0xcf, 0x4b, 0xe0,
	0xf2, 0xfc, 0xd2, 0x18, 0x8b, 0x23, 0xf1, 0xb9,
	0xfc, 0xc8, 0x8e, 0x5d, 0x4b, 0x65, 0xa8, 0x63,
	0x7b, 0x17, 0x72, 0x3b, 0xbd, 0xa3, 0xcc, 0xe8,
}

// ErrInvalidPublicKey is returned when the device hands back a public key
// that is not a valid 65-byte uncompressed secp256k1 point.
var ErrInvalidPublicKey = errors.New("address: invalid public key")

// KeyInfo is the derived view of one device key.
type KeyInfo struct {
	// PublicKey is the hex of the 33-byte compressed point.
	PublicKey string `json:"publicKey"`
	// LockArg is the hex of the 20-byte lock script argument.
	LockArg string `json:"lockArg"`
	// Address is the bech32m-encoded address on the selected network.
	Address string `json:"address"`
}

// Prefix returns the bech32 human-readable part of the network.
func (n Network) Prefix() string {
	if n == Testnet {
		return "ckt"
	}
	return "ckb"
}

// Derive runs the full pipeline on a raw device public key. It is pure and
// deterministic: the same key and network always produce the same result.
func Derive(rawPublicKey []byte, network Network) (*KeyInfo, error) {
	if len(rawPublicKey) != rawPublicKeyLength {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPublicKey, len(rawPublicKey), rawPublicKeyLength)
	}
	key, err := btcec.ParsePubKey(rawPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	compressed := key.SerializeCompressed()

	lockArg, err := Blake160(compressed)
	if err != nil {
		return nil, err
	}

	encoded, err := encodeScript(lockArg, network)
	if err != nil {
		return nil, err
	}

	return &KeyInfo{
		PublicKey: hex.EncodeToString(compressed),
		LockArg:   hex.EncodeToString(lockArg),
		Address:   encoded,
	}, nil
}

// Blake160 is CKB's key identifier hash: the first twenty bytes of a
// personalized blake2b-256 digest.
func Blake160(data []byte) ([]byte, error) {
	digest, err := Blake256(data)
	if err != nil {
		return nil, err
	}
	return digest[:lockArgLength], nil
}

// Blake256 computes the 32-byte blake2b digest with the ckb-default-hash
// personalization.
func Blake256(data []byte) ([]byte, error) {
	h, err := blake2b.New(&blake2b.Config{
		Size:   32,
		Person: []byte(Personalization),
	})
	if err != nil {
		return nil, fmt.Errorf("address: blake2b init: %w", err)
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// encodeScript assembles the full-address payload around the lock arg and
// encodes it with the bech32m checksum variant.
//
//	Description         | Length
//	--------------------+--------
//	Format type (full)  | 1 byte, 0x00
//	Lock script hash    | 32 bytes, fixed
//	Hash type           | 1 byte, 0x01
//	Lock arg            | 20 bytes
func encodeScript(lockArg []byte, network Network) (string, error) {
	payload := make([]byte, 0, 2+len(codeHash)+len(lockArg))
	payload = append(payload, 0x00)
	payload = append(payload, codeHash[:]...)
	payload = append(payload, HashType)
	payload = append(payload, lockArg...)

	grouped, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("address: regroup payload: %w", err)
	}
	encoded, err := bech32.EncodeM(network.Prefix(), grouped)
	if err != nil {
		return "", fmt.Errorf("address: bech32m encode: %w", err)
	}
	if len(encoded) > MaxEncodedLength {
		return "", fmt.Errorf("address: encoded length %d exceeds maximum of %d", len(encoded), MaxEncodedLength)
	}
	return encoded, nil
}
