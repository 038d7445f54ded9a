package address

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// The secp256k1 generator point, a convenient known-good uncompressed key
// with an even Y coordinate.
const (
	generatorUncompressed = "0479be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"
	generatorCompressed   = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	generatorLockArg      = "75178f34549c5fe9cd1a0c57aebd01e7ddf9249e"
	generatorMainnet      = "ckb1qzda0cr08m85hc8jlnfp3zer7xulejywt49kt2rr0vthywaa50xwsqt4z78ng4yutl5u6xsv27ht6q08mhujf8sy3yulh"
	generatorTestnet      = "ckt1qzda0cr08m85hc8jlnfp3zer7xulejywt49kt2rr0vthywaa50xwsqt4z78ng4yutl5u6xsv27ht6q08mhujf8s2r0n40"
)

// 6*G has an odd Y coordinate, exercising the 0x03 parity prefix.
const (
	oddUncompressed = "04fff97bd5755eeea420453a14355235d382f6472f8568a18b2f057a1460297556ae12777aacfbb620f3be96017f45c560de80f0f6518fe4a03c870c36b075f297"
	oddCompressed   = "03fff97bd5755eeea420453a14355235d382f6472f8568a18b2f057a1460297556"
	oddLockArg      = "b459c2747561fbe31638d2dfd465d730bd3a20a6"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDeriveMainnet(t *testing.T) {
	info, err := Derive(mustHex(t, generatorUncompressed), Mainnet)
	require.NoError(t, err)
	require.Equal(t, generatorCompressed, info.PublicKey)
	require.Equal(t, generatorLockArg, info.LockArg)
	require.Equal(t, generatorMainnet, info.Address)
}

func TestDeriveTestnet(t *testing.T) {
	info, err := Derive(mustHex(t, generatorUncompressed), Testnet)
	require.NoError(t, err)
	require.Equal(t, generatorTestnet, info.Address)
}

func TestDeriveOddParity(t *testing.T) {
	info, err := Derive(mustHex(t, oddUncompressed), Mainnet)
	require.NoError(t, err)
	require.Equal(t, oddCompressed, info.PublicKey)
	require.Equal(t, oddLockArg, info.LockArg)
}

func TestDeriveNetworkOnlyChangesPrefix(t *testing.T) {
	raw := mustHex(t, generatorUncompressed)

	mainnet, err := Derive(raw, Mainnet)
	require.NoError(t, err)
	testnet, err := Derive(raw, Testnet)
	require.NoError(t, err)

	require.Equal(t, mainnet.LockArg, testnet.LockArg)
	require.Equal(t, mainnet.PublicKey, testnet.PublicKey)
	require.NotEqual(t, mainnet.Address, testnet.Address)
	require.Equal(t, "ckb1", mainnet.Address[:4])
	require.Equal(t, "ckt1", testnet.Address[:4])
}

func TestDeriveDeterministic(t *testing.T) {
	raw := mustHex(t, generatorUncompressed)
	first, err := Derive(raw, Mainnet)
	require.NoError(t, err)
	second, err := Derive(raw, Mainnet)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDeriveRejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
	}{
		{name: "nil", key: nil},
		{name: "short", key: make([]byte, 64)},
		{name: "long", key: make([]byte, 66)},
		{name: "compressed input", key: mustHex(t, generatorCompressed)},
		{name: "not on curve", key: append([]byte{0x04}, make([]byte, 64)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Derive(tt.key, Mainnet)
			require.ErrorIs(t, err, ErrInvalidPublicKey)
		})
	}
}

// Golden value: blake2b-256 with the ckb-default-hash personalization over
// a fixed 33-byte compressed key.
func TestBlake256GoldenVector(t *testing.T) {
	digest, err := Blake256(mustHex(t, "024a501efd328e062c8675f2365970728c859c592beeefd6be8ead3d901330bc01"))
	require.NoError(t, err)
	require.Equal(t, "36c329ed630d6ce750712a477543672adab57f4c6fd36a71496305456bb298db", hex.EncodeToString(digest))
}

func TestBlake256EmptyInput(t *testing.T) {
	// The chain's documented hash of the empty message.
	digest, err := Blake256(nil)
	require.NoError(t, err)
	require.Equal(t, "44f4c69744d5f8c55d642062949dcae49bc4e7ef43d388c5a12f42b5633d163e", hex.EncodeToString(digest))
}

func TestBlake160IsDigestPrefix(t *testing.T) {
	data := []byte("lock arg input")
	digest, err := Blake256(data)
	require.NoError(t, err)
	short, err := Blake160(data)
	require.NoError(t, err)
	require.Equal(t, digest[:20], short)
}

func TestNetworkPrefix(t *testing.T) {
	require.Equal(t, "ckb", Mainnet.Prefix())
	require.Equal(t, "ckt", Testnet.Prefix())
}
