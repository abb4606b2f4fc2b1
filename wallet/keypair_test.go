package wallet

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/bpfsign/contract"
)

// testKeyPair 返回由 seed 决定的密钥对。
func testKeyPair(t *testing.T, seed byte) *KeyPair {
	key, err := NewKeyPair(bytes.Repeat([]byte{seed}, PrivateKeyLength))
	require.NoError(t, err)
	return key
}

// TestNewKeyPair 测试私钥的范围检查。
func TestNewKeyPair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   []byte
		valid bool
	}{
		{name: "valid", key: bytes.Repeat([]byte{0x01}, 32), valid: true},
		{name: "short", key: bytes.Repeat([]byte{0x01}, 31)},
		{name: "zero", key: make([]byte, 32)},
		{name: "overflow", key: bytes.Repeat([]byte{0xff}, 32)},
	}

	t.Logf("Running %d tests", len(tests))
	for _, test := range tests {
		key, err := NewKeyPair(test.key)
		if !test.valid {
			require.True(t, IsErrorCode(err, ErrInvalidKey), test.name)
			continue
		}
		require.NoError(t, err, test.name)
		require.Equal(t, test.key, key.PrivateKey(), test.name)
	}
}

// TestSignVerify 测试签名与验证。
func TestSignVerify(t *testing.T) {
	t.Parallel()

	key := testKeyPair(t, 0x01)
	other := testKeyPair(t, 0x02)
	data := []byte("hash data")

	sig, err := key.Sign(data)
	require.NoError(t, err)
	require.Len(t, sig, contract.SignatureLength)

	// 签名是确定性的。
	again, err := key.Sign(data)
	require.NoError(t, err)
	require.Equal(t, sig, again)

	require.True(t, VerifySignature(data, sig, key.PublicKey()))
	require.False(t, VerifySignature(data, sig, other.PublicKey()))
	require.False(t, VerifySignature([]byte("other data"), sig, key.PublicKey()))
	require.False(t, VerifySignature(data, sig[:63], key.PublicKey()))
	require.False(t, VerifySignature(data, make([]byte, 64), key.PublicKey()))
	require.False(t, VerifySignature(data, sig, nil))

	tampered := append([]byte(nil), sig...)
	tampered[10] ^= 0x01
	require.False(t, VerifySignature(data, tampered, key.PublicKey()))
	require.False(t, VerifySignature(data, []byte{0x01}, key.PublicKey()))
}

// TestSignDigest 确保签名的摘要是签名数据的单次 SHA-256。
func TestSignDigest(t *testing.T) {
	t.Parallel()

	key := testKeyPair(t, 0x03)
	data := []byte("hash data")
	priv, _ := btcec.PrivKeyFromBytes(key.PrivateKey())

	digest := sha256.Sum256(data)
	compact, err := ecdsa.SignCompact(priv, digest[:], true)
	require.NoError(t, err)
	require.True(t, VerifySignature(data, compact[1:], key.PublicKey()))

	sig, err := key.Sign(data)
	require.NoError(t, err)
	require.Equal(t, compact[1:], sig)
}

// TestWIF 测试 WIF 编码的导入导出。
func TestWIF(t *testing.T) {
	t.Parallel()

	key := testKeyPair(t, 0x05)
	wif := key.WIF()
	require.NotEmpty(t, wif)

	got, err := KeyPairFromWIF(wif)
	require.NoError(t, err)
	require.Equal(t, key.PrivateKey(), got.PrivateKey())
	require.True(t, key.PublicKey().IsEqual(got.PublicKey()))

	_, err = KeyPairFromWIF("not a wif")
	require.True(t, IsErrorCode(err, ErrInvalidWIF))

	// 非压缩格式的 WIF。
	_, err = KeyPairFromWIF("5HueCGU8rMjxEXxiPuD5BDku4MkFqeZyd4dZ1jvhTVqvbTLvyTJ")
	require.True(t, IsErrorCode(err, ErrInvalidWIF))
}

// TestKeyPairFromPassword 测试从密码派生密钥。
func TestKeyPairFromPassword(t *testing.T) {
	t.Parallel()

	a, err := KeyPairFromPassword([]byte("password"), []byte("salt"))
	require.NoError(t, err)
	b, err := KeyPairFromPassword([]byte("password"), []byte("salt"))
	require.NoError(t, err)
	c, err := KeyPairFromPassword([]byte("password"), []byte("pepper"))
	require.NoError(t, err)

	require.Equal(t, a.PrivateKey(), b.PrivateKey())
	require.NotEqual(t, a.PrivateKey(), c.PrivateKey())
}

// TestKeyPairContract 测试密钥对的单签名合约。
func TestKeyPairContract(t *testing.T) {
	t.Parallel()

	key := testKeyPair(t, 0x07)
	c := key.Contract()
	require.Equal(t, key.PublicKey().SerializeCompressed(), c.SignaturePublicKey())
}
