package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/require"
)

// TestAddress 测试地址与脚本哈希之间的转换。
func TestAddress(t *testing.T) {
	t.Parallel()

	key := testKeyPair(t, 0x09)
	hash := key.Contract().ScriptHash()
	address := ScriptHashToAddress(hash)
	require.Equal(t, byte('A'), address[0])

	got, err := AddressToScriptHash(address)
	require.NoError(t, err)
	require.Equal(t, hash, got)
	require.True(t, ValidateAddress(address))

	tests := []struct {
		name    string
		address string
	}{
		{name: "empty", address: ""},
		{name: "bad checksum", address: address[:len(address)-1] + flip(address[len(address)-1])},
		{name: "wrong version", address: base58.CheckEncode(hash[:], 0x00)},
		{name: "wrong length", address: base58.CheckEncode(hash[:19], AddressVersion)},
	}

	t.Logf("Running %d tests", len(tests))
	for _, test := range tests {
		_, err := AddressToScriptHash(test.address)
		require.True(t, IsErrorCode(err, ErrInvalidAddress), test.name)
		require.False(t, ValidateAddress(test.address), test.name)
	}

}

// flip 返回与 c 不同的 base58 字符。
func flip(c byte) string {
	if c == '1' {
		return "2"
	}
	return "1"
}
