// 包含测试脚本整数编码的代码。

package txscript

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScriptIntRoundTrip 确保整数编码与解码互逆，并产生最小编码。
func TestScriptIntRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		val     int64
		encoded []byte
	}{
		{0, []byte{}},
		{1, []byte{0x01}},
		{-1, []byte{0xff}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x00}},
		{-128, []byte{0x80}},
		{-129, []byte{0x7f, 0xff}},
		{255, []byte{0xff, 0x00}},
		{-255, []byte{0x01, 0xff}},
		{65536, []byte{0x00, 0x00, 0x01}},
		{-65536, []byte{0x00, 0x00, 0xff}},
	}

	t.Logf("Running %d tests", len(tests))
	for _, test := range tests {
		got := EncodeInt(big.NewInt(test.val))
		require.Equal(t, test.encoded, got, "encode %d", test.val)
		require.True(t, isMinimalInt(got), "minimal %d", test.val)
		require.Equal(t, test.val, DecodeInt(got).Int64(), "decode %d", test.val)
	}
}

// TestIsMinimalInt 确保非最小编码被识别。
func TestIsMinimalInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		data    []byte
		minimal bool
	}{
		{[]byte{0x00}, false},
		{[]byte{0x01, 0x00}, false},
		{[]byte{0x80, 0x00}, true},
		{[]byte{0x7f, 0xff}, true},
		{[]byte{0x80, 0xff}, false},
		{[]byte{0xff}, true},
	}

	for _, test := range tests {
		require.Equal(t, test.minimal, isMinimalInt(test.data), "%x", test.data)
	}
}
