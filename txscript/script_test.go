package txscript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDisasmString 测试脚本反汇编输出。
func TestDisasmString(t *testing.T) {
	t.Parallel()

	pub := testPubKey(0xab)
	sigScript, err := SignatureScript(pub)
	require.NoError(t, err)

	tests := []struct {
		name     string
		script   []byte
		expected string
		wantErr  bool
	}{
		{
			name:     "signature script",
			script:   sigScript,
			expected: "02abababababababababababababababababababababababababababababababab OP_CHECKSIG",
		},
		{
			name:     "small ints",
			script:   []byte{OP_0, OP_1NEGATE, OP_1, OP_16, OP_PACK},
			expected: "0 -1 1 16 OP_PACK",
		},
		{
			name:     "unknown opcode",
			script:   []byte{0xfe},
			expected: "OP_UNKNOWN254",
		},
		{
			name:     "malformed push",
			script:   []byte{OP_1, OP_DATA_1 + 1, 0x01},
			expected: "1 [error]",
			wantErr:  true,
		},
	}

	t.Logf("Running %d tests", len(tests))
	for _, test := range tests {
		got, err := DisasmString(test.script)
		if test.wantErr {
			require.Error(t, err, test.name)
		} else {
			require.NoError(t, err, test.name)
		}
		require.Equal(t, test.expected, got, test.name)
	}
}

// TestPushedData 测试推送数据提取与只推送脚本判定。
func TestPushedData(t *testing.T) {
	t.Parallel()

	script, err := NewScriptBuilder().AddData([]byte{0x01, 0x02}).
		AddOp(OP_1).AddData([]byte{0x03}).Script()
	require.NoError(t, err)

	data, err := PushedData(script)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x01, 0x02}, {0x03}}, data)
	require.True(t, IsPushOnlyScript(script))

	require.False(t, IsPushOnlyScript([]byte{OP_1, OP_CHECKSIG}))
	require.False(t, IsPushOnlyScript([]byte{OP_DATA_33}))

	_, err = PushedData([]byte{OP_PUSHDATA1})
	require.True(t, IsErrorCode(err, ErrMalformedPush))
}
