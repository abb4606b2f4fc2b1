package wallet

import (
	"testing"
)

// TestErrorCodeStringer 测试 ErrorCode 类型的字符串化输出。
func TestErrorCodeStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrInvalidKey, "ErrInvalidKey"},
		{ErrInvalidWIF, "ErrInvalidWIF"},
		{ErrInvalidAddress, "ErrInvalidAddress"},
		{ErrDerivation, "ErrDerivation"},
		{ErrDuplicateAccount, "ErrDuplicateAccount"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	// 检测未添加字符串化测试的其他错误代码。
	if len(tests)-1 != int(numErrorCodes) {
		t.Errorf("It appears an error code was added without adding an " +
			"associated stringer test")
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result,
				test.want)
			continue
		}
	}
}
