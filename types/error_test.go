package types

import (
	"errors"
	"io"
	"testing"
)

// TestErrorCodeStringer 测试 ErrorCode 类型的字符串化输出。
func TestErrorCodeStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrFormat, "ErrFormat"},
		{ErrUnknownType, "ErrUnknownType"},
		{ErrWitnessCount, "ErrWitnessCount"},
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

// TestError 测试错误类型的错误输出与原因链。
func TestError(t *testing.T) {
	t.Parallel()

	err := formatError(ErrFormat, "read hash", io.ErrUnexpectedEOF)
	if err.Error() != "read hash: unexpected EOF" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected wrapped io.ErrUnexpectedEOF")
	}
	if !IsErrorCode(formatError(ErrUnknownType, "x", nil), ErrFormat) {
		t.Fatalf("unknown type should count as a format error")
	}
	if IsErrorCode(formatError(ErrFormat, "x", nil), ErrUnknownType) {
		t.Fatalf("format error is not an unknown type error")
	}
}
