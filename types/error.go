package types

import "fmt"

// ErrorCode 标识一种数据格式错误。
type ErrorCode int

const (
	// ErrFormat 表示线上字节或 JSON 格式错误。
	ErrFormat ErrorCode = iota

	// ErrUnknownType 表示类型标签没有注册解码器。
	ErrUnknownType

	// ErrWitnessCount 表示消息携带的见证数量与要求的不一致。
	ErrWitnessCount

	// numErrorCodes 是错误代码的最大值，仅用于测试。
	numErrorCodes
)

// errorCodeStrings 是 ErrorCode 值到人类可读字符串的映射。
var errorCodeStrings = map[ErrorCode]string{
	ErrFormat:       "ErrFormat",
	ErrUnknownType:  "ErrUnknownType",
	ErrWitnessCount: "ErrWitnessCount",
}

// String 将 ErrorCode 作为人类可读的名称返回。
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error 标识数据格式相关的错误，Err 保存底层原因。
type Error struct {
	ErrorCode   ErrorCode
	Description string
	Err         error
}

// Error 满足错误接口并打印人类可读的错误。
func (e Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap 返回底层原因。
func (e Error) Unwrap() error {
	return e.Err
}

// formatError 使用给定的错误代码和描述创建一个 Error。
func formatError(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// IsErrorCode 返回提供的错误是否是具有所提供的错误代码的格式错误。
// 未知类型标签也被视为 ErrFormat。
func IsErrorCode(err error, c ErrorCode) bool {
	terr, ok := err.(Error)
	if !ok {
		return false
	}
	if c == ErrFormat {
		return terr.ErrorCode == ErrFormat || terr.ErrorCode == ErrUnknownType
	}
	return terr.ErrorCode == c
}
