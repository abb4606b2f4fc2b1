package contract

import "fmt"

// ErrorCode 标识一种参数上下文错误。
type ErrorCode int

const (
	// ErrFormat 表示交换格式或参数值格式错误。
	ErrFormat ErrorCode = iota

	// ErrNoRequirement 表示消息没有声明任何需要授权的脚本哈希。
	ErrNoRequirement

	// ErrInvalidIndex 表示参数槽位索引越界。
	ErrInvalidIndex

	// ErrParameterMismatch 表示参数值与槽位要求的类型不符。
	ErrParameterMismatch

	// ErrAmbiguousPlacement 表示非多重签名合约有多个签名槽位，无法确定签名的位置。
	ErrAmbiguousPlacement

	// ErrIncompleteContext 表示在上下文完成之前请求见证。
	ErrIncompleteContext

	// ErrUnsupportedParameter 表示参数类型无法在上下文中携带或推送。
	ErrUnsupportedParameter

	// ErrMessageMismatch 表示合并的两个上下文属于不同的消息。
	ErrMessageMismatch

	// ErrInvalidContract 表示合约构建参数无效。
	ErrInvalidContract

	// numErrorCodes 是错误代码的最大值，仅用于测试。
	numErrorCodes
)

// errorCodeStrings 是 ErrorCode 值到人类可读字符串的映射。
var errorCodeStrings = map[ErrorCode]string{
	ErrFormat:               "ErrFormat",
	ErrNoRequirement:        "ErrNoRequirement",
	ErrInvalidIndex:         "ErrInvalidIndex",
	ErrParameterMismatch:    "ErrParameterMismatch",
	ErrAmbiguousPlacement:   "ErrAmbiguousPlacement",
	ErrIncompleteContext:    "ErrIncompleteContext",
	ErrUnsupportedParameter: "ErrUnsupportedParameter",
	ErrMessageMismatch:      "ErrMessageMismatch",
	ErrInvalidContract:      "ErrInvalidContract",
}

// String 将 ErrorCode 作为人类可读的名称返回。
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error 标识参数上下文相关的错误，Err 保存底层原因。
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

// contextError 使用给定的错误代码和描述创建一个 Error。
func contextError(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// IsErrorCode 返回提供的错误是否是具有所提供的错误代码的上下文错误。
func IsErrorCode(err error, c ErrorCode) bool {
	cerr, ok := err.(Error)
	return ok && cerr.ErrorCode == c
}
