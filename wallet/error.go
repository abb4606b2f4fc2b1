package wallet

import "fmt"

// ErrorCode 标识一种钱包错误。
type ErrorCode int

const (
	// ErrInvalidKey 表示私钥或公钥无效。
	ErrInvalidKey ErrorCode = iota

	// ErrInvalidWIF 表示 WIF 字符串无法解析或不是压缩公钥格式。
	ErrInvalidWIF

	// ErrInvalidAddress 表示地址的校验和、版本或长度错误。
	ErrInvalidAddress

	// ErrDerivation 表示分层确定性密钥派生失败。
	ErrDerivation

	// ErrDuplicateAccount 表示钱包中已存在相同脚本哈希的账户。
	ErrDuplicateAccount

	// numErrorCodes 是错误代码的最大值，仅用于测试。
	numErrorCodes
)

// errorCodeStrings 是 ErrorCode 值到人类可读字符串的映射。
var errorCodeStrings = map[ErrorCode]string{
	ErrInvalidKey:       "ErrInvalidKey",
	ErrInvalidWIF:       "ErrInvalidWIF",
	ErrInvalidAddress:   "ErrInvalidAddress",
	ErrDerivation:       "ErrDerivation",
	ErrDuplicateAccount: "ErrDuplicateAccount",
}

// String 将 ErrorCode 作为人类可读的名称返回。
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error 标识钱包相关的错误。
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

// walletError 使用给定的错误代码和描述创建一个 Error。
func walletError(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// IsErrorCode 返回提供的错误是否是具有所提供的错误代码的钱包错误。
func IsErrorCode(err error, c ErrorCode) bool {
	werr, ok := err.(Error)
	return ok && werr.ErrorCode == c
}
