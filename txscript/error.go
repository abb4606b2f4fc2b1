// 定义了脚本处理过程中可能遇到的错误类型。

package txscript

import "fmt"

// ErrorCode 标识一种脚本错误。
type ErrorCode int

const (
	// ErrInternal 在不应该发生的内部错误时返回。
	ErrInternal ErrorCode = iota

	// ErrInvalidIndex 在索引越界时返回。
	ErrInvalidIndex

	// ErrTooManyRequiredSigs 在多重签名所需签名数超过公钥数量时返回。
	ErrTooManyRequiredSigs

	// ErrNotMultisigScript 在脚本不是多重签名脚本时返回。
	ErrNotMultisigScript

	// ErrNotSignatureScript 在脚本不是单签名脚本时返回。
	ErrNotSignatureScript

	// ErrScriptTooBig 在脚本大小超过 MaxScriptSize 时返回。
	ErrScriptTooBig

	// ErrElementTooBig 在推送的数据超过 MaxScriptElementSize 时返回。
	ErrElementTooBig

	// ErrInvalidPubKeyCount 在公钥数量为零或超过 MaxPubKeysPerMultiSig 时返回。
	ErrInvalidPubKeyCount

	// ErrInvalidSignatureCount 在所需签名数小于 1 时返回。
	ErrInvalidSignatureCount

	// ErrMalformedPush 在数据推送操作码要求的字节数超过脚本剩余长度时返回。
	ErrMalformedPush

	// ErrPubKeyType 在公钥不是 33 字节压缩格式时返回。
	ErrPubKeyType

	// ErrUnsupportedOpcode 在调用者请求构建器不支持的操作时返回。
	ErrUnsupportedOpcode

	// numErrorCodes 是错误代码的最大值，仅用于测试。
	numErrorCodes
)

// errorCodeStrings 是 ErrorCode 值到人类可读字符串的映射。
var errorCodeStrings = map[ErrorCode]string{
	ErrInternal:              "ErrInternal",
	ErrInvalidIndex:          "ErrInvalidIndex",
	ErrTooManyRequiredSigs:   "ErrTooManyRequiredSigs",
	ErrNotMultisigScript:     "ErrNotMultisigScript",
	ErrNotSignatureScript:    "ErrNotSignatureScript",
	ErrScriptTooBig:          "ErrScriptTooBig",
	ErrElementTooBig:         "ErrElementTooBig",
	ErrInvalidPubKeyCount:    "ErrInvalidPubKeyCount",
	ErrInvalidSignatureCount: "ErrInvalidSignatureCount",
	ErrMalformedPush:         "ErrMalformedPush",
	ErrPubKeyType:            "ErrPubKeyType",
	ErrUnsupportedOpcode:     "ErrUnsupportedOpcode",
}

// String 将 ErrorCode 作为人类可读的名称返回。
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error 标识脚本相关的错误。
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error 满足错误接口并打印人类可读的错误。
func (e Error) Error() string {
	return e.Description
}

// scriptError 使用给定的错误代码和描述创建一个 Error。
func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode 返回提供的错误是否是具有所提供的错误代码的脚本错误。
func IsErrorCode(err error, c ErrorCode) bool {
	serr, ok := err.(Error)
	return ok && serr.ErrorCode == c
}
