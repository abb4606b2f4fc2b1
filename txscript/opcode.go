// 包含验证脚本语言中使用的操作码定义。

package txscript

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// 这些常量是操作码的值。
const (
	OP_0         = 0x00 // 0
	OP_FALSE     = 0x00 // 0 - AKA OP_0
	OP_DATA_1    = 0x01 // 1
	OP_DATA_20   = 0x14 // 20
	OP_DATA_32   = 0x20 // 32
	OP_DATA_33   = 0x21 // 33
	OP_DATA_64   = 0x40 // 64
	OP_DATA_75   = 0x4b // 75
	OP_PUSHDATA1 = 0x4c // 76
	OP_PUSHDATA2 = 0x4d // 77
	OP_PUSHDATA4 = 0x4e // 78
	OP_1NEGATE   = 0x4f // 79
	OP_1         = 0x51 // 81 - AKA OP_TRUE
	OP_TRUE      = 0x51 // 81
	OP_2         = 0x52 // 82
	OP_3         = 0x53 // 83
	OP_16        = 0x60 // 96
	OP_NOP       = 0x61 // 97
	OP_JMP       = 0x62 // 98
	OP_JMPIF     = 0x63 // 99
	OP_JMPIFNOT  = 0x64 // 100
	OP_CALL      = 0x65 // 101
	OP_RET       = 0x66 // 102
	OP_SYSCALL   = 0x68 // 104
	OP_DUP       = 0x76 // 118
	OP_DROP      = 0x75 // 117
	OP_SWAP      = 0x7c // 124
	OP_SIZE      = 0x82 // 130
	OP_EQUAL     = 0x87 // 135
	OP_VERIFY    = 0x69 // 105
	OP_ADD       = 0x93 // 147
	OP_SUB       = 0x94 // 148
	OP_NUMEQUAL  = 0x9c // 156
	OP_SHA1      = 0xa7 // 167
	OP_SHA256    = 0xa8 // 168
	OP_HASH160   = 0xa9 // 169
	OP_HASH256   = 0xaa // 170

	OP_CHECKSIG      = 0xac // 172
	OP_VERIFYSIG     = 0xad // 173
	OP_CHECKMULTISIG = 0xae // 174

	OP_ARRAYSIZE = 0xc0 // 192
	OP_PACK      = 0xc1 // 193
	OP_UNPACK    = 0xc2 // 194
	OP_NEWARRAY  = 0xc5 // 197
	OP_THROW     = 0xf0 // 240
)

// opcodeNames 保存了反汇编时使用的非推送操作码名称。
var opcodeNames = map[byte]string{
	OP_1NEGATE:       "OP_1NEGATE",
	OP_NOP:           "OP_NOP",
	OP_JMP:           "OP_JMP",
	OP_JMPIF:         "OP_JMPIF",
	OP_JMPIFNOT:      "OP_JMPIFNOT",
	OP_CALL:          "OP_CALL",
	OP_RET:           "OP_RET",
	OP_SYSCALL:       "OP_SYSCALL",
	OP_DUP:           "OP_DUP",
	OP_DROP:          "OP_DROP",
	OP_SWAP:          "OP_SWAP",
	OP_SIZE:          "OP_SIZE",
	OP_EQUAL:         "OP_EQUAL",
	OP_VERIFY:        "OP_VERIFY",
	OP_ADD:           "OP_ADD",
	OP_SUB:           "OP_SUB",
	OP_NUMEQUAL:      "OP_NUMEQUAL",
	OP_SHA1:          "OP_SHA1",
	OP_SHA256:        "OP_SHA256",
	OP_HASH160:       "OP_HASH160",
	OP_HASH256:       "OP_HASH256",
	OP_CHECKSIG:      "OP_CHECKSIG",
	OP_VERIFYSIG:     "OP_VERIFYSIG",
	OP_CHECKMULTISIG: "OP_CHECKMULTISIG",
	OP_ARRAYSIZE:     "OP_ARRAYSIZE",
	OP_PACK:          "OP_PACK",
	OP_UNPACK:        "OP_UNPACK",
	OP_NEWARRAY:      "OP_NEWARRAY",
	OP_THROW:         "OP_THROW",
}

// OpcodeName 返回操作码的可读名称。
func OpcodeName(op byte) string {
	switch {
	case op == OP_0:
		return "OP_0"
	case op >= OP_DATA_1 && op <= OP_DATA_75:
		return fmt.Sprintf("OP_DATA_%d", op)
	case op == OP_PUSHDATA1:
		return "OP_PUSHDATA1"
	case op == OP_PUSHDATA2:
		return "OP_PUSHDATA2"
	case op == OP_PUSHDATA4:
		return "OP_PUSHDATA4"
	case op >= OP_1 && op <= OP_16:
		return fmt.Sprintf("OP_%d", op-(OP_1-1))
	}
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN%d", op)
}

// IsSmallInt 返回操作码是否被视为小整数，即 OP_0 或 OP_1 到 OP_16。
func IsSmallInt(op byte) bool {
	return op == OP_0 || (op >= OP_1 && op <= OP_16)
}

// AsSmallInt 以整数形式返回传递的操作码，根据 IsSmallInt()，该操作码必须为 true。
func AsSmallInt(op byte) int {
	if op == OP_0 {
		return 0
	}
	return int(op - (OP_1 - 1))
}

// isPushOpcode 返回操作码是否推送数据（包括小整数）。
func isPushOpcode(op byte) bool {
	return op <= OP_16 && op != 0x50
}

// disasmOpcode 将单个操作码及其数据追加到反汇编字符串中。
// 数据推送只显示十六进制数据，小整数显示其数值。
func disasmOpcode(buf *strings.Builder, op byte, data []byte) {
	switch {
	case op == OP_0:
		buf.WriteString("0")
	case op > OP_0 && op <= OP_PUSHDATA4:
		buf.WriteString(hex.EncodeToString(data))
	case op == OP_1NEGATE:
		buf.WriteString("-1")
	case op >= OP_1 && op <= OP_16:
		fmt.Fprintf(buf, "%d", AsSmallInt(op))
	default:
		buf.WriteString(OpcodeName(op))
	}
}
