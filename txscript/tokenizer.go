// 包含脚本令牌化的逻辑，用于将脚本分解为操作码和数据。

package txscript

import (
	"encoding/binary"
	"fmt"
)

// ScriptTokenizer 提供了一个无需分配即可遍历脚本的工具。
// 每次成功调用 Next 都会把令牌化器移动到下一个操作码，
// 之后可以通过 Opcode 与 Data 读取当前操作码及其推送的数据。
//
// 所有调用者都应在迭代结束后检查 Err，以确定脚本是否在解析中途出错。
type ScriptTokenizer struct {
	script []byte
	offset int32
	op     byte
	data   []byte
	err    error
}

// MakeScriptTokenizer 返回一个新的脚本令牌化器实例。
func MakeScriptTokenizer(script []byte) ScriptTokenizer {
	var err error
	if len(script) > MaxScriptSize {
		str := fmt.Sprintf("script size %d is larger than max allowed "+
			"size %d", len(script), MaxScriptSize)
		err = scriptError(ErrScriptTooBig, str)
	}
	return ScriptTokenizer{script: script, err: err}
}

// Done 返回所有操作码是否已耗尽或遇到解析失败。
func (t *ScriptTokenizer) Done() bool {
	return t.err != nil || t.offset >= int32(len(t.script))
}

// Next 尝试解析下一个操作码并返回是否成功。
// 如果已到达脚本末尾或之前遇到过解析失败，则返回 false。
func (t *ScriptTokenizer) Next() bool {
	if t.Done() {
		return false
	}

	op := t.script[t.offset]
	var length int
	var header int32 = 1
	switch {
	case op >= OP_DATA_1 && op <= OP_DATA_75:
		length = int(op)

	case op == OP_PUSHDATA1, op == OP_PUSHDATA2, op == OP_PUSHDATA4:
		width := int32(1) << (op - OP_PUSHDATA1)
		rest := t.script[t.offset+1:]
		if int32(len(rest)) < width {
			str := fmt.Sprintf("opcode %s requires %d bytes, but script "+
				"only has %d remaining", OpcodeName(op), width, len(rest))
			t.err = scriptError(ErrMalformedPush, str)
			return false
		}
		switch width {
		case 1:
			length = int(rest[0])
		case 2:
			length = int(binary.LittleEndian.Uint16(rest))
		default:
			l := binary.LittleEndian.Uint32(rest)
			if l > MaxScriptElementSize {
				str := fmt.Sprintf("push of %d bytes exceeds max element "+
					"size %d", l, MaxScriptElementSize)
				t.err = scriptError(ErrElementTooBig, str)
				return false
			}
			length = int(l)
		}
		header += width
	}

	start := t.offset + header
	if int(start)+length > len(t.script) {
		str := fmt.Sprintf("opcode %s pushes %d bytes, but script only "+
			"has %d remaining", OpcodeName(op), length,
			len(t.script)-int(start))
		t.err = scriptError(ErrMalformedPush, str)
		return false
	}

	t.op = op
	if length > 0 {
		t.data = t.script[start : int(start)+length]
	} else {
		t.data = nil
	}
	t.offset = start + int32(length)
	return true
}

// Script 返回正在令牌化的完整脚本。
func (t *ScriptTokenizer) Script() []byte {
	return t.script
}

// ByteIndex 返回下一个要解析的操作码在脚本中的偏移量。
func (t *ScriptTokenizer) ByteIndex() int32 {
	return t.offset
}

// Opcode 返回当前操作码。
func (t *ScriptTokenizer) Opcode() byte {
	return t.op
}

// Data 返回与当前操作码关联的数据，非推送操作码返回 nil。
func (t *ScriptTokenizer) Data() []byte {
	return t.data
}

// Err 返回当前遇到的解析错误，没有错误时返回 nil。
func (t *ScriptTokenizer) Err() error {
	return t.err
}
