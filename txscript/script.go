// 包含处理脚本字节码的基本函数。

package txscript

import (
	"strings"
)

// IsPushOnlyScript 返回脚本是否只包含数据推送操作码。
// 调用脚本必须是只推送的脚本。
func IsPushOnlyScript(script []byte) bool {
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		if !isPushOpcode(tokenizer.Opcode()) {
			return false
		}
	}
	return tokenizer.Err() == nil
}

// PushedData 返回脚本中所有数据推送操作码推送的数据。小整数操作码不产生数据。
func PushedData(script []byte) ([][]byte, error) {
	var data [][]byte
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		op := tokenizer.Opcode()
		if op > OP_0 && op <= OP_PUSHDATA4 {
			data = append(data, tokenizer.Data())
		}
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// DisasmString 将反汇编脚本格式化为一行打印。
// 当脚本解析失败时，返回的字符串将包含失败发生点之前的反汇编脚本，并附加字符串 '[error]'，同时返回失败原因。
func DisasmString(script []byte) (string, error) {
	var disbuf strings.Builder
	tokenizer := MakeScriptTokenizer(script)
	if tokenizer.Next() {
		disasmOpcode(&disbuf, tokenizer.Opcode(), tokenizer.Data())
	}
	for tokenizer.Next() {
		disbuf.WriteByte(' ')
		disasmOpcode(&disbuf, tokenizer.Opcode(), tokenizer.Data())
	}
	if tokenizer.Err() != nil {
		if tokenizer.ByteIndex() != 0 {
			disbuf.WriteByte(' ')
		}
		disbuf.WriteString("[error]")
	}
	return disbuf.String(), tokenizer.Err()
}
