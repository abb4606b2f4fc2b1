// 包含一个构建器，用于以编程方式构建脚本。

package txscript

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

const (
	// defaultScriptAlloc 是构建器使用的默认脚本缓冲区大小。
	defaultScriptAlloc = 500
)

// ErrScriptNotCanonical 标识无法按规范方式构建的脚本。
type ErrScriptNotCanonical string

// Error 实现错误接口。
func (e ErrScriptNotCanonical) Error() string {
	return string(e)
}

// ScriptBuilder 提供了构建自定义脚本的工具。
// 它会按规范方式推送数据，并在第一次出错后忽略所有后续操作，
// 因此调用者只需在最后调用 Script 时检查一次错误。
//
// 例如，构建一个单签名验证脚本：
//
//	builder := txscript.NewScriptBuilder()
//	builder.AddData(pubKey).AddOp(txscript.OP_CHECKSIG)
//	script, err := builder.Script()
type ScriptBuilder struct {
	script []byte
	err    error
}

// ScriptBuilderOpt 是修改构建器的函数选项。
type ScriptBuilderOpt func(*scriptBuilderConfig)

type scriptBuilderConfig struct {
	allocSize int
}

// WithScriptAllocSize 指定脚本缓冲区的初始大小。
func WithScriptAllocSize(size int) ScriptBuilderOpt {
	return func(cfg *scriptBuilderConfig) {
		cfg.allocSize = size
	}
}

// NewScriptBuilder 返回一个新的脚本构建器实例。
func NewScriptBuilder(opts ...ScriptBuilderOpt) *ScriptBuilder {
	cfg := &scriptBuilderConfig{
		allocSize: defaultScriptAlloc,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &ScriptBuilder{
		script: make([]byte, 0, cfg.allocSize),
	}
}

// AddOp 将传递的操作码推送到脚本末尾。
func (b *ScriptBuilder) AddOp(opcode byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	if len(b.script)+1 > MaxScriptSize {
		str := fmt.Sprintf("adding an opcode would exceed the maximum "+
			"allowed script length of %d", MaxScriptSize)
		b.err = ErrScriptNotCanonical(str)
		return b
	}

	b.script = append(b.script, opcode)
	return b
}

// AddOps 将传递的操作码依次推送到脚本末尾。
func (b *ScriptBuilder) AddOps(opcodes []byte) *ScriptBuilder {
	for _, op := range opcodes {
		b.AddOp(op)
	}
	return b
}

// pushDataSize 返回推送指定长度数据所需的字节数。
func pushDataSize(dataLen int) int {
	switch {
	case dataLen == 0:
		return 1
	case dataLen <= OP_DATA_75:
		return 1 + dataLen
	case dataLen <= 0xff:
		return 2 + dataLen
	case dataLen <= 0xffff:
		return 3 + dataLen
	}
	return 5 + dataLen
}

// addData 使用最短的长度前缀推送数据。
func (b *ScriptBuilder) addData(data []byte) *ScriptBuilder {
	dataLen := len(data)
	switch {
	case dataLen == 0:
		b.script = append(b.script, OP_0)
		return b
	case dataLen <= OP_DATA_75:
		b.script = append(b.script, byte(dataLen))
	case dataLen <= 0xff:
		b.script = append(b.script, OP_PUSHDATA1, byte(dataLen))
	case dataLen <= 0xffff:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(dataLen))
		b.script = append(b.script, OP_PUSHDATA2)
		b.script = append(b.script, buf...)
	default:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(dataLen))
		b.script = append(b.script, OP_PUSHDATA4)
		b.script = append(b.script, buf...)
	}

	b.script = append(b.script, data...)
	return b
}

// AddData 将传递的数据推送到脚本末尾。
// 与整数不同，字节数据总是带长度前缀推送，即使它只有一个字节，
// 这样调用脚本中的签名和公钥始终以原样出现在栈上。
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	dataSize := pushDataSize(len(data))
	if len(b.script)+dataSize > MaxScriptSize {
		str := fmt.Sprintf("adding %d bytes of data would exceed the "+
			"maximum allowed script length of %d", dataSize, MaxScriptSize)
		b.err = ErrScriptNotCanonical(str)
		return b
	}

	if len(data) > MaxScriptElementSize {
		str := fmt.Sprintf("adding a data element of %d bytes would "+
			"exceed the maximum allowed script element size of %d",
			len(data), MaxScriptElementSize)
		b.err = ErrScriptNotCanonical(str)
		return b
	}

	return b.addData(data)
}

// AddInt64 将传递的整数推送到脚本末尾。
// -1 到 16 使用对应的小整数操作码，其余值使用最小长度的数据推送。
func (b *ScriptBuilder) AddInt64(val int64) *ScriptBuilder {
	return b.AddBigInt(big.NewInt(val))
}

// AddBigInt 将任意精度整数推送到脚本末尾。
func (b *ScriptBuilder) AddBigInt(val *big.Int) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	if val.IsInt64() {
		v := val.Int64()
		switch {
		case v == 0:
			return b.AddOp(OP_0)
		case v == -1:
			return b.AddOp(OP_1NEGATE)
		case v >= 1 && v <= 16:
			return b.AddOp(byte((OP_1 - 1) + v))
		}
	}

	return b.AddData(EncodeInt(val))
}

// AddBool 推送布尔值，true 为 OP_TRUE，false 为 OP_FALSE。
func (b *ScriptBuilder) AddBool(val bool) *ScriptBuilder {
	if val {
		return b.AddOp(OP_TRUE)
	}
	return b.AddOp(OP_FALSE)
}

// Reset 重置脚本，使其不包含任何内容。
func (b *ScriptBuilder) Reset() *ScriptBuilder {
	b.script = b.script[0:0]
	b.err = nil
	return b
}

// Script 返回当前构建的脚本。
// 如果在构建过程中遇到任何错误，将返回到失败点为止的脚本以及错误。
func (b *ScriptBuilder) Script() ([]byte, error) {
	return b.script, b.err
}
