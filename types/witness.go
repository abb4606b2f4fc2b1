package types

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
)

// MaxWitnessSize 是见证编码后允许的最大字节数。
const MaxWitnessSize = 1024

// Witness 是附加在消息上的一对脚本：调用脚本推送参数，验证脚本消费这些参数。
type Witness struct {
	InvocationScript   []byte `json:"invocation"`
	VerificationScript []byte `json:"verification"`
}

// Size 返回见证编码后的字节数。
func (w *Witness) Size() int {
	return varBytesSize(len(w.InvocationScript)) + varBytesSize(len(w.VerificationScript))
}

// ScriptHash 返回验证脚本的脚本哈希。
func (w *Witness) ScriptHash() Uint160 {
	return Hash160(w.VerificationScript)
}

// Encode 将见证写入 w。构造不受大小限制，因此超限的见证也能被编码。
func (w *Witness) Encode(wr io.Writer) error {
	if err := writeVarBytes(wr, w.InvocationScript); err != nil {
		return err
	}
	return writeVarBytes(wr, w.VerificationScript)
}

// Bytes 返回见证的编码。
func (w *Witness) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(w.Size())
	_ = w.Encode(&buf)
	return buf.Bytes()
}

// Decode 从 r 读取见证。编码大小超过 MaxWitnessSize 时返回 ErrFormat，
// 无论超出的部分在哪个字段中。
func (w *Witness) Decode(r io.Reader) error {
	invocation, err := readVarBytes(r, MaxWitnessSize, "invocation script")
	if err != nil {
		return err
	}
	used := varBytesSize(len(invocation))
	if used > MaxWitnessSize {
		return oversizedWitness(used)
	}

	n, err := readVarInt(r)
	if err != nil {
		return err
	}
	if n > MaxWitnessSize {
		return formatError(ErrFormat,
			fmt.Sprintf("verification script is %d bytes, max %d", n, MaxWitnessSize), nil)
	}
	if total := used + wire.VarIntSerializeSize(n) + int(n); total > MaxWitnessSize {
		return oversizedWitness(total)
	}
	verification := make([]byte, n)
	if _, err := io.ReadFull(r, verification); err != nil {
		return formatError(ErrFormat, "read verification script", err)
	}

	w.InvocationScript = invocation
	w.VerificationScript = verification
	return nil
}

func oversizedWitness(size int) error {
	return formatError(ErrFormat,
		fmt.Sprintf("witness is %d bytes, max %d", size, MaxWitnessSize), nil)
}

// DecodeWitness 解码一个完整的见证，不允许有多余的字节。
func DecodeWitness(b []byte) (*Witness, error) {
	r := bytes.NewReader(b)
	w := new(Witness)
	if err := w.Decode(r); err != nil {
		return nil, err
	}
	if err := expectEOF(r); err != nil {
		return nil, err
	}
	return w, nil
}

// encodeWitnesses 写入见证数量以及每个见证。
func encodeWitnesses(wr io.Writer, witnesses []Witness) error {
	if err := wire.WriteVarInt(wr, pver, uint64(len(witnesses))); err != nil {
		return err
	}
	for i := range witnesses {
		if err := witnesses[i].Encode(wr); err != nil {
			return err
		}
	}
	return nil
}

// decodeWitnesses 读取见证数量以及每个见证，数量不得超过 max。
func decodeWitnesses(r io.Reader, max uint64) ([]Witness, error) {
	count, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > max {
		return nil, formatError(ErrFormat,
			fmt.Sprintf("%d witnesses, max %d", count, max), nil)
	}
	witnesses := make([]Witness, count)
	for i := range witnesses {
		if err := witnesses[i].Decode(r); err != nil {
			return nil, err
		}
	}
	return witnesses, nil
}
