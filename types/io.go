package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// 变长整数沿用 wire 包的编码，协议版本不影响格式。
const pver = 0

// readVarInt 读取最小编码的变长整数，非最小编码被视为格式错误。
func readVarInt(r io.Reader) (uint64, error) {
	n, err := wire.ReadVarInt(r, pver)
	if err != nil {
		return 0, formatError(ErrFormat, "read var int", err)
	}
	return n, nil
}

// readVarBytes 读取带长度前缀的字节串，长度超过 max 时报错而不分配。
func readVarBytes(r io.Reader, max uint64, field string) ([]byte, error) {
	n, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > max {
		return nil, formatError(ErrFormat,
			fmt.Sprintf("%s is %d bytes, max %d", field, n, max), nil)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, formatError(ErrFormat, "read "+field, err)
	}
	return b, nil
}

func writeVarBytes(w io.Writer, b []byte) error {
	return wire.WriteVarBytes(w, pver, b)
}

// varBytesSize 返回带长度前缀的字节串编码后的大小。
func varBytesSize(n int) int {
	return wire.VarIntSerializeSize(uint64(n)) + n
}

func readUint160(r io.Reader) (Uint160, error) {
	var u Uint160
	if _, err := io.ReadFull(r, u[:]); err != nil {
		return u, formatError(ErrFormat, "read script hash", err)
	}
	return u, nil
}

func readHash(r io.Reader) (chainhash.Hash, error) {
	var h chainhash.Hash
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return h, formatError(ErrFormat, "read hash", err)
	}
	return h, nil
}

// readLE 读取固定宽度的小端序整数。
func readLE(r io.Reader, data any) error {
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return formatError(ErrFormat, "read fixed integer", err)
	}
	return nil
}

// writeLE 写入固定宽度的小端序整数。
func writeLE(w io.Writer, data any) error {
	return binary.Write(w, binary.LittleEndian, data)
}

// expectEOF 确保所有字节都已被消费。
func expectEOF(r *bytes.Reader) error {
	if r.Len() != 0 {
		return formatError(ErrFormat, fmt.Sprintf("%d trailing bytes", r.Len()), nil)
	}
	return nil
}
