package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

// Uint160Size 是脚本哈希的字节长度。
const Uint160Size = 20

// Uint160 是 20 字节的脚本哈希。
type Uint160 [Uint160Size]byte

// Hash160 计算 RIPEMD160(SHA256(data))，用于由验证脚本得到脚本哈希。
func Hash160(data []byte) Uint160 {
	var u Uint160
	copy(u[:], btcutil.Hash160(data))
	return u
}

// Uint160FromBytes 从 20 字节的切片创建 Uint160。
func Uint160FromBytes(b []byte) (Uint160, error) {
	var u Uint160
	if len(b) != Uint160Size {
		return u, formatError(ErrFormat,
			fmt.Sprintf("expected %d bytes for script hash, got %d", Uint160Size, len(b)), nil)
	}
	copy(u[:], b)
	return u, nil
}

// Uint160DecodeString 解析反序十六进制字符串，0x 前缀可选。
func Uint160DecodeString(s string) (Uint160, error) {
	var u Uint160
	s = strings.TrimPrefix(s, "0x")
	if len(s) != Uint160Size*2 {
		return u, formatError(ErrFormat, fmt.Sprintf("invalid script hash %q", s), nil)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, formatError(ErrFormat, fmt.Sprintf("invalid script hash %q", s), err)
	}
	for i := range b {
		u[i] = b[Uint160Size-1-i]
	}
	return u, nil
}

// Bytes 返回脚本哈希的原始字节副本。
func (u Uint160) Bytes() []byte {
	b := make([]byte, Uint160Size)
	copy(b, u[:])
	return b
}

// String 返回带 0x 前缀的反序十六进制表示。
func (u Uint160) String() string {
	r := make([]byte, Uint160Size)
	for i := range u {
		r[i] = u[Uint160Size-1-i]
	}
	return "0x" + hex.EncodeToString(r)
}

// Equals 判断两个脚本哈希是否相等。
func (u Uint160) Equals(other Uint160) bool {
	return u == other
}

// Less 按原始字节比较。
func (u Uint160) Less(other Uint160) bool {
	return bytes.Compare(u[:], other[:]) < 0
}

// MarshalJSON 实现 json.Marshaler。
func (u Uint160) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON 实现 json.Unmarshaler。
func (u *Uint160) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := Uint160DecodeString(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// DedupScriptHashes 去除重复的脚本哈希，并保留首次出现的顺序。
func DedupScriptHashes(hashes []Uint160) []Uint160 {
	seen := make(map[Uint160]struct{}, len(hashes))
	out := make([]Uint160, 0, len(hashes))
	for _, h := range hashes {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
