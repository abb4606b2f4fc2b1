package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// StorageKey 是合约存储中使用的键：脚本哈希与不透明键直接拼接，中间没有长度前缀。
type StorageKey struct {
	ScriptHash Uint160
	Key        []byte
}

// Size 返回编码后的字节数，即 20 加上键的长度。
func (k *StorageKey) Size() int {
	return Uint160Size + len(k.Key)
}

// Bytes 返回脚本哈希与键的拼接。
func (k *StorageKey) Bytes() []byte {
	b := make([]byte, 0, k.Size())
	b = append(b, k.ScriptHash[:]...)
	return append(b, k.Key...)
}

// Equals 判断两个存储键的两个字段是否都逐字节相等。
func (k *StorageKey) Equals(other *StorageKey) bool {
	if other == nil {
		return false
	}
	return k.ScriptHash == other.ScriptHash && bytes.Equal(k.Key, other.Key)
}

// Hash 返回用于散列表的哈希值：脚本哈希首个小端序字加上键的 murmur3 哈希。
func (k *StorageKey) Hash() uint32 {
	return binary.LittleEndian.Uint32(k.ScriptHash[:4]) + murmur3.Sum32(k.Key)
}

// String 返回可读形式。
func (k *StorageKey) String() string {
	return fmt.Sprintf("%s:%x", k.ScriptHash, k.Key)
}

// DecodeStorageKey 把前 20 字节解析为脚本哈希，其余为键。
func DecodeStorageKey(b []byte) (*StorageKey, error) {
	if len(b) < Uint160Size {
		return nil, formatError(ErrFormat,
			fmt.Sprintf("storage key is %d bytes, need at least %d", len(b), Uint160Size), nil)
	}
	k := &StorageKey{Key: make([]byte, len(b)-Uint160Size)}
	copy(k.ScriptHash[:], b[:Uint160Size])
	copy(k.Key, b[Uint160Size:])
	return k, nil
}
