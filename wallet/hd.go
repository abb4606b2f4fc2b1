package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip32"
)

// HDKey 是 BIP32 分层确定性私钥。
type HDKey struct {
	key *bip32.Key
}

// NewHDMaster 从种子创建主密钥，种子长度为 16 到 64 字节。
func NewHDMaster(seed []byte) (*HDKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, walletError(ErrDerivation, fmt.Sprintf("seed length %d out of range", len(seed)), nil)
	}
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, walletError(ErrDerivation, "master key", err)
	}
	return &HDKey{key: key}, nil
}

// ParseHDKey 解析 base58 编码的扩展私钥。
func ParseHDKey(s string) (*HDKey, error) {
	key, err := bip32.B58Deserialize(s)
	if err != nil {
		return nil, walletError(ErrDerivation, "deserialize extended key", err)
	}
	if !key.IsPrivate {
		return nil, walletError(ErrDerivation, "extended key is not private", nil)
	}
	return &HDKey{key: key}, nil
}

// Child 派生第 index 个普通子密钥。
func (k *HDKey) Child(index uint32) (*HDKey, error) {
	if index >= bip32.FirstHardenedChild {
		return nil, walletError(ErrDerivation, fmt.Sprintf("child index %d is hardened", index), nil)
	}
	return k.derive(index)
}

// HardenedChild 派生第 index 个强化子密钥。
func (k *HDKey) HardenedChild(index uint32) (*HDKey, error) {
	if index >= bip32.FirstHardenedChild {
		return nil, walletError(ErrDerivation, fmt.Sprintf("child index %d out of range", index), nil)
	}
	return k.derive(bip32.FirstHardenedChild + index)
}

func (k *HDKey) derive(index uint32) (*HDKey, error) {
	child, err := k.key.NewChildKey(index)
	if err != nil {
		return nil, walletError(ErrDerivation, fmt.Sprintf("derive child %d", index), err)
	}
	return &HDKey{key: child}, nil
}

// KeyPair 返回该扩展密钥对应的密钥对。
func (k *HDKey) KeyPair() (*KeyPair, error) {
	return NewKeyPair(k.key.Key)
}

// String 返回 base58 编码的扩展私钥。
func (k *HDKey) String() string {
	return k.key.B58Serialize()
}
