package wallet

import (
	"crypto/sha512"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tyler-smith/go-bip32"
	"golang.org/x/crypto/pbkdf2"

	"github.com/qinglongcn/bpfsign/contract"
)

const (
	// PrivateKeyLength 是私钥的字节长度。
	PrivateKeyLength = 32

	// passwordIterations 是从密码派生种子时 PBKDF2 的迭代次数。
	passwordIterations = 4096
)

// KeyPair 是 secp256k1 密钥对。
type KeyPair struct {
	privKey *btcec.PrivateKey
}

// NewKeyPair 从 32 字节私钥创建密钥对。
func NewKeyPair(privKey []byte) (*KeyPair, error) {
	if len(privKey) != PrivateKeyLength {
		return nil, walletError(ErrInvalidKey, "private key must be 32 bytes", nil)
	}
	var k secp256k1.ModNScalar
	if overflow := k.SetByteSlice(privKey); overflow || k.IsZero() {
		return nil, walletError(ErrInvalidKey, "private key out of range", nil)
	}
	priv, _ := btcec.PrivKeyFromBytes(privKey)
	return &KeyPair{privKey: priv}, nil
}

// GenerateKeyPair 随机生成密钥对。
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, walletError(ErrInvalidKey, "generate private key", err)
	}
	return &KeyPair{privKey: priv}, nil
}

// KeyPairFromPassword 使用 PBKDF2 从密码与盐派生种子，再以种子的 BIP32 主密钥作为私钥。
// 相同的密码与盐总是得到相同的密钥对。
func KeyPairFromPassword(password, salt []byte) (*KeyPair, error) {
	seed := pbkdf2.Key(password, append([]byte("BPFS"), salt...), passwordIterations, sha512.Size, sha512.New)
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, walletError(ErrDerivation, "master key", err)
	}
	return NewKeyPair(master.Key)
}

// KeyPairFromWIF 解析 WIF 格式的私钥，只接受压缩公钥格式。
func KeyPairFromWIF(s string) (*KeyPair, error) {
	wif, err := btcutil.DecodeWIF(s)
	if err != nil {
		return nil, walletError(ErrInvalidWIF, "decode wif", err)
	}
	if !wif.CompressPubKey {
		return nil, walletError(ErrInvalidWIF, "wif does not use a compressed public key", nil)
	}
	return &KeyPair{privKey: wif.PrivKey}, nil
}

// WIF 返回私钥的 WIF 编码。
func (k *KeyPair) WIF() string {
	wif, err := btcutil.NewWIF(k.privKey, &chaincfg.MainNetParams, true)
	if err != nil {
		return ""
	}
	return wif.String()
}

// PublicKey 返回公钥。
func (k *KeyPair) PublicKey() *btcec.PublicKey {
	return k.privKey.PubKey()
}

// PrivateKey 返回私钥的 32 字节编码。
func (k *KeyPair) PrivateKey() []byte {
	return k.privKey.Serialize()
}

// Contract 返回该密钥的单签名合约。
func (k *KeyPair) Contract() *contract.Contract {
	return contract.CreateSignatureContract(k.PublicKey())
}

// Sign 对数据的 SHA-256 签名，返回 64 字节的 r 与 s。
func (k *KeyPair) Sign(data []byte) ([]byte, error) {
	compact, err := ecdsa.SignCompact(k.privKey, chainhash.HashB(data), true)
	if err != nil {
		return nil, walletError(ErrInvalidKey, "sign", err)
	}
	// 第一个字节是公钥恢复标志。
	return compact[1:], nil
}

// VerifySignature 验证 64 字节签名是否为公钥对数据的有效签名。
func VerifySignature(data, signature []byte, pubKey *btcec.PublicKey) bool {
	if len(signature) != contract.SignatureLength || pubKey == nil {
		return false
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow || r.IsZero() {
		return false
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow || s.IsZero() {
		return false
	}
	return ecdsa.NewSignature(&r, &s).Verify(chainhash.HashB(data), pubKey)
}
