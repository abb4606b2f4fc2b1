package types

import (
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Verifiable 是需要见证授权的消息。
type Verifiable interface {
	// TypeTag 返回在交换格式中标识消息类型的稳定标签。
	TypeTag() string

	// GetHashData 返回不含见证的规范字节，用于签名与哈希。
	GetHashData() []byte

	// Hash 返回 GetHashData 的双重 SHA-256。
	Hash() chainhash.Hash

	// ScriptHashesForVerifying 返回需要授权的脚本哈希，有序且不重复。
	ScriptHashesForVerifying() []Uint160

	// Witnesses 返回已附加的见证。
	Witnesses() []Witness

	// SetWitnesses 按 ScriptHashesForVerifying 的顺序附加见证。
	SetWitnesses(witnesses []Witness) error
}

// VerifiableDecoder 从 GetHashData 的字节重建一个消息。
type VerifiableDecoder func(data []byte) (Verifiable, error)

var (
	registryMtx sync.RWMutex
	registry    = map[string]VerifiableDecoder{
		TransactionTag: decodeUnsignedTransaction,
		HeaderTag:      decodeUnsignedHeader,
		PayloadTag:     decodeUnsignedPayload,
	}
)

// RegisterVerifiable 为类型标签注册解码器，标签已存在时返回错误。
func RegisterVerifiable(tag string, decoder VerifiableDecoder) error {
	registryMtx.Lock()
	defer registryMtx.Unlock()

	if _, ok := registry[tag]; ok {
		return fmt.Errorf("verifiable type %q already registered", tag)
	}
	registry[tag] = decoder
	return nil
}

// DecodeVerifiable 使用类型标签对应的解码器重建消息。未知标签返回 ErrUnknownType。
func DecodeVerifiable(tag string, data []byte) (Verifiable, error) {
	registryMtx.RLock()
	decoder, ok := registry[tag]
	registryMtx.RUnlock()

	if !ok {
		return nil, formatError(ErrUnknownType,
			fmt.Sprintf("unknown verifiable type %q", tag), nil)
	}
	return decoder(data)
}

// hashData 计算消息哈希。
func hashData(data []byte) chainhash.Hash {
	return chainhash.DoubleHashH(data)
}

// checkWitnessCount 确保见证数量与需要授权的脚本哈希数量一致。
func checkWitnessCount(v Verifiable, witnesses []Witness) error {
	if want := len(v.ScriptHashesForVerifying()); len(witnesses) != want {
		return formatError(ErrWitnessCount,
			fmt.Sprintf("%s needs %d witnesses, got %d", v.TypeTag(), want, len(witnesses)), nil)
	}
	return nil
}
