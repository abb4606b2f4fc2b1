package contract

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/qinglongcn/bpfsign/txscript"
	"github.com/qinglongcn/bpfsign/types"
)

// Contract 是验证合约：验证脚本以及脚本期望的参数类型列表。
// ParameterList 的长度决定了上下文条目的槽位数量，顺序与脚本期望的推送顺序一致。
type Contract struct {
	Script        []byte
	ParameterList []ParamType

	scriptHash *types.Uint160
}

// NewContract 使用参数列表与脚本创建合约。
func NewContract(parameterList []ParamType, script []byte) *Contract {
	return &Contract{
		Script:        append([]byte(nil), script...),
		ParameterList: append([]ParamType(nil), parameterList...),
	}
}

// ScriptHash 返回脚本哈希，首次调用后缓存。
func (c *Contract) ScriptHash() types.Uint160 {
	if c.scriptHash == nil {
		h := types.Hash160(c.Script)
		c.scriptHash = &h
	}
	return *c.scriptHash
}

// ParameterSlotCount 返回参数槽位数量。
func (c *Contract) ParameterSlotCount() int {
	return len(c.ParameterList)
}

// MultiSigDescriptor 是从多重签名脚本中识别出的门限与公钥。
type MultiSigDescriptor struct {
	Threshold  int
	PublicKeys [][]byte // 压缩公钥，按脚本中出现的顺序
}

// IndexOf 返回公钥在脚本中的位置，不存在时返回 -1。
func (d *MultiSigDescriptor) IndexOf(pubKey []byte) int {
	for i, k := range d.PublicKeys {
		if bytes.Equal(k, pubKey) {
			return i
		}
	}
	return -1
}

// multiSigDescriptor 对脚本做结构识别。
func multiSigDescriptor(script []byte) (*MultiSigDescriptor, bool) {
	details := txscript.ExtractMultisigScriptDetails(script, true)
	if !details.Valid {
		return nil, false
	}
	return &MultiSigDescriptor{
		Threshold:  details.RequiredSigs,
		PublicKeys: details.PubKeys,
	}, true
}

// IsMultiSig 识别合约脚本是否为规范的多重签名脚本。
func (c *Contract) IsMultiSig() (*MultiSigDescriptor, bool) {
	return multiSigDescriptor(c.Script)
}

// SignaturePublicKey 返回单签名脚本内嵌的公钥，不是单签名脚本时返回 nil。
func (c *Contract) SignaturePublicKey() []byte {
	return txscript.ExtractSignaturePubKey(c.Script)
}

// CreateSignatureRedeemScript 创建单签名验证脚本。
func CreateSignatureRedeemScript(pubKey *btcec.PublicKey) []byte {
	script, _ := txscript.SignatureScript(pubKey.SerializeCompressed())
	return script
}

// CreateSignatureContract 创建单签名合约。
func CreateSignatureContract(pubKey *btcec.PublicKey) *Contract {
	return &Contract{
		Script:        CreateSignatureRedeemScript(pubKey),
		ParameterList: []ParamType{SignatureType},
	}
}

// sortedKeys 返回按压缩编码字节序排序的公钥。
func sortedKeys(pubKeys []*btcec.PublicKey) [][]byte {
	keys := make([][]byte, len(pubKeys))
	for i, k := range pubKeys {
		keys[i] = k.SerializeCompressed()
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i], keys[j]) < 0
	})
	return keys
}

// CreateMultiSigRedeemScript 创建 m-of-n 多重签名验证脚本。
// 公钥按压缩编码排序后写入脚本，因此同一组公钥总是得到相同的脚本哈希。
func CreateMultiSigRedeemScript(m int, pubKeys []*btcec.PublicKey) ([]byte, error) {
	keys := sortedKeys(pubKeys)
	for i := 1; i < len(keys); i++ {
		if bytes.Equal(keys[i-1], keys[i]) {
			return nil, contextError(ErrInvalidContract,
				fmt.Sprintf("duplicate public key %x", keys[i]), nil)
		}
	}
	script, err := txscript.MultiSigScript(keys, m)
	if err != nil {
		return nil, contextError(ErrInvalidContract, "multisig script", err)
	}
	return script, nil
}

// CreateMultiSigContract 创建 m-of-n 多重签名合约，参数列表为 m 个签名。
func CreateMultiSigContract(m int, pubKeys []*btcec.PublicKey) (*Contract, error) {
	script, err := CreateMultiSigRedeemScript(m, pubKeys)
	if err != nil {
		return nil, err
	}
	params := make([]ParamType, m)
	for i := range params {
		params[i] = SignatureType
	}
	return &Contract{Script: script, ParameterList: params}, nil
}
