// 包含识别和构建标准验证脚本的函数。

package txscript

import (
	"fmt"
)

// ScriptClass 是标准验证脚本类型的枚举。
type ScriptClass byte

// 标准验证脚本的分类。
const (
	NonStandardTy ScriptClass = iota // 无法识别的自定义脚本。
	SignatureTy                      // 单签名脚本。
	MultiSigTy                       // 多重签名脚本。
)

// scriptClassToName 包含描述每个脚本类的字符串。
var scriptClassToName = []string{
	NonStandardTy: "nonstandard",
	SignatureTy:   "signature",
	MultiSigTy:    "multisig",
}

// String 通过返回脚本类的可读名称来实现 Stringer 接口。
func (t ScriptClass) String() string {
	if int(t) >= len(scriptClassToName) {
		return "Invalid"
	}
	return scriptClassToName[t]
}

// isStrictPubKeyEncoding 返回公钥是否为 33 字节压缩格式。
func isStrictPubKeyEncoding(pubKey []byte) bool {
	return len(pubKey) == PubKeyLength &&
		(pubKey[0] == 0x02 || pubKey[0] == 0x03)
}

// ExtractSignaturePubKey 从单签名脚本中提取压缩公钥。
// 脚本不是单签名形式时返回 nil。
func ExtractSignaturePubKey(script []byte) []byte {
	// 单签名脚本的形式为：
	//  OP_DATA_33 <33-byte compressed pubkey> OP_CHECKSIG
	if len(script) == PubKeyLength+2 &&
		script[0] == OP_DATA_33 &&
		script[PubKeyLength+1] == OP_CHECKSIG &&
		isStrictPubKeyEncoding(script[1:PubKeyLength+1]) {

		return script[1 : PubKeyLength+1]
	}
	return nil
}

// IsSignatureScript 返回脚本是否为标准单签名脚本。
func IsSignatureScript(script []byte) bool {
	return ExtractSignaturePubKey(script) != nil
}

// MultiSigDetails 包含从标准多重签名脚本中提取的详细信息。
type MultiSigDetails struct {
	RequiredSigs int
	NumPubKeys   int
	PubKeys      [][]byte // 按脚本中出现的顺序
	Valid        bool
}

// asScriptInt 将小整数操作码或最小整数推送解析为 int。
func asScriptInt(op byte, data []byte) (int, bool) {
	if IsSmallInt(op) {
		return AsSmallInt(op), true
	}
	if op < OP_DATA_1 || op > OP_DATA_75 || len(data) > 2 || !isMinimalInt(data) {
		return 0, false
	}
	n := DecodeInt(data)
	if !n.IsInt64() {
		return 0, false
	}
	return int(n.Int64()), true
}

// ExtractMultisigScriptDetails 尝试从传递的脚本中提取多重签名详细信息。
// 否则，返回的详细信息结构将把有效标志设为 false。
// 提取公钥标志表示是否也要提取公钥本身，为 false 时 PubKeys 为 nil。
func ExtractMultisigScriptDetails(script []byte, extractPubKeys bool) MultiSigDetails {
	// 多重签名脚本的形式为：
	//  NUM_SIGS PUBKEY PUBKEY PUBKEY ... NUM_PUBKEYS OP_CHECKMULTISIG

	// 不以 OP_CHECKMULTISIG 结尾的脚本不可能是多重签名脚本。
	if len(script) < 3+PubKeyLength || script[len(script)-1] != OP_CHECKMULTISIG {
		return MultiSigDetails{}
	}

	// 第一个操作码必须是所需的签名数量。
	tokenizer := MakeScriptTokenizer(script)
	if !tokenizer.Next() {
		return MultiSigDetails{}
	}
	requiredSigs, ok := asScriptInt(tokenizer.Opcode(), tokenizer.Data())
	if !ok || requiredSigs < 1 {
		return MultiSigDetails{}
	}

	// 接下来是一系列 33 字节公钥推送，直到遇到公钥数量。
	var numPubKeys int
	var pubKeys [][]byte
	for tokenizer.Next() {
		if tokenizer.Opcode() != OP_DATA_33 {
			break
		}
		data := tokenizer.Data()
		if !isStrictPubKeyEncoding(data) {
			return MultiSigDetails{}
		}
		numPubKeys++
		if extractPubKeys {
			pubKeys = append(pubKeys, data)
		}
	}
	if tokenizer.Done() {
		return MultiSigDetails{}
	}

	// 下一个操作码必须是与实际推送数量一致的公钥数量。
	n, ok := asScriptInt(tokenizer.Opcode(), tokenizer.Data())
	if !ok || n != numPubKeys || numPubKeys > MaxPubKeysPerMultiSig ||
		requiredSigs > numPubKeys {

		return MultiSigDetails{}
	}

	// 只能剩下最后一个 OP_CHECKMULTISIG 操作码。
	if int32(len(tokenizer.Script()))-tokenizer.ByteIndex() != 1 {
		return MultiSigDetails{}
	}

	return MultiSigDetails{
		RequiredSigs: requiredSigs,
		NumPubKeys:   numPubKeys,
		PubKeys:      pubKeys,
		Valid:        true,
	}
}

// IsMultisigScript 返回脚本是否为标准多重签名脚本。
func IsMultisigScript(script []byte) bool {
	return ExtractMultisigScriptDetails(script, false).Valid
}

// CalcMultiSigStats 返回多重签名脚本的公钥数量和签名数量。
// 如果脚本不是多重签名脚本，则返回 ErrNotMultisigScript 错误。
func CalcMultiSigStats(script []byte) (int, int, error) {
	details := ExtractMultisigScriptDetails(script, false)
	if !details.Valid {
		str := fmt.Sprintf("script %x is not a multisig script", script)
		return 0, 0, scriptError(ErrNotMultisigScript, str)
	}
	return details.NumPubKeys, details.RequiredSigs, nil
}

// GetScriptClass 返回传递的脚本的类别。
func GetScriptClass(script []byte) ScriptClass {
	switch {
	case IsSignatureScript(script):
		return SignatureTy
	case IsMultisigScript(script):
		return MultiSigTy
	}
	return NonStandardTy
}

// SignatureScript 创建一个单签名验证脚本。
func SignatureScript(pubKey []byte) ([]byte, error) {
	if !isStrictPubKeyEncoding(pubKey) {
		str := fmt.Sprintf("public key %x is not a compressed key", pubKey)
		return nil, scriptError(ErrPubKeyType, str)
	}
	return NewScriptBuilder(WithScriptAllocSize(PubKeyLength + 2)).
		AddData(pubKey).AddOp(OP_CHECKSIG).Script()
}

// MultiSigScript 返回一个有效的多重签名脚本。
// 公钥按传入的顺序写入脚本，需要 nrequired 个签名才能满足。
func MultiSigScript(pubKeys [][]byte, nrequired int) ([]byte, error) {
	if len(pubKeys) == 0 || len(pubKeys) > MaxPubKeysPerMultiSig {
		str := fmt.Sprintf("unable to generate multisig script with %d "+
			"public keys", len(pubKeys))
		return nil, scriptError(ErrInvalidPubKeyCount, str)
	}
	if nrequired < 1 {
		str := fmt.Sprintf("unable to generate multisig script with %d "+
			"required signatures", nrequired)
		return nil, scriptError(ErrInvalidSignatureCount, str)
	}
	if len(pubKeys) < nrequired {
		str := fmt.Sprintf("unable to generate multisig script with "+
			"%d required signatures when there are only %d public "+
			"keys available", nrequired, len(pubKeys))
		return nil, scriptError(ErrTooManyRequiredSigs, str)
	}

	builder := NewScriptBuilder(WithScriptAllocSize(
		len(pubKeys)*(PubKeyLength+1) + 7)).AddInt64(int64(nrequired))
	for i, key := range pubKeys {
		if !isStrictPubKeyEncoding(key) {
			str := fmt.Sprintf("public key #%d %x is not a compressed key",
				i, key)
			return nil, scriptError(ErrPubKeyType, str)
		}
		builder.AddData(key)
	}
	builder.AddInt64(int64(len(pubKeys)))
	builder.AddOp(OP_CHECKMULTISIG)

	script, err := builder.Script()
	if err != nil {
		return nil, err
	}
	log.Tracef("创建 %d-of-%d 多重签名脚本", nrequired, len(pubKeys))
	return script, nil
}
