package contract

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/qinglongcn/bpfsign/txscript"
	"github.com/qinglongcn/bpfsign/types"
)

// ContextItem 保存一个脚本哈希收集到的参数和签名。
type ContextItem struct {
	Script     []byte
	Parameters []Parameter
	Signatures map[string][]byte // 压缩公钥的十六进制 -> 签名
}

func newContextItem(c *Contract) *ContextItem {
	item := &ContextItem{
		Script:     append([]byte(nil), c.Script...),
		Parameters: make([]Parameter, len(c.ParameterList)),
		Signatures: make(map[string][]byte),
	}
	for i, t := range c.ParameterList {
		item.Parameters[i].Type = t
	}
	return item
}

func (item *ContextItem) clone() *ContextItem {
	out := &ContextItem{
		Script:     append([]byte(nil), item.Script...),
		Parameters: make([]Parameter, len(item.Parameters)),
		Signatures: make(map[string][]byte, len(item.Signatures)),
	}
	for i := range item.Parameters {
		out.Parameters[i] = item.Parameters[i].clone()
	}
	for k, v := range item.Signatures {
		out.Signatures[k] = append([]byte(nil), v...)
	}
	return out
}

// allFilled 返回所有槽位是否都已填充。
func (item *ContextItem) allFilled() bool {
	for i := range item.Parameters {
		if !item.Parameters[i].Filled() {
			return false
		}
	}
	return true
}

// ParametersContext 汇总一条消息所需的全部参数与签名。
// 它不是并发安全的，多方并发贡献时由调用者串行化或使用 Merge 合并。
type ParametersContext struct {
	verifiable   types.Verifiable
	hashData     []byte
	scriptHashes []types.Uint160
	items        map[types.Uint160]*ContextItem
}

// NewParametersContext 为消息创建上下文，并记录此刻需要授权的脚本哈希与签名数据。
// 之后对消息的修改不会影响上下文。
func NewParametersContext(v types.Verifiable) *ParametersContext {
	return &ParametersContext{
		verifiable:   v,
		hashData:     v.GetHashData(),
		scriptHashes: types.DedupScriptHashes(v.ScriptHashesForVerifying()),
		items:        make(map[types.Uint160]*ContextItem),
	}
}

// CheckRequirement 在消息没有声明任何需要授权的脚本哈希时返回 ErrNoRequirement。
// 这样的上下文仍然可以存在，并且视为已完成。
func (c *ParametersContext) CheckRequirement() error {
	if len(c.scriptHashes) == 0 {
		return contextError(ErrNoRequirement,
			fmt.Sprintf("%s requires no script hashes", c.verifiable.TypeTag()), nil)
	}
	return nil
}

// Verifiable 返回正在签名的消息。
func (c *ParametersContext) Verifiable() types.Verifiable {
	return c.verifiable
}

// HashData 返回创建上下文时记录的签名数据。
func (c *ParametersContext) HashData() []byte {
	return c.hashData
}

// ScriptHashes 返回需要授权的脚本哈希副本。
func (c *ParametersContext) ScriptHashes() []types.Uint160 {
	return append([]types.Uint160(nil), c.scriptHashes...)
}

func (c *ParametersContext) requires(hash types.Uint160) bool {
	for _, h := range c.scriptHashes {
		if h == hash {
			return true
		}
	}
	return false
}

// ensureItem 返回合约对应的条目，不存在时创建。
// 已有条目的槽位必须与合约的参数列表一致。
func (c *ParametersContext) ensureItem(ct *Contract) (*ContextItem, error) {
	hash := ct.ScriptHash()
	item, ok := c.items[hash]
	if !ok {
		item = newContextItem(ct)
		c.items[hash] = item
		return item, nil
	}
	if len(item.Parameters) != len(ct.ParameterList) {
		return nil, contextError(ErrParameterMismatch,
			fmt.Sprintf("contract %s has %d parameters, context item has %d",
				hash, len(ct.ParameterList), len(item.Parameters)), nil)
	}
	for i, t := range ct.ParameterList {
		if item.Parameters[i].Type != t {
			return nil, contextError(ErrParameterMismatch,
				fmt.Sprintf("contract %s parameter %d is %s, context item has %s",
					hash, i, t, item.Parameters[i].Type), nil)
		}
	}
	return item, nil
}

// Add 把参数值写入合约的指定槽位。
// 脚本哈希不是消息所需时返回 false 且不报错；索引越界或类型不符时返回错误。
// 已填充的槽位可以被覆盖。
func (c *ParametersContext) Add(ct *Contract, index int, value Parameter) (bool, error) {
	if !c.requires(ct.ScriptHash()) {
		return false, nil
	}
	if index < 0 || index >= len(ct.ParameterList) {
		return false, contextError(ErrInvalidIndex,
			fmt.Sprintf("parameter index %d out of range [0, %d)", index, len(ct.ParameterList)), nil)
	}
	if value.Type != ct.ParameterList[index] {
		return false, contextError(ErrParameterMismatch,
			fmt.Sprintf("parameter %d expects %s, got %s", index, ct.ParameterList[index], value.Type), nil)
	}
	if err := value.normalize(); err != nil {
		return false, err
	}

	item, err := c.ensureItem(ct)
	if err != nil {
		return false, err
	}
	item.Parameters[index] = value.clone()
	return true, nil
}

// AddSignature 把签名放入合约期望的位置。
//
// 对于多重签名合约，签名按公钥记录，公钥不在合约中时返回 false 且不创建条目。
// 对于其他合约，参数列表必须只有一个签名槽位：没有时返回 false，
// 多于一个时返回 ErrAmbiguousPlacement；标准单签名脚本还要求公钥与脚本内嵌的公钥一致。
func (c *ParametersContext) AddSignature(ct *Contract, pubKey *btcec.PublicKey, signature []byte) (bool, error) {
	if len(signature) == 0 {
		return false, mismatch(SignatureType, signature)
	}
	if pubKey == nil {
		return false, nil
	}
	sigParam := Parameter{Type: SignatureType, Value: signature}
	key := pubKey.SerializeCompressed()

	if desc, ok := ct.IsMultiSig(); ok {
		if !c.requires(ct.ScriptHash()) || desc.IndexOf(key) < 0 {
			return false, nil
		}
		item, err := c.ensureItem(ct)
		if err != nil {
			return false, err
		}
		item.Signatures[hex.EncodeToString(key)] = append([]byte(nil), signature...)
		return true, nil
	}

	index := -1
	for i, t := range ct.ParameterList {
		if t != SignatureType {
			continue
		}
		if index >= 0 {
			return false, contextError(ErrAmbiguousPlacement,
				fmt.Sprintf("contract %s has more than one signature parameter", ct.ScriptHash()), nil)
		}
		index = i
	}
	if index < 0 {
		return false, nil
	}
	if embedded := ct.SignaturePublicKey(); embedded != nil && !bytes.Equal(embedded, key) {
		return false, nil
	}
	return c.Add(ct, index, sigParam)
}

// GetParameter 返回指定槽位的参数，条目或槽位不存在、槽位未填充时返回 nil。
func (c *ParametersContext) GetParameter(scriptHash types.Uint160, index int) *Parameter {
	item, ok := c.items[scriptHash]
	if !ok || index < 0 || index >= len(item.Parameters) || !item.Parameters[index].Filled() {
		return nil
	}
	p := item.Parameters[index].clone()
	return &p
}

// GetParameters 返回脚本哈希对应条目的全部参数副本。
func (c *ParametersContext) GetParameters(scriptHash types.Uint160) []Parameter {
	item, ok := c.items[scriptHash]
	if !ok {
		return nil
	}
	out := make([]Parameter, len(item.Parameters))
	for i := range item.Parameters {
		out[i] = item.Parameters[i].clone()
	}
	return out
}

// GetContract 返回条目记录的合约，条目不存在时返回 nil。
func (c *ParametersContext) GetContract(scriptHash types.Uint160) *Contract {
	item, ok := c.items[scriptHash]
	if !ok {
		return nil
	}
	params := make([]ParamType, len(item.Parameters))
	for i := range item.Parameters {
		params[i] = item.Parameters[i].Type
	}
	return NewContract(params, item.Script)
}

// GetSignatures 返回脚本哈希对应条目已收集的签名副本，键为压缩公钥的十六进制。
func (c *ParametersContext) GetSignatures(scriptHash types.Uint160) map[string][]byte {
	item, ok := c.items[scriptHash]
	if !ok {
		return nil
	}
	out := make(map[string][]byte, len(item.Signatures))
	for k, v := range item.Signatures {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

// multiSigReady 返回多重签名条目是否已收集到足够的签名。
func multiSigReady(item *ContextItem) (*MultiSigDescriptor, bool) {
	desc, ok := multiSigDescriptor(item.Script)
	if !ok {
		return nil, false
	}
	count := 0
	for _, key := range desc.PublicKeys {
		if _, ok := item.Signatures[hex.EncodeToString(key)]; ok {
			count++
		}
	}
	return desc, count >= desc.Threshold
}

// Completed 返回是否每个需要授权的脚本哈希都已满足：
// 多重签名合约收集到不少于门限数量的不同签名，或者条目的所有槽位都已填充。
func (c *ParametersContext) Completed() bool {
	for _, h := range c.scriptHashes {
		item, ok := c.items[h]
		if !ok {
			return false
		}
		if _, ready := multiSigReady(item); ready {
			continue
		}
		if !item.allFilled() {
			return false
		}
	}
	return true
}

// assemble 按公钥在脚本中的位置选出前 m 个签名。
func assemble(signatures map[string][]byte, orderedKeys [][]byte, m int) [][]byte {
	out := make([][]byte, 0, m)
	for _, key := range orderedKeys {
		if len(out) == m {
			break
		}
		if sig, ok := signatures[hex.EncodeToString(key)]; ok {
			out = append(out, sig)
		}
	}
	return out
}

// GetWitnesses 按 ScriptHashes 的顺序组装见证。上下文未完成时返回 ErrIncompleteContext。
func (c *ParametersContext) GetWitnesses() ([]types.Witness, error) {
	if !c.Completed() {
		return nil, contextError(ErrIncompleteContext, "context is not completed", nil)
	}

	witnesses := make([]types.Witness, len(c.scriptHashes))
	for i, h := range c.scriptHashes {
		item := c.items[h]
		builder := txscript.NewScriptBuilder()
		if desc, ready := multiSigReady(item); ready {
			for _, sig := range assemble(item.Signatures, desc.PublicKeys, desc.Threshold) {
				builder.AddData(sig)
			}
		} else {
			for j := range item.Parameters {
				if err := item.Parameters[j].emit(builder); err != nil {
					return nil, err
				}
			}
		}
		invocation, err := builder.Script()
		if err != nil {
			return nil, contextError(ErrFormat, fmt.Sprintf("invocation script for %s", h), err)
		}
		witnesses[i] = types.Witness{
			InvocationScript:   invocation,
			VerificationScript: append([]byte(nil), item.Script...),
		}
	}
	return witnesses, nil
}

// Merge 把另一个同一消息的上下文合并进来：签名按公钥取并集，未填充的槽位取对方的值，
// 已有的值保持不变。返回是否有任何变化。
func (c *ParametersContext) Merge(other *ParametersContext) (bool, error) {
	if c.verifiable.TypeTag() != other.verifiable.TypeTag() || !bytes.Equal(c.hashData, other.hashData) {
		return false, contextError(ErrMessageMismatch, "contexts belong to different messages", nil)
	}

	for h, theirs := range other.items {
		if !c.requires(h) {
			return false, contextError(ErrFormat, fmt.Sprintf("script hash %s is not required", h), nil)
		}
		ours, ok := c.items[h]
		if !ok {
			continue
		}
		if !bytes.Equal(ours.Script, theirs.Script) || len(ours.Parameters) != len(theirs.Parameters) {
			return false, contextError(ErrFormat, fmt.Sprintf("conflicting items for %s", h), nil)
		}
		for i := range theirs.Parameters {
			if ours.Parameters[i].Type != theirs.Parameters[i].Type {
				return false, contextError(ErrFormat, fmt.Sprintf("conflicting parameter %d for %s", i, h), nil)
			}
		}
	}

	changed := false
	for h, theirs := range other.items {
		ours, ok := c.items[h]
		if !ok {
			c.items[h] = theirs.clone()
			changed = true
			continue
		}
		for i := range theirs.Parameters {
			if !ours.Parameters[i].Filled() && theirs.Parameters[i].Filled() {
				ours.Parameters[i] = theirs.Parameters[i].clone()
				changed = true
			}
		}
		for k, sig := range theirs.Signatures {
			if _, ok := ours.Signatures[k]; !ok {
				ours.Signatures[k] = append([]byte(nil), sig...)
				changed = true
			}
		}
	}
	return changed, nil
}
