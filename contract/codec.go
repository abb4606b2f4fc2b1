package contract

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/qinglongcn/bpfsign/types"
)

type contextItemJSON struct {
	Script     string            `json:"script"`
	Parameters []Parameter       `json:"parameters"`
	Signatures map[string]string `json:"signatures"`
}

type contextJSON struct {
	Type  string                     `json:"type"`
	Hex   string                     `json:"hex"`
	Items map[string]contextItemJSON `json:"items"`
}

// MarshalJSON 把上下文编码为可交换的 JSON 文档。
// hex 字段为签名数据，items 的键为 "0x" 开头的脚本哈希。
func (c *ParametersContext) MarshalJSON() ([]byte, error) {
	doc := contextJSON{
		Type:  c.verifiable.TypeTag(),
		Hex:   hex.EncodeToString(c.hashData),
		Items: make(map[string]contextItemJSON, len(c.items)),
	}
	for h, item := range c.items {
		sigs := make(map[string]string, len(item.Signatures))
		for k, v := range item.Signatures {
			sigs[k] = hex.EncodeToString(v)
		}
		params := item.Parameters
		if params == nil {
			params = []Parameter{}
		}
		doc.Items[h.String()] = contextItemJSON{
			Script:     hex.EncodeToString(item.Script),
			Parameters: params,
			Signatures: sigs,
		}
	}
	return json.Marshal(doc)
}

// String 返回上下文的 JSON 文档，编码失败时返回空字符串。
func (c *ParametersContext) String() string {
	b, err := c.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

// ParseParametersContext 从 JSON 文档重建上下文。
// 消息按类型标签从注册表中解码，所有条目都必须属于需要授权的脚本哈希。
func ParseParametersContext(data []byte) (*ParametersContext, error) {
	var doc contextJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, contextError(ErrFormat, "context document", err)
	}
	raw, err := hex.DecodeString(doc.Hex)
	if err != nil {
		return nil, contextError(ErrFormat, "context hex", err)
	}
	v, err := types.DecodeVerifiable(doc.Type, raw)
	if err != nil {
		return nil, contextError(ErrFormat, fmt.Sprintf("decode %s", doc.Type), err)
	}

	ctx := NewParametersContext(v)
	for key, itemDoc := range doc.Items {
		item, err := parseContextItem(ctx, key, itemDoc)
		if err != nil {
			return nil, err
		}
		ctx.items[item.hash] = item.ContextItem
	}
	return ctx, nil
}

type parsedItem struct {
	*ContextItem
	hash types.Uint160
}

func parseContextItem(ctx *ParametersContext, key string, doc contextItemJSON) (*parsedItem, error) {
	hash, err := types.Uint160DecodeString(key)
	if err != nil {
		return nil, contextError(ErrFormat, fmt.Sprintf("item key %q", key), err)
	}
	if !ctx.requires(hash) {
		return nil, contextError(ErrFormat, fmt.Sprintf("script hash %s is not required", hash), nil)
	}
	script, err := hex.DecodeString(doc.Script)
	if err != nil {
		return nil, contextError(ErrFormat, fmt.Sprintf("script of %s", hash), err)
	}
	if types.Hash160(script) != hash {
		return nil, contextError(ErrFormat, fmt.Sprintf("script does not hash to %s", hash), nil)
	}

	item := &ContextItem{
		Script:     script,
		Parameters: doc.Parameters,
		Signatures: make(map[string][]byte, len(doc.Signatures)),
	}
	if item.Parameters == nil {
		item.Parameters = []Parameter{}
	}

	desc, multi := multiSigDescriptor(script)
	for k, v := range doc.Signatures {
		pub, err := hex.DecodeString(k)
		if err != nil {
			return nil, contextError(ErrFormat, fmt.Sprintf("signature key %q", k), err)
		}
		parsed, err := btcec.ParsePubKey(pub)
		if err != nil {
			return nil, contextError(ErrFormat, fmt.Sprintf("signature key %q", k), err)
		}
		compressed := parsed.SerializeCompressed()
		if !multi || desc.IndexOf(compressed) < 0 {
			return nil, contextError(ErrFormat,
				fmt.Sprintf("signature key %q is not a member of %s", k, hash), nil)
		}
		sig, err := hex.DecodeString(v)
		if err != nil || len(sig) == 0 {
			return nil, contextError(ErrFormat, fmt.Sprintf("signature for %q", k), err)
		}
		item.Signatures[hex.EncodeToString(compressed)] = sig
	}
	return &parsedItem{ContextItem: item, hash: hash}, nil
}
