package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/qinglongcn/bpfsign/txscript"
	"github.com/qinglongcn/bpfsign/types"
)

// SignatureLength 是钱包产生的签名长度（r 与 s 各 32 字节）。上下文本身不限制签名参数的长度。
const SignatureLength = 64

// Parameter 是流入验证脚本的一个带类型的值。Value 为 nil 表示槽位尚未填充。
//
// 各类型对应的 Value：
//
//	Signature, ByteArray  []byte
//	Boolean               bool
//	Integer               *big.Int
//	Hash160               types.Uint160
//	Hash256               chainhash.Hash
//	PublicKey             *btcec.PublicKey
//	String                string
//	Array                 []Parameter
//	Void                  nil
type Parameter struct {
	Type  ParamType
	Value any
}

// NewParameter 创建参数并校验值，整数会被规范为 *big.Int。
func NewParameter(t ParamType, value any) (Parameter, error) {
	p := Parameter{Type: t, Value: value}
	if err := p.normalize(); err != nil {
		return Parameter{}, err
	}
	return p, nil
}

// Check 校验值的结构是否与参数类型匹配，不修改参数。
func (p Parameter) Check() error {
	p = p.clone()
	return p.normalize()
}

// Filled 返回槽位是否已填充。Void 槽位不需要值，始终视为已填充。
func (p *Parameter) Filled() bool {
	return p.Value != nil || p.Type == VoidType
}

func mismatch(t ParamType, v any) error {
	return contextError(ErrParameterMismatch,
		fmt.Sprintf("value of type %T does not match parameter type %s", v, t), nil)
}

// normalize 校验值与类型是否匹配，并把可接受的替代表示转换为规范表示。
// 值为 nil 的参数总是合法的。
func (p *Parameter) normalize() error {
	if p.Value == nil {
		if p.Type == InteropInterfaceType {
			return contextError(ErrUnsupportedParameter,
				"interop interface parameters cannot be carried by a context", nil)
		}
		if _, ok := paramTypeNames[p.Type]; !ok {
			return contextError(ErrParameterMismatch, p.Type.String(), nil)
		}
		return nil
	}

	switch p.Type {
	case SignatureType, ByteArrayType:
		if _, ok := p.Value.([]byte); !ok {
			return mismatch(p.Type, p.Value)
		}
	case BoolType:
		if _, ok := p.Value.(bool); !ok {
			return mismatch(p.Type, p.Value)
		}
	case IntegerType:
		switch v := p.Value.(type) {
		case *big.Int:
		case int:
			p.Value = big.NewInt(int64(v))
		case int64:
			p.Value = big.NewInt(v)
		default:
			return mismatch(p.Type, p.Value)
		}
	case Hash160Type:
		if _, ok := p.Value.(types.Uint160); !ok {
			return mismatch(p.Type, p.Value)
		}
	case Hash256Type:
		switch v := p.Value.(type) {
		case chainhash.Hash:
		case *chainhash.Hash:
			p.Value = *v
		default:
			return mismatch(p.Type, p.Value)
		}
	case PublicKeyType:
		if k, ok := p.Value.(*btcec.PublicKey); !ok || k == nil {
			return mismatch(p.Type, p.Value)
		}
	case StringType:
		if _, ok := p.Value.(string); !ok {
			return mismatch(p.Type, p.Value)
		}
	case ArrayType:
		items, ok := p.Value.([]Parameter)
		if !ok {
			return mismatch(p.Type, p.Value)
		}
		for i := range items {
			if err := items[i].normalize(); err != nil {
				return err
			}
		}
	case VoidType:
		return mismatch(p.Type, p.Value)
	case InteropInterfaceType:
		return contextError(ErrUnsupportedParameter,
			"interop interface parameters cannot be carried by a context", nil)
	default:
		return contextError(ErrParameterMismatch, p.Type.String(), nil)
	}
	return nil
}

// clone 返回参数的深拷贝。
func (p Parameter) clone() Parameter {
	switch v := p.Value.(type) {
	case []byte:
		p.Value = append([]byte(nil), v...)
	case *big.Int:
		p.Value = new(big.Int).Set(v)
	case []Parameter:
		items := make([]Parameter, len(v))
		for i := range v {
			items[i] = v[i].clone()
		}
		p.Value = items
	}
	return p
}

// Equal 判断两个参数的类型与值是否相同。
func (p Parameter) Equal(other Parameter) bool {
	if p.Type != other.Type {
		return false
	}
	if p.Value == nil || other.Value == nil {
		return p.Value == nil && other.Value == nil
	}
	switch v := p.Value.(type) {
	case []byte:
		o, ok := other.Value.([]byte)
		return ok && bytes.Equal(v, o)
	case *big.Int:
		o, ok := other.Value.(*big.Int)
		return ok && v.Cmp(o) == 0
	case *btcec.PublicKey:
		o, ok := other.Value.(*btcec.PublicKey)
		return ok && v.IsEqual(o)
	case []Parameter:
		o, ok := other.Value.([]Parameter)
		if !ok || len(o) != len(v) {
			return false
		}
		for i := range v {
			if !v[i].Equal(o[i]) {
				return false
			}
		}
		return true
	}
	return p.Value == other.Value
}

// emit 把参数推送到调用脚本中。
func (p *Parameter) emit(b *txscript.ScriptBuilder) error {
	switch v := p.Value.(type) {
	case nil:
		if p.Type == VoidType {
			return nil
		}
		return contextError(ErrIncompleteContext,
			fmt.Sprintf("%s parameter has no value", p.Type), nil)
	case []byte:
		b.AddData(v)
	case bool:
		b.AddBool(v)
	case *big.Int:
		b.AddBigInt(v)
	case types.Uint160:
		b.AddData(v[:])
	case chainhash.Hash:
		b.AddData(v[:])
	case *btcec.PublicKey:
		b.AddData(v.SerializeCompressed())
	case string:
		b.AddData([]byte(v))
	case []Parameter:
		for i := len(v) - 1; i >= 0; i-- {
			if err := v[i].emit(b); err != nil {
				return err
			}
		}
		b.AddInt64(int64(len(v)))
		b.AddOp(txscript.OP_PACK)
	default:
		return contextError(ErrUnsupportedParameter,
			fmt.Sprintf("cannot push %s parameter", p.Type), nil)
	}
	return nil
}

type parameterJSON struct {
	Type  ParamType       `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON 实现 json.Marshaler。
func (p Parameter) MarshalJSON() ([]byte, error) {
	aux := parameterJSON{Type: p.Type}
	if p.Value != nil {
		var v any
		switch val := p.Value.(type) {
		case []byte:
			v = hex.EncodeToString(val)
		case bool, string, types.Uint160, []Parameter:
			v = val
		case *big.Int:
			v = val.String()
		case chainhash.Hash:
			v = "0x" + val.String()
		case *btcec.PublicKey:
			v = hex.EncodeToString(val.SerializeCompressed())
		default:
			return nil, contextError(ErrUnsupportedParameter,
				fmt.Sprintf("cannot encode %s parameter", p.Type), nil)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		aux.Value = raw
	}
	return json.Marshal(aux)
}

// UnmarshalJSON 实现 json.Unmarshaler。
func (p *Parameter) UnmarshalJSON(data []byte) error {
	var aux parameterJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return contextError(ErrFormat, "parameter", err)
	}
	p.Type = aux.Type
	p.Value = nil
	if len(aux.Value) == 0 || string(aux.Value) == "null" {
		return p.normalize()
	}

	bad := func(err error) error {
		return contextError(ErrFormat, fmt.Sprintf("invalid %s value %s", aux.Type, aux.Value), err)
	}
	var s string
	switch aux.Type {
	case BoolType:
		var b bool
		if err := json.Unmarshal(aux.Value, &b); err != nil {
			return bad(err)
		}
		p.Value = b
		return nil
	case ArrayType:
		var items []Parameter
		if err := json.Unmarshal(aux.Value, &items); err != nil {
			return bad(err)
		}
		if items == nil {
			items = []Parameter{}
		}
		p.Value = items
		return nil
	case VoidType, InteropInterfaceType:
		return bad(nil)
	}

	if err := json.Unmarshal(aux.Value, &s); err != nil {
		return bad(err)
	}
	switch aux.Type {
	case SignatureType, ByteArrayType:
		b, err := hex.DecodeString(s)
		if err != nil {
			return bad(err)
		}
		p.Value = b
	case IntegerType:
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return bad(nil)
		}
		p.Value = n
	case Hash160Type:
		u, err := types.Uint160DecodeString(s)
		if err != nil {
			return bad(err)
		}
		p.Value = u
	case Hash256Type:
		h, err := chainhash.NewHashFromStr(strings.TrimPrefix(s, "0x"))
		if err != nil || len(strings.TrimPrefix(s, "0x")) != chainhash.MaxHashStringSize {
			return bad(err)
		}
		p.Value = *h
	case PublicKeyType:
		b, err := hex.DecodeString(s)
		if err != nil {
			return bad(err)
		}
		key, err := btcec.ParsePubKey(b)
		if err != nil {
			return bad(err)
		}
		p.Value = key
	case StringType:
		p.Value = s
	}
	if err := p.normalize(); err != nil {
		return bad(err)
	}
	return nil
}
