package contract

import (
	"encoding/json"
	"fmt"
)

// ParamType 是验证参数的类型。
type ParamType byte

// 参数类型的取值。
const (
	SignatureType        ParamType = 0x00
	BoolType             ParamType = 0x01
	IntegerType          ParamType = 0x02
	Hash160Type          ParamType = 0x03
	Hash256Type          ParamType = 0x04
	ByteArrayType        ParamType = 0x05
	PublicKeyType        ParamType = 0x06
	StringType           ParamType = 0x07
	ArrayType            ParamType = 0x10
	InteropInterfaceType ParamType = 0xf0
	VoidType             ParamType = 0xff
)

var paramTypeNames = map[ParamType]string{
	SignatureType:        "Signature",
	BoolType:             "Boolean",
	IntegerType:          "Integer",
	Hash160Type:          "Hash160",
	Hash256Type:          "Hash256",
	ByteArrayType:        "ByteArray",
	PublicKeyType:        "PublicKey",
	StringType:           "String",
	ArrayType:            "Array",
	InteropInterfaceType: "InteropInterface",
	VoidType:             "Void",
}

// String 返回参数类型的名称。
func (t ParamType) String() string {
	if s, ok := paramTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ParamType (0x%02x)", byte(t))
}

// ParseParamType 解析参数类型名称。
func ParseParamType(s string) (ParamType, error) {
	for t, name := range paramTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, contextError(ErrFormat, fmt.Sprintf("unknown parameter type %q", s), nil)
}

// MarshalJSON 实现 json.Marshaler。
func (t ParamType) MarshalJSON() ([]byte, error) {
	if _, ok := paramTypeNames[t]; !ok {
		return nil, contextError(ErrFormat, t.String(), nil)
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON 实现 json.Unmarshaler。
func (t *ParamType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return contextError(ErrFormat, "parameter type", err)
	}
	v, err := ParseParamType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
