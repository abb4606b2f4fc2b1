package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcd/wire"
)

// WitnessScope 限定共同签名人见证的生效范围。
type WitnessScope byte

const (
	// Global 表示见证在整个交易中有效。
	Global WitnessScope = 0x00
	// CalledByEntry 表示见证只对入口脚本直接调用的合约有效。
	CalledByEntry WitnessScope = 0x01
	// CustomContracts 表示见证只对 AllowedContracts 中的合约有效。
	CustomContracts WitnessScope = 0x10
	// CustomGroups 表示见证只对 AllowedGroups 中的合约组有效。
	CustomGroups WitnessScope = 0x20
)

// MaxSubitems 是共同签名人列表及其允许列表的最大长度。
const MaxSubitems = 16

const groupKeyLength = 33

var scopeNames = []struct {
	scope WitnessScope
	name  string
}{
	{CalledByEntry, "CalledByEntry"},
	{CustomContracts, "CustomContracts"},
	{CustomGroups, "CustomGroups"},
}

// String 返回以逗号分隔的范围名称。
func (s WitnessScope) String() string {
	if s == Global {
		return "Global"
	}
	var names []string
	for _, n := range scopeNames {
		if s&n.scope != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ", ")
}

// ParseWitnessScope 解析 String 的输出。
func ParseWitnessScope(s string) (WitnessScope, error) {
	if strings.TrimSpace(s) == "Global" {
		return Global, nil
	}
	var scope WitnessScope
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		found := false
		for _, n := range scopeNames {
			if n.name == part {
				scope |= n.scope
				found = true
				break
			}
		}
		if !found {
			return 0, formatError(ErrFormat, fmt.Sprintf("unknown witness scope %q", part), nil)
		}
	}
	return scope, nil
}

func (s WitnessScope) valid() bool {
	return s&^(CalledByEntry|CustomContracts|CustomGroups) == 0
}

// Cosigner 是交易中除发送方之外需要签名的账户。
type Cosigner struct {
	Account          Uint160
	Scopes           WitnessScope
	AllowedContracts []Uint160
	AllowedGroups    [][]byte // 33 字节压缩公钥
}

// Size 返回共同签名人编码后的字节数。
func (c *Cosigner) Size() int {
	size := Uint160Size + 1
	if c.Scopes&CustomContracts != 0 {
		size += wire.VarIntSerializeSize(uint64(len(c.AllowedContracts))) +
			len(c.AllowedContracts)*Uint160Size
	}
	if c.Scopes&CustomGroups != 0 {
		size += wire.VarIntSerializeSize(uint64(len(c.AllowedGroups))) +
			len(c.AllowedGroups)*groupKeyLength
	}
	return size
}

// Encode 将共同签名人写入 w。
func (c *Cosigner) Encode(w io.Writer) error {
	if _, err := w.Write(c.Account[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(c.Scopes)}); err != nil {
		return err
	}
	if c.Scopes&CustomContracts != 0 {
		if err := wire.WriteVarInt(w, pver, uint64(len(c.AllowedContracts))); err != nil {
			return err
		}
		for _, h := range c.AllowedContracts {
			if _, err := w.Write(h[:]); err != nil {
				return err
			}
		}
	}
	if c.Scopes&CustomGroups != 0 {
		if err := wire.WriteVarInt(w, pver, uint64(len(c.AllowedGroups))); err != nil {
			return err
		}
		for _, g := range c.AllowedGroups {
			if _, err := w.Write(g); err != nil {
				return err
			}
		}
	}
	return nil
}

// Decode 从 r 读取共同签名人。
func (c *Cosigner) Decode(r io.Reader) error {
	account, err := readUint160(r)
	if err != nil {
		return err
	}
	var scope [1]byte
	if _, err := io.ReadFull(r, scope[:]); err != nil {
		return formatError(ErrFormat, "read witness scope", err)
	}
	c.Account = account
	c.Scopes = WitnessScope(scope[0])
	if !c.Scopes.valid() {
		return formatError(ErrFormat, fmt.Sprintf("invalid witness scope 0x%02x", scope[0]), nil)
	}

	c.AllowedContracts = nil
	if c.Scopes&CustomContracts != 0 {
		n, err := readCount(r, "allowed contracts")
		if err != nil {
			return err
		}
		c.AllowedContracts = make([]Uint160, n)
		for i := range c.AllowedContracts {
			if c.AllowedContracts[i], err = readUint160(r); err != nil {
				return err
			}
		}
	}

	c.AllowedGroups = nil
	if c.Scopes&CustomGroups != 0 {
		n, err := readCount(r, "allowed groups")
		if err != nil {
			return err
		}
		c.AllowedGroups = make([][]byte, n)
		for i := range c.AllowedGroups {
			g := make([]byte, groupKeyLength)
			if _, err := io.ReadFull(r, g); err != nil {
				return formatError(ErrFormat, "read group key", err)
			}
			c.AllowedGroups[i] = g
		}
	}
	return nil
}

// readCount 读取不超过 MaxSubitems 的列表长度。
func readCount(r io.Reader, field string) (int, error) {
	n, err := readVarInt(r)
	if err != nil {
		return 0, err
	}
	if n > MaxSubitems {
		return 0, formatError(ErrFormat, fmt.Sprintf("%d %s, max %d", n, field, MaxSubitems), nil)
	}
	return int(n), nil
}

type cosignerJSON struct {
	Account          Uint160   `json:"account"`
	Scopes           string    `json:"scopes"`
	AllowedContracts []Uint160 `json:"allowedContracts,omitempty"`
	AllowedGroups    []string  `json:"allowedGroups,omitempty"`
}

// MarshalJSON 实现 json.Marshaler。
func (c Cosigner) MarshalJSON() ([]byte, error) {
	aux := cosignerJSON{
		Account:          c.Account,
		Scopes:           c.Scopes.String(),
		AllowedContracts: c.AllowedContracts,
	}
	for _, g := range c.AllowedGroups {
		aux.AllowedGroups = append(aux.AllowedGroups, hex.EncodeToString(g))
	}
	return json.Marshal(aux)
}

// UnmarshalJSON 实现 json.Unmarshaler。
func (c *Cosigner) UnmarshalJSON(data []byte) error {
	var aux cosignerJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	scopes, err := ParseWitnessScope(aux.Scopes)
	if err != nil {
		return err
	}
	c.Account = aux.Account
	c.Scopes = scopes
	c.AllowedContracts = aux.AllowedContracts
	c.AllowedGroups = nil
	for _, s := range aux.AllowedGroups {
		g, err := hex.DecodeString(s)
		if err != nil || len(g) != groupKeyLength {
			return formatError(ErrFormat, fmt.Sprintf("invalid group key %q", s), err)
		}
		c.AllowedGroups = append(c.AllowedGroups, g)
	}
	return nil
}
