package types

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// PayloadTag 是共识消息在交换格式中的类型标签。
const PayloadTag = "ConsensusPayload"

// MaxPayloadDataSize 是共识消息携带数据的最大字节数。
const MaxPayloadDataSize = 1024 * 1024

// Payload 是验证节点之间交换的共识消息，由发送验证节点授权。
type Payload struct {
	Version        uint32
	PrevHash       chainhash.Hash
	BlockIndex     uint32
	ValidatorIndex uint16
	Data           []byte
	Sender         Uint160
	Witness        Witness
}

// TypeTag 实现 Verifiable。
func (p *Payload) TypeTag() string {
	return PayloadTag
}

func (p *Payload) encodeUnsigned(w io.Writer) error {
	if err := writeLE(w, p.Version); err != nil {
		return err
	}
	if _, err := w.Write(p.PrevHash[:]); err != nil {
		return err
	}
	if err := writeLE(w, p.BlockIndex); err != nil {
		return err
	}
	if err := writeLE(w, p.ValidatorIndex); err != nil {
		return err
	}
	if err := writeVarBytes(w, p.Data); err != nil {
		return err
	}
	_, err := w.Write(p.Sender[:])
	return err
}

func (p *Payload) decodeUnsigned(r io.Reader) error {
	if err := readLE(r, &p.Version); err != nil {
		return err
	}
	var err error
	if p.PrevHash, err = readHash(r); err != nil {
		return err
	}
	if err := readLE(r, &p.BlockIndex); err != nil {
		return err
	}
	if err := readLE(r, &p.ValidatorIndex); err != nil {
		return err
	}
	if p.Data, err = readVarBytes(r, MaxPayloadDataSize, "payload data"); err != nil {
		return err
	}
	p.Sender, err = readUint160(r)
	return err
}

// GetHashData 实现 Verifiable。
func (p *Payload) GetHashData() []byte {
	var buf bytes.Buffer
	_ = p.encodeUnsigned(&buf)
	return buf.Bytes()
}

// Hash 实现 Verifiable。
func (p *Payload) Hash() chainhash.Hash {
	return hashData(p.GetHashData())
}

// ScriptHashesForVerifying 返回发送验证节点的脚本哈希。
func (p *Payload) ScriptHashesForVerifying() []Uint160 {
	return []Uint160{p.Sender}
}

// Witnesses 实现 Verifiable。
func (p *Payload) Witnesses() []Witness {
	return []Witness{p.Witness}
}

// SetWitnesses 实现 Verifiable。
func (p *Payload) SetWitnesses(witnesses []Witness) error {
	if err := checkWitnessCount(p, witnesses); err != nil {
		return err
	}
	p.Witness = witnesses[0]
	return nil
}

// Serialize 写入共识消息，见证前带有固定数量 1。
func (p *Payload) Serialize(w io.Writer) error {
	if err := p.encodeUnsigned(w); err != nil {
		return err
	}
	if _, err := w.Write([]byte{1}); err != nil {
		return err
	}
	return p.Witness.Encode(w)
}

// Bytes 返回完整共识消息的编码。
func (p *Payload) Bytes() []byte {
	var buf bytes.Buffer
	_ = p.Serialize(&buf)
	return buf.Bytes()
}

// Deserialize 读取完整共识消息。
func (p *Payload) Deserialize(r io.Reader) error {
	if err := p.decodeUnsigned(r); err != nil {
		return err
	}
	var marker [1]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return formatError(ErrFormat, "read witness count", err)
	}
	if marker[0] != 1 {
		return formatError(ErrFormat, fmt.Sprintf("payload witness count %d, want 1", marker[0]), nil)
	}
	return p.Witness.Decode(r)
}

// DecodePayload 解码一个完整共识消息，不允许有多余的字节。
func DecodePayload(b []byte) (*Payload, error) {
	r := bytes.NewReader(b)
	p := new(Payload)
	if err := p.Deserialize(r); err != nil {
		return nil, err
	}
	if err := expectEOF(r); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeUnsignedPayload(data []byte) (Verifiable, error) {
	r := bytes.NewReader(data)
	p := new(Payload)
	if err := p.decodeUnsigned(r); err != nil {
		return nil, err
	}
	if err := expectEOF(r); err != nil {
		return nil, err
	}
	return p, nil
}
