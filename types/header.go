package types

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// HeaderTag 是区块头在交换格式中的类型标签。
const HeaderTag = "Header"

// headerUnsignedSize 是区块头不含见证部分的字节数。
const headerUnsignedSize = 4 + chainhash.HashSize*2 + 8 + 4 + Uint160Size

// Header 是区块头，由下一轮共识节点的多重签名地址授权。
type Header struct {
	Version       uint32
	PrevHash      chainhash.Hash
	MerkleRoot    chainhash.Hash
	Timestamp     uint64
	Index         uint32
	NextConsensus Uint160
	Witness       Witness
}

// TypeTag 实现 Verifiable。
func (h *Header) TypeTag() string {
	return HeaderTag
}

func (h *Header) encodeUnsigned(w io.Writer) error {
	if err := writeLE(w, h.Version); err != nil {
		return err
	}
	if _, err := w.Write(h.PrevHash[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return err
	}
	if err := writeLE(w, h.Timestamp); err != nil {
		return err
	}
	if err := writeLE(w, h.Index); err != nil {
		return err
	}
	_, err := w.Write(h.NextConsensus[:])
	return err
}

func (h *Header) decodeUnsigned(r io.Reader) error {
	if err := readLE(r, &h.Version); err != nil {
		return err
	}
	var err error
	if h.PrevHash, err = readHash(r); err != nil {
		return err
	}
	if h.MerkleRoot, err = readHash(r); err != nil {
		return err
	}
	if err := readLE(r, &h.Timestamp); err != nil {
		return err
	}
	if err := readLE(r, &h.Index); err != nil {
		return err
	}
	h.NextConsensus, err = readUint160(r)
	return err
}

// GetHashData 实现 Verifiable。
func (h *Header) GetHashData() []byte {
	var buf bytes.Buffer
	buf.Grow(headerUnsignedSize)
	_ = h.encodeUnsigned(&buf)
	return buf.Bytes()
}

// Hash 实现 Verifiable。
func (h *Header) Hash() chainhash.Hash {
	return hashData(h.GetHashData())
}

// ScriptHashesForVerifying 返回 NextConsensus。
func (h *Header) ScriptHashesForVerifying() []Uint160 {
	return []Uint160{h.NextConsensus}
}

// Witnesses 实现 Verifiable。
func (h *Header) Witnesses() []Witness {
	return []Witness{h.Witness}
}

// SetWitnesses 实现 Verifiable。
func (h *Header) SetWitnesses(witnesses []Witness) error {
	if err := checkWitnessCount(h, witnesses); err != nil {
		return err
	}
	h.Witness = witnesses[0]
	return nil
}

// Size 返回区块头完整编码后的字节数。
func (h *Header) Size() int {
	return headerUnsignedSize + 1 + h.Witness.Size() + 1
}

// Serialize 写入区块头：不含见证的部分，固定的见证数量 1，见证，以及交易数量 0。
func (h *Header) Serialize(w io.Writer) error {
	if err := h.encodeUnsigned(w); err != nil {
		return err
	}
	if _, err := w.Write([]byte{1}); err != nil {
		return err
	}
	if err := h.Witness.Encode(w); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}

// Bytes 返回完整区块头的编码。
func (h *Header) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(h.Size())
	_ = h.Serialize(&buf)
	return buf.Bytes()
}

// Deserialize 读取完整区块头。
func (h *Header) Deserialize(r io.Reader) error {
	if err := h.decodeUnsigned(r); err != nil {
		return err
	}
	var marker [1]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return formatError(ErrFormat, "read witness count", err)
	}
	if marker[0] != 1 {
		return formatError(ErrFormat, fmt.Sprintf("header witness count %d, want 1", marker[0]), nil)
	}
	if err := h.Witness.Decode(r); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return formatError(ErrFormat, "read transaction count", err)
	}
	if marker[0] != 0 {
		return formatError(ErrFormat, fmt.Sprintf("header transaction count %d, want 0", marker[0]), nil)
	}
	return nil
}

// DecodeHeader 解码一个完整区块头，不允许有多余的字节。
func DecodeHeader(b []byte) (*Header, error) {
	r := bytes.NewReader(b)
	h := new(Header)
	if err := h.Deserialize(r); err != nil {
		return nil, err
	}
	if err := expectEOF(r); err != nil {
		return nil, err
	}
	return h, nil
}

func decodeUnsignedHeader(data []byte) (Verifiable, error) {
	r := bytes.NewReader(data)
	h := new(Header)
	if err := h.decodeUnsigned(r); err != nil {
		return nil, err
	}
	if err := expectEOF(r); err != nil {
		return nil, err
	}
	return h, nil
}
