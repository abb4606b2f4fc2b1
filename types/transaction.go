package types

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/qinglongcn/bpfsign/txscript"
)

// TransactionTag 是交易在交换格式中的类型标签。
const TransactionTag = "Transaction"

// Transaction 是由发送方和共同签名人授权的交易。
type Transaction struct {
	Version         uint8
	Nonce           uint32
	Sender          Uint160
	SystemFee       int64
	NetworkFee      int64
	ValidUntilBlock uint32
	Cosigners       []Cosigner
	Script          []byte

	witnesses []Witness
}

// TypeTag 实现 Verifiable。
func (tx *Transaction) TypeTag() string {
	return TransactionTag
}

// encodeUnsigned 写入不含见证的字段。
func (tx *Transaction) encodeUnsigned(w io.Writer) error {
	if err := writeLE(w, tx.Version); err != nil {
		return err
	}
	if err := writeLE(w, tx.Nonce); err != nil {
		return err
	}
	if _, err := w.Write(tx.Sender[:]); err != nil {
		return err
	}
	if err := writeLE(w, tx.SystemFee); err != nil {
		return err
	}
	if err := writeLE(w, tx.NetworkFee); err != nil {
		return err
	}
	if err := writeLE(w, tx.ValidUntilBlock); err != nil {
		return err
	}
	if err := wire.WriteVarInt(w, pver, uint64(len(tx.Cosigners))); err != nil {
		return err
	}
	for i := range tx.Cosigners {
		if err := tx.Cosigners[i].Encode(w); err != nil {
			return err
		}
	}
	return writeVarBytes(w, tx.Script)
}

// decodeUnsigned 读取不含见证的字段。
func (tx *Transaction) decodeUnsigned(r io.Reader) error {
	if err := readLE(r, &tx.Version); err != nil {
		return err
	}
	if tx.Version > 0 {
		return formatError(ErrFormat, fmt.Sprintf("unsupported transaction version %d", tx.Version), nil)
	}
	if err := readLE(r, &tx.Nonce); err != nil {
		return err
	}
	sender, err := readUint160(r)
	if err != nil {
		return err
	}
	tx.Sender = sender
	if err := readLE(r, &tx.SystemFee); err != nil {
		return err
	}
	if tx.SystemFee < 0 {
		return formatError(ErrFormat, "negative system fee", nil)
	}
	if err := readLE(r, &tx.NetworkFee); err != nil {
		return err
	}
	if tx.NetworkFee < 0 {
		return formatError(ErrFormat, "negative network fee", nil)
	}
	if err := readLE(r, &tx.ValidUntilBlock); err != nil {
		return err
	}

	n, err := readCount(r, "cosigners")
	if err != nil {
		return err
	}
	tx.Cosigners = make([]Cosigner, n)
	seen := make(map[Uint160]struct{}, n)
	for i := range tx.Cosigners {
		if err := tx.Cosigners[i].Decode(r); err != nil {
			return err
		}
		if _, ok := seen[tx.Cosigners[i].Account]; ok {
			return formatError(ErrFormat,
				fmt.Sprintf("duplicate cosigner %s", tx.Cosigners[i].Account), nil)
		}
		seen[tx.Cosigners[i].Account] = struct{}{}
	}

	script, err := readVarBytes(r, txscript.MaxScriptSize, "script")
	if err != nil {
		return err
	}
	if len(script) == 0 {
		return formatError(ErrFormat, "empty transaction script", nil)
	}
	tx.Script = script
	return nil
}

// GetHashData 实现 Verifiable。
func (tx *Transaction) GetHashData() []byte {
	var buf bytes.Buffer
	_ = tx.encodeUnsigned(&buf)
	return buf.Bytes()
}

// Hash 实现 Verifiable。
func (tx *Transaction) Hash() chainhash.Hash {
	return hashData(tx.GetHashData())
}

// ScriptHashesForVerifying 返回发送方以及所有共同签名人，去除重复。
func (tx *Transaction) ScriptHashesForVerifying() []Uint160 {
	hashes := make([]Uint160, 0, 1+len(tx.Cosigners))
	hashes = append(hashes, tx.Sender)
	for _, c := range tx.Cosigners {
		hashes = append(hashes, c.Account)
	}
	return DedupScriptHashes(hashes)
}

// Witnesses 实现 Verifiable。
func (tx *Transaction) Witnesses() []Witness {
	return tx.witnesses
}

// SetWitnesses 实现 Verifiable。
func (tx *Transaction) SetWitnesses(witnesses []Witness) error {
	if err := checkWitnessCount(tx, witnesses); err != nil {
		return err
	}
	tx.witnesses = witnesses
	return nil
}

// Size 返回交易完整编码后的字节数。
func (tx *Transaction) Size() int {
	size := 1 + 4 + Uint160Size + 8 + 8 + 4 +
		wire.VarIntSerializeSize(uint64(len(tx.Cosigners)))
	for i := range tx.Cosigners {
		size += tx.Cosigners[i].Size()
	}
	size += varBytesSize(len(tx.Script))
	size += wire.VarIntSerializeSize(uint64(len(tx.witnesses)))
	for i := range tx.witnesses {
		size += tx.witnesses[i].Size()
	}
	return size
}

// Serialize 写入包括见证在内的完整交易。
func (tx *Transaction) Serialize(w io.Writer) error {
	if err := tx.encodeUnsigned(w); err != nil {
		return err
	}
	return encodeWitnesses(w, tx.witnesses)
}

// Bytes 返回完整交易的编码。
func (tx *Transaction) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(tx.Size())
	_ = tx.Serialize(&buf)
	return buf.Bytes()
}

// Deserialize 读取包括见证在内的完整交易。
func (tx *Transaction) Deserialize(r io.Reader) error {
	if err := tx.decodeUnsigned(r); err != nil {
		return err
	}
	witnesses, err := decodeWitnesses(r, MaxSubitems+1)
	if err != nil {
		return err
	}
	tx.witnesses = witnesses
	return nil
}

// DecodeTransaction 解码一个完整交易，不允许有多余的字节。
func DecodeTransaction(b []byte) (*Transaction, error) {
	r := bytes.NewReader(b)
	tx := new(Transaction)
	if err := tx.Deserialize(r); err != nil {
		return nil, err
	}
	if err := expectEOF(r); err != nil {
		return nil, err
	}
	return tx, nil
}

func decodeUnsignedTransaction(data []byte) (Verifiable, error) {
	r := bytes.NewReader(data)
	tx := new(Transaction)
	if err := tx.decodeUnsigned(r); err != nil {
		return nil, err
	}
	if err := expectEOF(r); err != nil {
		return nil, err
	}
	return tx, nil
}
