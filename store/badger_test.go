package store

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/bpfsign/contract"
	"github.com/qinglongcn/bpfsign/types"
)

func newTestStore(t *testing.T) *Store {
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// TestStoreContexts 测试上下文文档的保存、读取、遍历与删除。
func TestStoreContexts(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	h1 := chainhash.DoubleHashH([]byte("one"))
	h2 := chainhash.DoubleHashH([]byte("two"))

	_, err := s.GetContext(h1)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.PutContext(h1, []byte(`{"a":1}`)))
	require.NoError(t, s.PutContext(h2, []byte(`{"b":2}`)))
	require.NoError(t, s.PutContext(h1, []byte(`{"a":3}`)))

	doc, err := s.GetContext(h1)
	require.NoError(t, err)
	require.Equal(t, `{"a":3}`, string(doc))

	seen := make(map[chainhash.Hash]string)
	require.NoError(t, s.ForEachContext(func(hash chainhash.Hash, doc []byte) error {
		seen[hash] = string(doc)
		return nil
	}))
	require.Equal(t, map[chainhash.Hash]string{h1: `{"a":3}`, h2: `{"b":2}`}, seen)

	require.NoError(t, s.DeleteContext(h1))
	require.NoError(t, s.DeleteContext(h1))
	_, err = s.GetContext(h1)
	require.ErrorIs(t, err, ErrNotFound)
}

// TestStoreContracts 测试合约的登记与查找。
func TestStoreContracts(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, pub1 := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x01}, 32))
	_, pub2 := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x02}, 32))
	single := contract.CreateSignatureContract(pub1)
	multi, err := contract.CreateMultiSigContract(1, []*btcec.PublicKey{pub1, pub2})
	require.NoError(t, err)

	_, err = s.GetContract(single.ScriptHash())
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.PutContract(single))
	require.NoError(t, s.PutContract(multi))

	got, err := s.GetContract(multi.ScriptHash())
	require.NoError(t, err)
	require.Equal(t, multi.Script, got.Script)
	require.Equal(t, multi.ParameterList, got.ParameterList)

	all, err := s.Contracts()
	require.NoError(t, err)
	require.Len(t, all, 2)

	// 上下文与合约互不干扰。
	require.NoError(t, s.PutContext(chainhash.Hash{}, []byte("{}")))
	all, err = s.Contracts()
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = s.GetContract(types.Uint160{})
	require.ErrorIs(t, err, ErrNotFound)
}

// TestStoreOnDisk 测试磁盘存储重新打开后数据仍然存在。
func TestStoreOnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	h := chainhash.DoubleHashH([]byte("persist"))

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.PutContext(h, []byte("doc")))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	doc, err := s.GetContext(h)
	require.NoError(t, err)
	require.Equal(t, "doc", string(doc))
}
