package bpfsign

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/bpfsign/contract"
	"github.com/qinglongcn/bpfsign/store"
	"github.com/qinglongcn/bpfsign/txscript"
	"github.com/qinglongcn/bpfsign/types"
	"github.com/qinglongcn/bpfsign/wallet"
)

// newTestPool 返回使用内存数据库的会话池。
func newTestPool(t *testing.T, st *store.Store) *SessionPool {
	if st == nil {
		var err error
		st, err = store.OpenInMemory()
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
	}

	db, err := store.NewSqliteDB("", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	journal, err := store.NewJournal(db)
	require.NoError(t, err)

	return NewSessionPool(DefaultOptions(), st, journal)
}

func testKeyPair(t *testing.T, seed byte) *wallet.KeyPair {
	key, err := wallet.NewKeyPair(bytes.Repeat([]byte{seed}, 32))
	require.NoError(t, err)
	return key
}

// testTx 返回由给定脚本哈希授权的交易。
func testTx(sender types.Uint160) *types.Transaction {
	return &types.Transaction{Sender: sender, Script: []byte{txscript.OP_TRUE}, Nonce: 7}
}

// TestSessionPoolSingleSig 测试单签名消息从打开到生成见证的完整流程。
func TestSessionPoolSingleSig(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, nil)
	key := testKeyPair(t, 0x01)
	w := wallet.NewMemoryWallet(nil)
	_, err := w.Import(key)
	require.NoError(t, err)

	tx := testTx(key.Contract().ScriptHash())
	hash, err := pool.Open(tx)
	require.NoError(t, err)
	require.Equal(t, tx.Hash(), hash)

	again, err := pool.Open(tx)
	require.NoError(t, err)
	require.Equal(t, hash, again)
	require.Equal(t, []chainhash.Hash{hash}, pool.Hashes())

	completed, err := pool.IsCompleted(hash)
	require.NoError(t, err)
	require.False(t, completed)

	_, err = pool.Finalize(hash)
	require.True(t, contract.IsErrorCode(err, contract.ErrIncompleteContext))

	ok, err := pool.Sign(hash, w)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, hash, <-pool.Updated)

	completed, err = pool.IsCompleted(hash)
	require.NoError(t, err)
	require.True(t, completed)

	rec, err := pool.Finalize(hash)
	require.NoError(t, err)
	require.Equal(t, types.TransactionTag, rec.Type)
	require.Len(t, rec.Witnesses, 1)
	require.Equal(t, key.Contract().Script, rec.Witnesses[0].VerificationScript)
	require.Same(t, rec, <-pool.Completed)

	signed, err := types.DecodeTransaction(rec.Signed)
	require.NoError(t, err)
	require.Equal(t, hash, signed.Hash())
	require.Equal(t, rec.Witnesses, signed.Witnesses())

	require.Empty(t, pool.Hashes())
	_, err = pool.Export(hash)
	require.True(t, errors.Is(err, ErrSessionNotFound))

	stored, err := pool.journal.Get(hash)
	require.NoError(t, err)
	require.Equal(t, rec.Signed, stored.Signed)

	// 已完成的消息不能再次打开。
	_, err = pool.Open(tx)
	require.Error(t, err)
}

// TestSessionPoolMultiSig 测试两个节点通过交换上下文完成 2/3 多重签名。
func TestSessionPoolMultiSig(t *testing.T) {
	t.Parallel()

	keys := []*wallet.KeyPair{testKeyPair(t, 0x01), testKeyPair(t, 0x02), testKeyPair(t, 0x03)}
	pubs := []*btcec.PublicKey{keys[0].PublicKey(), keys[1].PublicKey(), keys[2].PublicKey()}

	wallets := make([]*wallet.MemoryWallet, 2)
	var ms *wallet.Account
	for i := range wallets {
		wallets[i] = wallet.NewMemoryWallet(nil)
		a, err := wallet.NewMultiSigAccount(2, pubs, keys[i])
		require.NoError(t, err)
		require.NoError(t, wallets[i].AddAccount(a))
		ms = a
	}

	tx := testTx(ms.ScriptHash())
	poolA := newTestPool(t, nil)
	poolB := newTestPool(t, nil)

	hash, err := poolA.Open(tx)
	require.NoError(t, err)
	ok, err := poolA.Sign(hash, wallets[0])
	require.NoError(t, err)
	require.True(t, ok)

	completed, err := poolA.IsCompleted(hash)
	require.NoError(t, err)
	require.False(t, completed)

	doc, err := poolA.Export(hash)
	require.NoError(t, err)

	// B 第一次收到上下文时创建会话。
	got, changed, err := poolB.Merge(doc)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, hash, got)

	_, changed, err = poolB.Merge(doc)
	require.NoError(t, err)
	require.False(t, changed)

	ok, err = poolB.Sign(hash, wallets[1])
	require.NoError(t, err)
	require.True(t, ok)

	doc, err = poolB.Export(hash)
	require.NoError(t, err)
	_, changed, err = poolA.Merge(doc)
	require.NoError(t, err)
	require.True(t, changed)

	completed, err = poolA.IsCompleted(hash)
	require.NoError(t, err)
	require.True(t, completed)

	rec, err := poolA.Finalize(hash)
	require.NoError(t, err)
	require.Len(t, rec.Witnesses, 1)
	require.Equal(t, ms.Contract.Script, rec.Witnesses[0].VerificationScript)
}

// TestSessionPoolAddSignature 测试直接添加签名。
func TestSessionPoolAddSignature(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, nil)
	key := testKeyPair(t, 0x01)
	c := key.Contract()
	tx := testTx(c.ScriptHash())

	_, err := pool.AddSignature(tx.Hash(), c, key.PublicKey(), make([]byte, 64))
	require.True(t, errors.Is(err, ErrSessionNotFound))

	hash, err := pool.Open(tx)
	require.NoError(t, err)

	wrong, err := key.Sign([]byte("other data"))
	require.NoError(t, err)
	_, err = pool.AddSignature(hash, c, key.PublicKey(), wrong)
	require.True(t, errors.Is(err, ErrInvalidSignature))

	// 上下文接受任意长度的签名，会话层只接受能通过验证的签名。
	_, err = pool.AddSignature(hash, c, key.PublicKey(), []byte{0x01})
	require.True(t, errors.Is(err, ErrInvalidSignature))
	_, err = pool.Add(hash, c, 0, contract.Parameter{Type: contract.SignatureType, Value: []byte{0x01}})
	require.True(t, errors.Is(err, ErrInvalidSignature))

	other := testKeyPair(t, 0x02)
	sig, err := other.Sign(tx.GetHashData())
	require.NoError(t, err)
	ok, err := pool.AddSignature(hash, c, other.PublicKey(), sig)
	require.NoError(t, err)
	require.False(t, ok)

	sig, err = key.Sign(tx.GetHashData())
	require.NoError(t, err)
	ok, err = pool.AddSignature(hash, c, key.PublicKey(), sig)
	require.NoError(t, err)
	require.True(t, ok)

	err = pool.View(hash, func(ctx *contract.ParametersContext) error {
		p := ctx.GetParameter(c.ScriptHash(), 0)
		require.NotNil(t, p)
		require.Equal(t, sig, p.Value)
		return nil
	})
	require.NoError(t, err)
}

// TestSessionPoolAdd 测试为自定义合约填充参数。
func TestSessionPoolAdd(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, nil)
	c := contract.NewContract([]contract.ParamType{contract.IntegerType}, []byte{txscript.OP_TRUE})
	hash, err := pool.Open(testTx(c.ScriptHash()))
	require.NoError(t, err)

	p, err := contract.NewParameter(contract.IntegerType, int64(5))
	require.NoError(t, err)
	ok, err := pool.Add(hash, c, 0, p)
	require.NoError(t, err)
	require.True(t, ok)

	completed, err := pool.IsCompleted(hash)
	require.NoError(t, err)
	require.True(t, completed)

	_, err = pool.Add(hash, c, 1, p)
	require.True(t, contract.IsErrorCode(err, contract.ErrInvalidIndex))
}

// noHashes 包装一个消息，使其不声明任何脚本哈希。
type noHashes struct {
	types.Verifiable
}

func (noHashes) ScriptHashesForVerifying() []types.Uint160 {
	return nil
}

// TestSessionPoolOpenNoRequirement 测试不需要授权的消息不能打开会话。
func TestSessionPoolOpenNoRequirement(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, nil)
	_, err := pool.Open(noHashes{&types.Payload{}})
	require.True(t, contract.IsErrorCode(err, contract.ErrNoRequirement))
	require.Empty(t, pool.Hashes())
}

// TestSessionPoolMergeForged 测试合并包含伪造签名的上下文。
func TestSessionPoolMergeForged(t *testing.T) {
	t.Parallel()

	key := testKeyPair(t, 0x01)
	c := key.Contract()
	tx := testTx(c.ScriptHash())

	ctx := contract.NewParametersContext(tx)
	ok, err := ctx.AddSignature(c, key.PublicKey(), bytes.Repeat([]byte{0x01}, 64))
	require.NoError(t, err)
	require.True(t, ok)
	doc, err := ctx.MarshalJSON()
	require.NoError(t, err)

	pool := newTestPool(t, nil)
	_, _, err = pool.Merge(doc)
	require.True(t, errors.Is(err, ErrInvalidSignature))
	require.Empty(t, pool.Hashes())

	keys := []*wallet.KeyPair{key, testKeyPair(t, 0x02)}
	ms, err := contract.CreateMultiSigContract(1, []*btcec.PublicKey{keys[0].PublicKey(), keys[1].PublicKey()})
	require.NoError(t, err)
	ctx = contract.NewParametersContext(testTx(ms.ScriptHash()))
	ok, err = ctx.AddSignature(ms, keys[1].PublicKey(), bytes.Repeat([]byte{0x02}, 64))
	require.NoError(t, err)
	require.True(t, ok)
	doc, err = ctx.MarshalJSON()
	require.NoError(t, err)

	_, _, err = pool.Merge(doc)
	require.True(t, errors.Is(err, ErrInvalidSignature))

	_, _, err = pool.Merge([]byte("{"))
	require.True(t, contract.IsErrorCode(err, contract.ErrFormat))
}

// TestSessionPoolRestore 测试从存储恢复未完成的会话。
func TestSessionPoolRestore(t *testing.T) {
	t.Parallel()

	st, err := store.OpenInMemory()
	require.NoError(t, err)
	defer st.Close()

	keys := []*wallet.KeyPair{testKeyPair(t, 0x01), testKeyPair(t, 0x02)}
	ms, err := contract.CreateMultiSigContract(2, []*btcec.PublicKey{keys[0].PublicKey(), keys[1].PublicKey()})
	require.NoError(t, err)

	pool := newTestPool(t, st)
	hash, err := pool.Open(testTx(ms.ScriptHash()))
	require.NoError(t, err)
	sig, err := keys[0].Sign(pool.sessions[hash].Context.HashData())
	require.NoError(t, err)
	ok, err := pool.AddSignature(hash, ms, keys[0].PublicKey(), sig)
	require.NoError(t, err)
	require.True(t, ok)

	// 无法解析的文档在恢复时被删除。
	broken := chainhash.DoubleHashH([]byte("broken"))
	require.NoError(t, st.PutContext(broken, []byte("{}")))

	restored := newTestPool(t, st)
	n, err := restored.Restore()
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []chainhash.Hash{hash}, restored.Hashes())

	err = restored.View(hash, func(ctx *contract.ParametersContext) error {
		require.Len(t, ctx.GetSignatures(ms.ScriptHash()), 1)
		require.False(t, ctx.Completed())
		return nil
	})
	require.NoError(t, err)

	_, err = st.GetContext(broken)
	require.True(t, errors.Is(err, store.ErrNotFound))
}

// TestSessionPoolExpire 测试过期会话的清理。
func TestSessionPoolExpire(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, nil)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pool.now = func() time.Time { return start }
	pool.opt.SessionTTL = time.Hour

	key := testKeyPair(t, 0x01)
	hash, err := pool.Open(testTx(key.Contract().ScriptHash()))
	require.NoError(t, err)

	require.Empty(t, pool.Expire(start.Add(30*time.Minute)))
	require.Equal(t, []chainhash.Hash{hash}, pool.Expire(start.Add(2*time.Hour)))
	require.Empty(t, pool.Hashes())

	_, err = pool.store.GetContext(hash)
	require.True(t, errors.Is(err, store.ErrNotFound))

	pool.opt.SessionTTL = 0
	_, err = pool.Open(testTx(testKeyPair(t, 0x02).Contract().ScriptHash()))
	require.NoError(t, err)
	require.Empty(t, pool.Expire(start.Add(1000*time.Hour)))
}

// TestSessionPoolRestoreKeepsCreatedAt 测试恢复的会话保留原创建时间。
func TestSessionPoolRestoreKeepsCreatedAt(t *testing.T) {
	t.Parallel()

	st, err := store.OpenInMemory()
	require.NoError(t, err)
	defer st.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pool := newTestPool(t, st)
	pool.now = func() time.Time { return start }
	hash, err := pool.Open(testTx(testKeyPair(t, 0x01).Contract().ScriptHash()))
	require.NoError(t, err)

	later := start.Add(2 * time.Hour)
	restored := newTestPool(t, st)
	restored.now = func() time.Time { return later }
	restored.opt.SessionTTL = time.Hour
	n, err := restored.Restore()
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.True(t, restored.sessions[hash].CreatedAt.Equal(start))

	require.Equal(t, []chainhash.Hash{hash}, restored.Expire(later))
	require.Empty(t, restored.Hashes())
}

// TestSessionPoolFinalizeRecordFails 测试记录失败时消息和会话保持不变。
func TestSessionPoolFinalizeRecordFails(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, nil)
	key := testKeyPair(t, 0x01)
	c := key.Contract()
	tx := testTx(c.ScriptHash())
	hash, err := pool.Open(tx)
	require.NoError(t, err)

	sig, err := key.Sign(pool.sessions[hash].Context.HashData())
	require.NoError(t, err)
	ok, err := pool.AddSignature(hash, c, key.PublicKey(), sig)
	require.NoError(t, err)
	require.True(t, ok)

	// 日志中已有同一哈希的记录，写入会违反唯一约束。
	require.NoError(t, pool.journal.Record(&store.WitnessRecord{Hash: hash, Type: tx.TypeTag()}))

	_, err = pool.Finalize(hash)
	require.Error(t, err)
	require.Empty(t, tx.Witnesses())
	require.Equal(t, []chainhash.Hash{hash}, pool.Hashes())

	_, err = pool.store.GetContext(hash)
	require.NoError(t, err)
}

// TestSessionPoolRegisterContract 测试合约登记。
func TestSessionPoolRegisterContract(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, nil)
	c := testKeyPair(t, 0x01).Contract()
	require.NoError(t, pool.RegisterContract(c))

	got, err := pool.Contract(c.ScriptHash())
	require.NoError(t, err)
	require.Equal(t, c.Script, got.Script)

	bad := contract.NewContract(nil, c.Script)
	require.Error(t, pool.RegisterContract(bad))
}
