package bpfsign

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/bpfsign/wallet"
)

// TestFileStoreExchange 测试离线节点通过交换文件为消息签名。
func TestFileStoreExchange(t *testing.T) {
	t.Parallel()

	fs, err := newFileStore(afero.NewMemMapFs(), "/exchange")
	require.NoError(t, err)

	key := testKeyPair(t, 0x01)
	offline := wallet.NewMemoryWallet(nil)
	_, err = offline.Import(key)
	require.NoError(t, err)

	online := newTestPool(t, nil)
	hash, err := online.Open(testTx(key.Contract().ScriptHash()))
	require.NoError(t, err)

	path, err := fs.ExportContext(online, hash)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/exchange", hash.String()+".json"), path)

	names, err := fs.ListContexts()
	require.NoError(t, err)
	require.Equal(t, []string{hash.String() + ".json"}, names)

	// 离线节点导入、签名并写回。
	signer := newTestPool(t, nil)
	got, changed, err := fs.ImportContext(signer, names[0])
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, hash, got)
	ok, err := signer.Sign(hash, offline)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = fs.ExportContext(signer, hash)
	require.NoError(t, err)

	_, changed, err = fs.ImportContext(online, names[0])
	require.NoError(t, err)
	require.True(t, changed)
	completed, err := online.IsCompleted(hash)
	require.NoError(t, err)
	require.True(t, completed)

	require.NoError(t, fs.RemoveContext(names[0]))
	names, err = fs.ListContexts()
	require.NoError(t, err)
	require.Empty(t, names)

	_, _, err = fs.ImportContext(online, "missing.json")
	require.Error(t, err)
}

// TestFileStoreIgnoresOtherFiles 测试列表只包含上下文文件。
func TestFileStoreIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	mem := afero.NewMemMapFs()
	fs, err := newFileStore(mem, "/exchange")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(mem, "/exchange/notes.txt", []byte("x"), 0644))
	require.NoError(t, mem.MkdirAll("/exchange/sub.json", 0755))
	require.NoError(t, afero.WriteFile(mem, "/exchange/b.json", []byte("{}"), 0644))
	require.NoError(t, afero.WriteFile(mem, "/exchange/a.json", []byte("{}"), 0644))

	names, err := fs.ListContexts()
	require.NoError(t, err)
	require.Equal(t, []string{"a.json", "b.json"}, names)
}
