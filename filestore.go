// 签名上下文的文件交换
package bpfsign

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/spf13/afero"
)

// contextExt 是签名上下文文件的扩展名
const contextExt = ".json"

// FileStore 封装了文件存储的操作
type FileStore struct {
	Fs       afero.Fs
	BasePath string
}

// NewFileStore 创建一个新的FileStore实例
func NewFileStore(basePath string) (*FileStore, error) {
	return newFileStore(afero.NewOsFs(), basePath)
}

func newFileStore(fs afero.Fs, basePath string) (*FileStore, error) {
	if err := fs.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FileStore{Fs: fs, BasePath: basePath}, nil
}

// contextFile 返回消息哈希对应的文件名
func contextFile(hash chainhash.Hash) string {
	return hash.String() + contextExt
}

// ExportContext 把会话的签名上下文写入交换目录，返回写入的文件路径
func (fs *FileStore) ExportContext(pool *SessionPool, hash chainhash.Hash) (string, error) {
	doc, err := pool.Export(hash)
	if err != nil {
		return "", err
	}
	filePath := filepath.Join(fs.BasePath, contextFile(hash))
	if err := afero.WriteFile(fs.Fs, filePath, doc, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filePath, nil
}

// ImportContext 读取交换目录中的签名上下文文件并合并到会话池
func (fs *FileStore) ImportContext(pool *SessionPool, name string) (chainhash.Hash, bool, error) {
	doc, err := afero.ReadFile(fs.Fs, filepath.Join(fs.BasePath, filepath.Base(name)))
	if err != nil {
		return chainhash.Hash{}, false, fmt.Errorf("failed to read file: %w", err)
	}
	return pool.Merge(doc)
}

// RemoveContext 删除交换目录中的签名上下文文件
func (fs *FileStore) RemoveContext(name string) error {
	return fs.Fs.Remove(filepath.Join(fs.BasePath, filepath.Base(name)))
}

// ListContexts 列出交换目录中的签名上下文文件名
func (fs *FileStore) ListContexts() ([]string, error) {
	infos, err := afero.ReadDir(fs.Fs, fs.BasePath)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), contextExt) {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}
