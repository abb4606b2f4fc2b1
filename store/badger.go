package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/qinglongcn/bpfsign/contract"
	"github.com/qinglongcn/bpfsign/types"
)

// 键前缀。
const (
	prefixContext  = byte(0x01) // 消息哈希 -> 参数上下文 JSON
	prefixContract = byte(0x02) // 存储键 -> 合约
)

// ErrNotFound 表示请求的记录不存在。
var ErrNotFound = errors.New("record not found")

// Store 是基于 badger 的上下文与合约存储。
type Store struct {
	db *badger.DB
}

// Open 打开 path 目录下的存储。
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录: %w", err)
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := openDB(path, opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenInMemory 打开一个不落盘的存储。
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close 关闭存储。
func (s *Store) Close() error {
	return s.db.Close()
}

func contextKey(hash chainhash.Hash) []byte {
	return append([]byte{prefixContext}, hash[:]...)
}

func contractKey(scriptHash types.Uint160) []byte {
	key := types.StorageKey{ScriptHash: scriptHash}
	return append([]byte{prefixContract}, key.Bytes()...)
}

// PutContext 保存消息哈希对应的上下文文档。
func (s *Store) PutContext(hash chainhash.Hash, doc []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(contextKey(hash), doc)
	})
}

// GetContext 返回消息哈希对应的上下文文档，不存在时返回 ErrNotFound。
func (s *Store) GetContext(hash chainhash.Hash) ([]byte, error) {
	var doc []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(contextKey(hash))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}
		doc, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteContext 删除消息哈希对应的上下文文档，不存在时不报错。
func (s *Store) DeleteContext(hash chainhash.Hash) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(contextKey(hash))
	})
}

// ForEachContext 按消息哈希顺序遍历所有上下文文档，fn 返回错误时停止遍历。
func (s *Store) ForEachContext(fn func(hash chainhash.Hash, doc []byte) error) error {
	return s.forEach(prefixContext, func(key, value []byte) error {
		hash, err := chainhash.NewHash(key)
		if err != nil {
			return err
		}
		return fn(*hash, value)
	})
}

// PutContract 登记合约，同一脚本哈希的合约会被覆盖。
func (s *Store) PutContract(c *contract.Contract) error {
	value, err := encodeContract(c)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(contractKey(c.ScriptHash()), value)
	})
}

// GetContract 返回脚本哈希对应的合约，不存在时返回 ErrNotFound。
func (s *Store) GetContract(scriptHash types.Uint160) (*contract.Contract, error) {
	var c *contract.Contract
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(contractKey(scriptHash))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			c, err = decodeContract(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	if c.ScriptHash() != scriptHash {
		return nil, fmt.Errorf("合约 %s 的脚本哈希不一致", scriptHash)
	}
	return c, nil
}

// Contracts 返回所有已登记的合约。
func (s *Store) Contracts() ([]*contract.Contract, error) {
	var out []*contract.Contract
	err := s.forEach(prefixContract, func(_, value []byte) error {
		c, err := decodeContract(value)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// openDB 打开数据库，如果因为存在 LOCK 文件打开失败，执行 retry 确保打开
func openDB(path string, opts badger.Options) (*badger.DB, error) {
	db, err := badger.Open(opts)
	if err != nil && strings.Contains(err.Error(), "LOCK") {
		db, err = retry(path, opts)
		if err != nil {
			return nil, fmt.Errorf("无法解锁数据库: %w", err)
		}
		return db, nil
	} else if err != nil {
		return nil, err
	}
	return db, nil
}

// retry 删除 lock 文件，并再次尝试打开数据库
func retry(path string, opts badger.Options) (*badger.DB, error) {
	lockPath := filepath.Join(path, "LOCK")

	// 检查锁文件是否可以安全删除
	if err := checkLock(lockPath); err != nil {
		return nil, err
	}

	if err := os.Remove(lockPath); err != nil {
		return nil, fmt.Errorf("移除 LOCK: %w", err)
	}

	var db *badger.DB
	var err error
	for i := 0; i < 3; i++ {
		db, err = badger.Open(opts)
		if err == nil {
			return db, nil
		}
		logrus.Errorf("[retry] 打开数据库失败，%d 秒后重试", i+1)
		time.Sleep(time.Duration(i+1) * time.Second)
	}

	return nil, fmt.Errorf("打开数据库失败: %w", err)
}

// checkLock 检查锁文件是否可以安全删除
func checkLock(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开 LOCK 文件失败: %w", err)
	}
	defer file.Close()

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return fmt.Errorf("数据库正被其他进程使用: %w", err)
	}
	defer syscall.Flock(int(file.Fd()), syscall.LOCK_UN)

	return nil
}
