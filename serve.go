package bpfsign

import (
	"errors"
	"path/filepath"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/sirupsen/logrus"

	"github.com/qinglongcn/bpfsign/contract"
	"github.com/qinglongcn/bpfsign/store"
	"github.com/qinglongcn/bpfsign/types"
)

// Pool 返回签名会话池
func (bs *BS) Pool() *SessionPool {
	return bs.pool
}

// Files 返回离线交换文件存储
func (bs *BS) Files() *FileStore {
	return bs.files
}

// Submit 为消息打开签名会话，并用本地钱包签名
func (bs *BS) Submit(v types.Verifiable) (chainhash.Hash, error) {
	if v == nil {
		return chainhash.Hash{}, errors.New("v must not be nil")
	}

	hash, err := bs.pool.Open(v)
	if err != nil {
		logrus.Errorf("[Submit] 打开签名会话失败:\t%v", err)
		return hash, err
	}
	if bs.wallet == nil {
		return hash, nil
	}
	if _, err := bs.pool.Sign(hash, bs.wallet); err != nil {
		logrus.Errorf("[Submit] 签名失败:\t%v", err)
		return hash, err
	}
	return hash, nil
}

// TryFinalize 会话已完成时生成见证，未完成时返回 nil
func (bs *BS) TryFinalize(hash chainhash.Hash) (*store.WitnessRecord, error) {
	completed, err := bs.pool.IsCompleted(hash)
	if err != nil || !completed {
		return nil, err
	}
	return bs.pool.Finalize(hash)
}

// Export 把会话的签名上下文写入交换目录
func (bs *BS) Export(hash chainhash.Hash) (string, error) {
	return bs.files.ExportContext(bs.pool, hash)
}

// Import 合并交换目录中的签名上下文文件，并用本地钱包补充签名
func (bs *BS) Import(name string) (chainhash.Hash, error) {
	hash, _, err := bs.files.ImportContext(bs.pool, filepath.Base(name))
	if err != nil {
		logrus.Errorf("[Import] 导入签名上下文失败:\t%v", err)
		return hash, err
	}
	if bs.wallet != nil {
		if _, err := bs.pool.Sign(hash, bs.wallet); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return hash, err
		}
	}
	return hash, nil
}

// Witness 返回已完成消息的见证记录
func (bs *BS) Witness(hash chainhash.Hash) (*store.WitnessRecord, error) {
	return bs.journal.Get(hash)
}

// RegisterContract 登记合约
func (bs *BS) RegisterContract(c *contract.Contract) error {
	return bs.pool.RegisterContract(c)
}
