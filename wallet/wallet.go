package wallet

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/sirupsen/logrus"

	"github.com/qinglongcn/bpfsign/contract"
	"github.com/qinglongcn/bpfsign/types"
)

// Wallet 是签名使用的钱包。
type Wallet interface {
	// GetAccount 返回脚本哈希对应的账户，不存在时返回 nil。
	GetAccount(hash types.Uint160) *Account

	// GetAccountByPublicKey 返回持有该公钥私钥的账户，不存在时返回 nil。
	GetAccountByPublicKey(pubKey *btcec.PublicKey) *Account

	// Accounts 返回所有账户。
	Accounts() []*Account
}

// MemoryWallet 是保存在内存中的钱包，可以被并发访问。
type MemoryWallet struct {
	mu       sync.RWMutex
	accounts map[types.Uint160]*Account
	order    []types.Uint160

	hd      *HDKey
	hdIndex uint32
}

// NewMemoryWallet 创建一个空钱包。hd 不为 nil 时 CreateAccount 从它派生新密钥。
func NewMemoryWallet(hd *HDKey) *MemoryWallet {
	return &MemoryWallet{
		accounts: make(map[types.Uint160]*Account),
		hd:       hd,
	}
}

// AddAccount 添加账户，脚本哈希已存在时返回 ErrDuplicateAccount。
func (w *MemoryWallet) AddAccount(a *Account) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hash := a.ScriptHash()
	if _, ok := w.accounts[hash]; ok {
		return walletError(ErrDuplicateAccount, fmt.Sprintf("account %s already exists", hash), nil)
	}
	w.accounts[hash] = a
	w.order = append(w.order, hash)
	return nil
}

// Import 导入密钥对，返回其单签名账户。
func (w *MemoryWallet) Import(key *KeyPair) (*Account, error) {
	a := NewAccount(key)
	if err := w.AddAccount(a); err != nil {
		return nil, err
	}
	return a, nil
}

// ImportWIF 导入 WIF 格式的私钥。
func (w *MemoryWallet) ImportWIF(wif string) (*Account, error) {
	key, err := KeyPairFromWIF(wif)
	if err != nil {
		return nil, err
	}
	return w.Import(key)
}

// CreateAccount 从分层确定性主密钥派生下一个强化子密钥并导入。
// 钱包没有主密钥时随机生成密钥。
func (w *MemoryWallet) CreateAccount() (*Account, error) {
	w.mu.Lock()
	var (
		key *KeyPair
		err error
	)
	if w.hd != nil {
		var child *HDKey
		child, err = w.hd.HardenedChild(w.hdIndex)
		if err == nil {
			key, err = child.KeyPair()
		}
		if err == nil {
			w.hdIndex++
		}
	} else {
		key, err = GenerateKeyPair()
	}
	w.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return w.Import(key)
}

// GetAccount 实现 Wallet。
func (w *MemoryWallet) GetAccount(hash types.Uint160) *Account {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.accounts[hash]
}

// GetAccountByPublicKey 实现 Wallet。
func (w *MemoryWallet) GetAccountByPublicKey(pubKey *btcec.PublicKey) *Account {
	w.mu.RLock()
	defer w.mu.RUnlock()

	target := pubKey.SerializeCompressed()
	for _, hash := range w.order {
		a := w.accounts[hash]
		if a.HasKey() && bytes.Equal(a.key.PublicKey().SerializeCompressed(), target) {
			return a
		}
	}
	return nil
}

// Accounts 实现 Wallet。
func (w *MemoryWallet) Accounts() []*Account {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*Account, 0, len(w.order))
	for _, hash := range w.order {
		out = append(out, w.accounts[hash])
	}
	return out
}

// Sign 用钱包中的密钥为上下文签名，返回是否添加了任何签名。
//
// 对每个需要授权且在钱包中的脚本哈希：多重签名合约使用钱包持有的每个成员密钥签名，
// 其他合约使用账户自己的密钥签名。
func Sign(w Wallet, ctx *contract.ParametersContext) (bool, error) {
	data := ctx.HashData()
	added := false

	sign := func(c *contract.Contract, key *KeyPair) error {
		sig, err := key.Sign(data)
		if err != nil {
			return err
		}
		ok, err := ctx.AddSignature(c, key.PublicKey(), sig)
		if err != nil {
			return err
		}
		added = added || ok
		return nil
	}

	for _, hash := range ctx.ScriptHashes() {
		account := w.GetAccount(hash)
		if account == nil {
			continue
		}

		if desc, ok := account.Contract.IsMultiSig(); ok {
			for _, raw := range desc.PublicKeys {
				pub, err := btcec.ParsePubKey(raw)
				if err != nil {
					logrus.Errorf("[Sign] 解析多重签名公钥失败:\t%v", err)
					continue
				}
				member := w.GetAccountByPublicKey(pub)
				if member == nil {
					continue
				}
				if err := sign(account.Contract, member.Key()); err != nil {
					return added, err
				}
			}
			continue
		}

		if !account.HasKey() {
			continue
		}
		if err := sign(account.Contract, account.Key()); err != nil {
			return added, err
		}
	}

	return added, nil
}
