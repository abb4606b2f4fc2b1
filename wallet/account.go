package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/qinglongcn/bpfsign/contract"
	"github.com/qinglongcn/bpfsign/types"
)

// Account 是钱包中的一个账户：一个合约，以及可选的私钥。
type Account struct {
	Label    string
	Contract *contract.Contract

	key *KeyPair
}

// NewAccount 使用密钥对的单签名合约创建账户。
func NewAccount(key *KeyPair) *Account {
	return &Account{Contract: key.Contract(), key: key}
}

// NewMultiSigAccount 创建 m-of-n 多重签名账户，key 为钱包持有的成员密钥，可以为 nil。
func NewMultiSigAccount(m int, pubKeys []*btcec.PublicKey, key *KeyPair) (*Account, error) {
	c, err := contract.CreateMultiSigContract(m, pubKeys)
	if err != nil {
		return nil, err
	}
	return &Account{Contract: c, key: key}, nil
}

// ScriptHash 返回账户合约的脚本哈希。
func (a *Account) ScriptHash() types.Uint160 {
	return a.Contract.ScriptHash()
}

// Address 返回账户地址。
func (a *Account) Address() string {
	return ScriptHashToAddress(a.ScriptHash())
}

// HasKey 返回账户是否持有私钥。
func (a *Account) HasKey() bool {
	return a.key != nil
}

// Key 返回账户的密钥对，没有私钥时返回 nil。
func (a *Account) Key() *KeyPair {
	return a.key
}
