package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/qinglongcn/bpfsign/types"
)

// AddressVersion 是地址的版本字节。
const AddressVersion = byte(0x17)

// ScriptHashToAddress 返回脚本哈希的 base58check 地址。
func ScriptHashToAddress(hash types.Uint160) string {
	return base58.CheckEncode(hash[:], AddressVersion)
}

// AddressToScriptHash 解析地址，返回其脚本哈希。
func AddressToScriptHash(address string) (types.Uint160, error) {
	payload, version, err := base58.CheckDecode(address)
	if err != nil {
		return types.Uint160{}, walletError(ErrInvalidAddress, fmt.Sprintf("address %q", address), err)
	}
	if version != AddressVersion {
		return types.Uint160{}, walletError(ErrInvalidAddress,
			fmt.Sprintf("address version 0x%02x, expected 0x%02x", version, AddressVersion), nil)
	}
	hash, err := types.Uint160FromBytes(payload)
	if err != nil {
		return types.Uint160{}, walletError(ErrInvalidAddress, fmt.Sprintf("address %q", address), err)
	}
	return hash, nil
}

// ValidateAddress 检查地址是否有效。
func ValidateAddress(address string) bool {
	_, err := AddressToScriptHash(address)
	return err == nil
}
