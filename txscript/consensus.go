// 包含与脚本大小限制相关的常量。

package txscript

const (
	// MaxScriptSize 是单个脚本允许的最大字节数。
	MaxScriptSize = 65536

	// MaxScriptElementSize 是单次数据推送允许的最大字节数。
	MaxScriptElementSize = 1024 * 1024

	// MaxPubKeysPerMultiSig 是多重签名脚本允许的最大公钥数量。
	MaxPubKeysPerMultiSig = 1024

	// PubKeyLength 是压缩公钥的长度。
	PubKeyLength = 33
)
