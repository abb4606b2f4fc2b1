// 包含包的文档说明，描述 txscript 包的目的和总体用途

/*
txscript 包实现了签名子系统所需的验证脚本工具。

该包不执行脚本，只负责脚本的构建、解析与识别：

  - 操作码定义以及反汇编 (DisasmString)
  - 脚本令牌化 (ScriptTokenizer)，用于逐个读取操作码及其推送的数据
  - 脚本构建器 (ScriptBuilder)，用于以编程方式构建调用脚本和验证脚本
  - 标准脚本识别：单签名脚本与 m-of-n 多重签名脚本

# 标准脚本

单签名验证脚本的形式为：

	OP_DATA_33 <33字节压缩公钥> OP_CHECKSIG

多重签名验证脚本的形式为：

	<m> <公钥1> <公钥2> ... <公钥n> <n> OP_CHECKMULTISIG

其中 m 与 n 在不超过 16 时使用小整数操作码，否则使用最小整数推送。

# 错误

该包返回的错误类型为 txscript.Error。
调用者可以通过 ErrorCode 字段以编程方式确定具体错误，也可以使用 IsErrorCode 便捷函数。
*/
package txscript
