/*
contract 包实现验证合约以及把部分签名汇总为见证的参数上下文。

一个 ParametersContext 对应一条待签名的消息。它在创建时记录消息需要授权的脚本哈希，
之后接受任意顺序、来自多方的参数与签名：

	ctx := contract.NewParametersContext(tx)
	ok, err := ctx.AddSignature(c, pubKey, sig)
	if ctx.Completed() {
		witnesses, err := ctx.GetWitnesses()
		...
	}

多重签名合约的签名按公钥记录，直到组装见证时才按公钥在脚本中的位置排序，
因此到达顺序不影响结果，多个独立产生的上下文也可以通过 Merge 合并。

上下文可以通过 JSON 在离线签名方之间交换，见 MarshalJSON 与 ParseParametersContext。
*/
package contract
