/*
wallet 包提供签名所需的密钥管理：secp256k1 密钥对、WIF 导入导出、
分层确定性密钥派生、账户与地址，以及用钱包中的密钥为参数上下文签名。

签名格式为 64 字节的 r 与 s 拼接，签名数据为消息签名数据的 SHA-256。
*/
package wallet
