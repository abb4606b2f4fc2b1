/*
types 包定义了签名子系统在线上传输和持久化时使用的数据结构。

包括：

  - Uint160：脚本哈希，以反序十六进制加 0x 前缀显示
  - Witness：调用脚本与验证脚本组成的见证，带有 1024 字节的反序列化上限
  - Verifiable：需要见证的消息能力接口，以及按类型标签解码的注册表
  - Transaction、Header、Payload：三种内置的可验证消息
  - StorageKey：脚本哈希与不透明键拼接而成的存储键

所有变长字段都使用 wire 包的最小变长整数作为长度前缀，非最小编码在解码时被拒绝。
*/
package types
