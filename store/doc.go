/*
store 包提供签名会话的持久化：

  - Store 基于 badger，保存未完成的参数上下文文档以及已登记的合约；
  - Journal 基于 sqlite，记录已完成消息的见证，供之后查询。
*/
package store
