// 实现了脚本整数的编码：最小长度的小端序二进制补码。

package txscript

import "math/big"

// EncodeInt 返回整数的最小小端序二进制补码表示。零编码为空字节切片。
func EncodeInt(n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		return []byte{}
	case 1:
		be := n.Bytes()
		out := make([]byte, len(be), len(be)+1)
		for i, b := range be {
			out[len(be)-1-i] = b
		}
		// 最高位被占用时追加符号字节
		if out[len(out)-1]&0x80 != 0 {
			out = append(out, 0x00)
		}
		return out
	}

	// 负数：对 |n|-1 按位取反
	m := new(big.Int).Neg(n)
	m.Sub(m, big.NewInt(1))
	be := m.Bytes()
	out := make([]byte, len(be), len(be)+1)
	for i, b := range be {
		out[len(be)-1-i] = ^b
	}
	if len(out) == 0 || out[len(out)-1]&0x80 == 0 {
		out = append(out, 0xff)
	}
	return out
}

// DecodeInt 将小端序二进制补码字节解析为整数。
func DecodeInt(data []byte) *big.Int {
	n := new(big.Int)
	if len(data) == 0 {
		return n
	}

	be := make([]byte, len(data))
	for i, b := range data {
		be[len(data)-1-i] = b
	}
	n.SetBytes(be)
	if data[len(data)-1]&0x80 != 0 {
		// 减去 2^(8*len) 得到负值
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(8*len(data))))
	}
	return n
}

// isMinimalInt 返回整数编码是否已是最小长度。
func isMinimalInt(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	last := data[len(data)-1]
	if last != 0x00 && last != 0xff {
		return true
	}
	if len(data) == 1 {
		// 零必须编码为空
		return last == 0xff
	}
	prevSign := data[len(data)-2] & 0x80
	if last == 0x00 {
		return prevSign != 0
	}
	return prevSign == 0
}
