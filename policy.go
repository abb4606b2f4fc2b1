package bpfsign

import (
	"fmt"

	"github.com/btcsuite/btcd/wire"

	"github.com/qinglongcn/bpfsign/contract"
	"github.com/qinglongcn/bpfsign/txscript"
	"github.com/qinglongcn/bpfsign/types"
)

// signaturePushSize 是调用脚本中一个签名推送的字节数
const signaturePushSize = 1 + contract.SignatureLength

// witnessSize 返回调用脚本与验证脚本组成的见证编码后的字节数
func witnessSize(invocation, verification int) int {
	return wire.VarIntSerializeSize(uint64(invocation)) + invocation +
		wire.VarIntSerializeSize(uint64(verification)) + verification
}

// checkContractStandard 对合约执行一系列检查，确保它组装出的见证能够被解码。
// 标准单签名与多重签名合约的参数列表必须全部是签名；自定义合约不能携带互操作接口参数。
func checkContractStandard(c *contract.Contract) error {
	if len(c.Script) == 0 {
		return fmt.Errorf("empty verification script")
	}

	switch txscript.GetScriptClass(c.Script) {
	case txscript.MultiSigTy:
		numPubKeys, numSigs, err := txscript.CalcMultiSigStats(c.Script)
		if err != nil {
			return fmt.Errorf("multi-signature script parse failure: %v", err)
		}
		if numSigs > numPubKeys {
			return fmt.Errorf("multi-signature script with %d signatures which is more than the available %d public keys", numSigs, numPubKeys)
		}
		if len(c.ParameterList) != numSigs {
			return fmt.Errorf("multi-signature contract with %d parameters, expected %d", len(c.ParameterList), numSigs)
		}
		if size := witnessSize(numSigs*signaturePushSize, len(c.Script)); size > types.MaxWitnessSize {
			return fmt.Errorf("multi-signature witness of %d bytes exceeds %d", size, types.MaxWitnessSize)
		}
		for i, t := range c.ParameterList {
			if t != contract.SignatureType {
				return fmt.Errorf("multi-signature contract parameter %d is %s", i, t)
			}
		}

	case txscript.SignatureTy:
		if len(c.ParameterList) != 1 || c.ParameterList[0] != contract.SignatureType {
			return fmt.Errorf("signature contract must take exactly one signature")
		}

	case txscript.NonStandardTy:
		if len(c.Script) > types.MaxWitnessSize {
			return fmt.Errorf("verification script of %d bytes exceeds %d", len(c.Script), types.MaxWitnessSize)
		}
		for i, t := range c.ParameterList {
			if t == contract.InteropInterfaceType {
				return fmt.Errorf("contract parameter %d is %s", i, t)
			}
		}
	}

	return nil
}
