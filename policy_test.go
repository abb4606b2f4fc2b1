package bpfsign

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/bpfsign/contract"
	"github.com/qinglongcn/bpfsign/txscript"
)

// testPubKeys 返回 n 个由 seed 起始的公钥。
func testPubKeys(seed byte, n int) []*btcec.PublicKey {
	keys := make([]*btcec.PublicKey, n)
	for i := range keys {
		_, keys[i] = btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed + byte(i)}, 32))
	}
	return keys
}

func signatures(n int) []contract.ParamType {
	params := make([]contract.ParamType, n)
	for i := range params {
		params[i] = contract.SignatureType
	}
	return params
}

// TestCheckContractStandard 测试 checkContractStandard API。
func TestCheckContractStandard(t *testing.T) {
	t.Parallel()

	keys := testPubKeys(0x01, 11)
	var pubKeys [][]byte
	for _, k := range keys {
		pubKeys = append(pubKeys, k.SerializeCompressed())
	}

	multi := func(m int, keys ...[]byte) []byte {
		b := txscript.NewScriptBuilder().AddInt64(int64(m))
		for _, k := range keys {
			b.AddData(k)
		}
		script, err := b.AddInt64(int64(len(keys))).AddOp(txscript.OP_CHECKMULTISIG).Script()
		require.NoError(t, err)
		return script
	}

	tests := []struct {
		name       string
		contract   *contract.Contract
		isStandard bool
	}{
		{
			name:       "key1 and key2",
			contract:   contract.NewContract(signatures(2), multi(2, pubKeys[0], pubKeys[1])),
			isStandard: true,
		},
		{
			name:       "key1 or key2",
			contract:   contract.NewContract(signatures(1), multi(1, pubKeys[0], pubKeys[1])),
			isStandard: true,
		},
		{
			name:       "escrow",
			contract:   contract.NewContract(signatures(2), multi(2, pubKeys[0], pubKeys[1], pubKeys[2])),
			isStandard: true,
		},
		{
			name:       "ten of ten",
			contract:   contract.NewContract(signatures(10), multi(10, pubKeys[:10]...)),
			isStandard: true,
		},
		{
			name:       "eleven of eleven",
			contract:   contract.NewContract(signatures(11), multi(11, pubKeys...)),
			isStandard: false,
		},
		{
			name:       "parameter count mismatch",
			contract:   contract.NewContract(signatures(1), multi(2, pubKeys[0], pubKeys[1])),
			isStandard: false,
		},
		{
			name:       "multisig with non-signature parameter",
			contract:   contract.NewContract([]contract.ParamType{contract.BoolType}, multi(1, pubKeys[0])),
			isStandard: false,
		},
		{
			name:       "single",
			contract:   contract.CreateSignatureContract(keys[0]),
			isStandard: true,
		},
		{
			name: "single without parameter",
			contract: contract.NewContract(nil,
				contract.CreateSignatureRedeemScript(keys[0])),
			isStandard: false,
		},
		{
			name:       "custom",
			contract:   contract.NewContract([]contract.ParamType{contract.IntegerType}, []byte{txscript.OP_TRUE}),
			isStandard: true,
		},
		{
			name: "custom with interop parameter",
			contract: contract.NewContract([]contract.ParamType{contract.InteropInterfaceType},
				[]byte{txscript.OP_TRUE}),
			isStandard: false,
		},
		{
			name:       "empty script",
			contract:   contract.NewContract(nil, nil),
			isStandard: false,
		},
		{
			name:       "oversized custom script",
			contract:   contract.NewContract(nil, make([]byte, 1025)),
			isStandard: false,
		},
	}

	t.Logf("Running %d tests", len(tests))
	for _, test := range tests {
		err := checkContractStandard(test.contract)
		if test.isStandard {
			require.NoError(t, err, test.name)
		} else {
			require.Error(t, err, test.name)
		}
	}
}
