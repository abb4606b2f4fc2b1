package store

import (
	"encoding/hex"
	"encoding/json"

	"github.com/qinglongcn/bpfsign/contract"
)

type contractRecord struct {
	Script     string               `json:"script"`
	Parameters []contract.ParamType `json:"parameters"`
}

func encodeContract(c *contract.Contract) ([]byte, error) {
	return json.Marshal(contractRecord{
		Script:     hex.EncodeToString(c.Script),
		Parameters: c.ParameterList,
	})
}

func decodeContract(b []byte) (*contract.Contract, error) {
	var rec contractRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	script, err := hex.DecodeString(rec.Script)
	if err != nil {
		return nil, err
	}
	return contract.NewContract(rec.Parameters, script), nil
}
