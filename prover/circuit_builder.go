package prover

import (
	"encoding/json"
	"fmt"
)

type CircuitType string

const (
	Deposit     CircuitType = "deposit"
	DepositTest CircuitType = "deposit-test"
)

func SetupCircuit(circuit CircuitType, treeDepth uint32, batchSize uint32) (*ProvingSystem, error) {
	switch circuit {
	case Deposit:
		return SetupDeposit(treeDepth, batchSize)
	default:
		return nil, fmt.Errorf("invalid circuit: %s", circuit)
	}
}

func ParseCircuitType(data []byte) (CircuitType, error) {
	var inputs map[string]*json.RawMessage
	err := json.Unmarshal(data, &inputs)
	if err != nil {
		return "", err
	}

	_, hasDeposits := inputs["deposits"]

	if hasDeposits {
		return Deposit, nil
	}
	return "", fmt.Errorf("unknown schema")
}

func IsCircuitEnabled(s []CircuitType, e CircuitType) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

func GenerateKeyFilePath(baseDir string, circuit CircuitType, treeDepth uint32, batchSize uint32) string {
	switch circuit {
	case Deposit:
		return fmt.Sprintf("%s/deposit_%d_%d", baseDir, treeDepth, batchSize)
	default:
		return ""
	}
}
