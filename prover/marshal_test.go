package prover

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDepositParametersJSONRoundTrip(t *testing.T) {
	params := BuildTestDepositBatch(4, 3, 11)

	encoded, err := json.Marshal(params)
	require.NoError(t, err)

	decoded, err := ParseInput(string(encoded))
	require.NoError(t, err)

	require.Equal(t, params.OldAccumulatorHash.String(), decoded.OldAccumulatorHash.String())
	require.Equal(t, params.NewAccumulatorHash.String(), decoded.NewAccumulatorHash.String())
	require.Equal(t, params.OldRoot.String(), decoded.OldRoot.String())
	require.Equal(t, params.NewRoot.String(), decoded.NewRoot.String())
	require.Equal(t, params.BatchSize(), decoded.BatchSize())
	require.Equal(t, params.TreeDepth(), decoded.TreeDepth())

	for i := range params.Deposits {
		require.Equal(t, params.Deposits[i].PubKeyX.String(), decoded.Deposits[i].PubKeyX.String())
		require.Equal(t, params.Deposits[i].Amount.String(), decoded.Deposits[i].Amount.String())
		require.Equal(t, params.Deposits[i].NewBalance.String(), decoded.Deposits[i].NewBalance.String())
		require.Equal(t, params.Deposits[i].PathIndex, decoded.Deposits[i].PathIndex)
		for j := range params.Deposits[i].PathElements {
			require.Equal(t, params.Deposits[i].PathElements[j].String(), decoded.Deposits[i].PathElements[j].String())
		}
	}
}

func TestDepositParametersEncodeAsHex(t *testing.T) {
	params := BuildTestDepositBatch(4, 1, 12)

	encoded, err := json.Marshal(params)
	require.NoError(t, err)

	var raw DepositBatchParametersJSON
	require.NoError(t, json.Unmarshal(encoded, &raw))
	require.True(t, strings.HasPrefix(raw.OldRoot, "0x"))
	require.True(t, strings.HasPrefix(raw.Deposits[0].Amount, "0x"))
}

func TestParseInputRejectsMalformedNumbers(t *testing.T) {
	_, err := ParseInput(`{"oldAccumulatorHash":"zz","newAccumulatorHash":"0x0","oldRoot":"0x0","newRoot":"0x0","deposits":[]}`)
	require.Error(t, err)
}

func TestParseCircuitType(t *testing.T) {
	params := BuildTestDepositBatch(4, 1, 13)
	encoded, err := json.Marshal(params)
	require.NoError(t, err)

	circuitType, err := ParseCircuitType(encoded)
	require.NoError(t, err)
	require.Equal(t, Deposit, circuitType)

	_, err = ParseCircuitType([]byte(`{"unknown": []}`))
	require.Error(t, err)
}
