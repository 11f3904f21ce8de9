package prover

import (
	"encoding/json"
	"fmt"
	"math/big"
)

type DepositInputsJSON struct {
	PubKeyX   string `json:"pubKeyX"`
	PubKeyY   string `json:"pubKeyY"`
	AccountId string `json:"accountId"`
	Amount    string `json:"amount"`

	OldPubKeyX string `json:"oldPubKeyX"`
	OldPubKeyY string `json:"oldPubKeyY"`
	OldNonce   string `json:"oldNonce"`
	OldBalance string `json:"oldBalance"`

	NewPubKeyX string `json:"newPubKeyX"`
	NewPubKeyY string `json:"newPubKeyY"`
	NewNonce   string `json:"newNonce"`
	NewBalance string `json:"newBalance"`

	PathIndex    uint64   `json:"pathIndex"`
	PathElements []string `json:"pathElements"`
}

type DepositBatchParametersJSON struct {
	OldAccumulatorHash string              `json:"oldAccumulatorHash"`
	NewAccumulatorHash string              `json:"newAccumulatorHash"`
	OldRoot            string              `json:"oldRoot"`
	NewRoot            string              `json:"newRoot"`
	Deposits           []DepositInputsJSON `json:"deposits"`
}

func ParseInput(inputJSON string) (DepositBatchParameters, error) {
	var proofData DepositBatchParameters
	err := json.Unmarshal([]byte(inputJSON), &proofData)
	if err != nil {
		return DepositBatchParameters{}, fmt.Errorf("error parsing JSON: %v", err)
	}
	return proofData, nil
}

func (p *DepositBatchParameters) MarshalJSON() ([]byte, error) {
	paramsJson := p.CreateDepositParametersJSON()
	return json.Marshal(paramsJson)
}

func (p *DepositBatchParameters) CreateDepositParametersJSON() DepositBatchParametersJSON {
	paramsJson := DepositBatchParametersJSON{}
	paramsJson.OldAccumulatorHash = toHex(&p.OldAccumulatorHash)
	paramsJson.NewAccumulatorHash = toHex(&p.NewAccumulatorHash)
	paramsJson.OldRoot = toHex(&p.OldRoot)
	paramsJson.NewRoot = toHex(&p.NewRoot)
	paramsJson.Deposits = make([]DepositInputsJSON, p.BatchSize())
	for i := 0; i < int(p.BatchSize()); i++ {
		paramsJson.Deposits[i].PubKeyX = toHex(&p.Deposits[i].PubKeyX)
		paramsJson.Deposits[i].PubKeyY = toHex(&p.Deposits[i].PubKeyY)
		paramsJson.Deposits[i].AccountId = toHex(&p.Deposits[i].AccountId)
		paramsJson.Deposits[i].Amount = toHex(&p.Deposits[i].Amount)
		paramsJson.Deposits[i].OldPubKeyX = toHex(&p.Deposits[i].OldPubKeyX)
		paramsJson.Deposits[i].OldPubKeyY = toHex(&p.Deposits[i].OldPubKeyY)
		paramsJson.Deposits[i].OldNonce = toHex(&p.Deposits[i].OldNonce)
		paramsJson.Deposits[i].OldBalance = toHex(&p.Deposits[i].OldBalance)
		paramsJson.Deposits[i].NewPubKeyX = toHex(&p.Deposits[i].NewPubKeyX)
		paramsJson.Deposits[i].NewPubKeyY = toHex(&p.Deposits[i].NewPubKeyY)
		paramsJson.Deposits[i].NewNonce = toHex(&p.Deposits[i].NewNonce)
		paramsJson.Deposits[i].NewBalance = toHex(&p.Deposits[i].NewBalance)
		paramsJson.Deposits[i].PathIndex = p.Deposits[i].PathIndex
		paramsJson.Deposits[i].PathElements = make([]string, len(p.Deposits[i].PathElements))
		for j := 0; j < len(p.Deposits[i].PathElements); j++ {
			paramsJson.Deposits[i].PathElements[j] = toHex(&p.Deposits[i].PathElements[j])
		}
	}
	return paramsJson
}

func (p *DepositBatchParameters) UnmarshalJSON(data []byte) error {
	var params DepositBatchParametersJSON
	err := json.Unmarshal(data, &params)
	if err != nil {
		return err
	}
	err = p.UpdateWithJSON(params)
	if err != nil {
		return err
	}
	return nil
}

func (p *DepositBatchParameters) UpdateWithJSON(params DepositBatchParametersJSON) error {
	err := fromHex(&p.OldAccumulatorHash, params.OldAccumulatorHash)
	if err != nil {
		return err
	}
	err = fromHex(&p.NewAccumulatorHash, params.NewAccumulatorHash)
	if err != nil {
		return err
	}
	err = fromHex(&p.OldRoot, params.OldRoot)
	if err != nil {
		return err
	}
	err = fromHex(&p.NewRoot, params.NewRoot)
	if err != nil {
		return err
	}
	p.Deposits = make([]DepositInputs, len(params.Deposits))
	for i := 0; i < len(params.Deposits); i++ {
		err = fromHex(&p.Deposits[i].PubKeyX, params.Deposits[i].PubKeyX)
		if err != nil {
			return err
		}
		err = fromHex(&p.Deposits[i].PubKeyY, params.Deposits[i].PubKeyY)
		if err != nil {
			return err
		}
		err = fromHex(&p.Deposits[i].AccountId, params.Deposits[i].AccountId)
		if err != nil {
			return err
		}
		err = fromHex(&p.Deposits[i].Amount, params.Deposits[i].Amount)
		if err != nil {
			return err
		}
		err = fromHex(&p.Deposits[i].OldPubKeyX, params.Deposits[i].OldPubKeyX)
		if err != nil {
			return err
		}
		err = fromHex(&p.Deposits[i].OldPubKeyY, params.Deposits[i].OldPubKeyY)
		if err != nil {
			return err
		}
		err = fromHex(&p.Deposits[i].OldNonce, params.Deposits[i].OldNonce)
		if err != nil {
			return err
		}
		err = fromHex(&p.Deposits[i].OldBalance, params.Deposits[i].OldBalance)
		if err != nil {
			return err
		}
		err = fromHex(&p.Deposits[i].NewPubKeyX, params.Deposits[i].NewPubKeyX)
		if err != nil {
			return err
		}
		err = fromHex(&p.Deposits[i].NewPubKeyY, params.Deposits[i].NewPubKeyY)
		if err != nil {
			return err
		}
		err = fromHex(&p.Deposits[i].NewNonce, params.Deposits[i].NewNonce)
		if err != nil {
			return err
		}
		err = fromHex(&p.Deposits[i].NewBalance, params.Deposits[i].NewBalance)
		if err != nil {
			return err
		}
		p.Deposits[i].PathIndex = params.Deposits[i].PathIndex
		p.Deposits[i].PathElements = make([]big.Int, len(params.Deposits[i].PathElements))
		for j := 0; j < len(params.Deposits[i].PathElements); j++ {
			err = fromHex(&p.Deposits[i].PathElements[j], params.Deposits[i].PathElements[j])
			if err != nil {
				return err
			}
		}
	}
	return nil
}
