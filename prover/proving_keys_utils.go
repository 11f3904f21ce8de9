package prover

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/DryginAlexander/OpenPlasma/logging"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	gnarkio "github.com/consensys/gnark/io"
)

// Trusted setup utility functions
// Taken from: https://github.com/bnb-chain/zkbnb/blob/master/common/prove/proof_keys.go#L19
func LoadProvingKey(filepath string) (pk groth16.ProvingKey, err error) {
	logging.Logger().Info().Msg("start reading proving key")
	pk = groth16.NewProvingKey(ecc.BN254)
	f, _ := os.Open(filepath)
	_, err = pk.ReadFrom(f)
	if err != nil {
		return pk, fmt.Errorf("read file error")
	}
	err = f.Close()
	if err != nil {
		return nil, err
	}
	return pk, nil
}

// Taken from: https://github.com/bnb-chain/zkbnb/blob/master/common/prove/proof_keys.go#L32
func LoadVerifyingKey(filepath string) (verifyingKey groth16.VerifyingKey, err error) {
	logging.Logger().Info().Msg("start reading verifying key")
	verifyingKey = groth16.NewVerifyingKey(ecc.BN254)
	f, _ := os.Open(filepath)
	_, err = verifyingKey.ReadFrom(f)
	if err != nil {
		return verifyingKey, fmt.Errorf("read file error")
	}
	err = f.Close()
	if err != nil {
		return nil, err
	}

	return verifyingKey, nil
}

func GetKeys(keysDir string, circuitTypes []CircuitType) []string {
	var keys []string

	if IsCircuitEnabled(circuitTypes, Deposit) {
		keys = append(keys, keysDir+"deposit_26_1.key")
		keys = append(keys, keysDir+"deposit_26_10.key")
		keys = append(keys, keysDir+"deposit_26_100.key")
	}
	if IsCircuitEnabled(circuitTypes, DepositTest) {
		keys = append(keys, keysDir+"deposit_4_2.key")
	}
	return keys
}

func LoadKeys(keysDirPath string, circuits []CircuitType) ([]*ProvingSystem, error) {
	var systems []*ProvingSystem
	keys := GetKeys(keysDirPath, circuits)

	for _, key := range keys {
		logging.Logger().Info().Msg("Reading proving system from file " + key + "...")
		system, err := ReadSystemFromFile(key)
		if err != nil {
			return nil, err
		}
		systems = append(systems, system)
		logging.Logger().Info().
			Uint32("treeDepth", system.TreeDepth).
			Uint32("batchSize", system.BatchSize).
			Msg("Read ProvingSystem")
	}
	return systems, nil
}

func createFileAndWriteBytes(filePath string, data []byte) error {
	fmt.Println("Writing", len(data), "bytes to", filePath)
	file, err := os.Create(filePath)
	if err != nil {
		return err // Return the error to the caller
	}
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			return
		}
	}(file)

	_, err = io.WriteString(file, fmt.Sprintf("%d", data))
	if err != nil {
		return err // Return any error that occurs during writing
	}
	fmt.Println("Wrote", len(data), "bytes to", filePath)
	return nil
}

func WriteProvingSystem(system *ProvingSystem, path string, pathVkey string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	written, err := system.WriteTo(file)
	if err != nil {
		return err
	}

	logging.Logger().Info().Int64("bytesWritten", written).Msg("Proving system written to file")

	if pathVkey == "" {
		return nil
	}

	var buf bytes.Buffer
	_, err = system.VerifyingKey.(gnarkio.WriterRawTo).WriteRawTo(&buf)
	if err != nil {
		return err
	}

	return createFileAndWriteBytes(pathVkey, buf.Bytes())
}
