package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/DryginAlexander/OpenPlasma/logging"
	"github.com/DryginAlexander/OpenPlasma/prover"

	gnarkLogger "github.com/consensys/gnark/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	runCli()
}

func runCli() {
	gnarkLogger.Set(*logging.Logger())
	app := cli.App{
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name: "setup",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "circuit", Usage: "Type of circuit (\"deposit\")", Required: true},
					&cli.StringFlag{Name: "output", Usage: "Output file", Required: true},
					&cli.StringFlag{Name: "output-vkey", Usage: "Output file", Required: true},
					&cli.UintFlag{Name: "tree-depth", Usage: "Depth of the account tree", Required: true},
					&cli.UintFlag{Name: "batch-size", Usage: "Number of deposits per batch", Required: true},
				},
				Action: func(context *cli.Context) error {
					circuit := prover.CircuitType(context.String("circuit"))
					if circuit != prover.Deposit {
						return fmt.Errorf("invalid circuit type %s", circuit)
					}

					path := context.String("output")
					pathVkey := context.String("output-vkey")
					treeDepth := uint32(context.Uint("tree-depth"))
					batchSize := uint32(context.Uint("batch-size"))

					if treeDepth == 0 || batchSize == 0 {
						return fmt.Errorf("tree depth and batch size must be provided")
					}

					logging.Logger().Info().Msg("Running setup")

					system, err := prover.SetupCircuit(circuit, treeDepth, batchSize)
					if err != nil {
						return err
					}
					err = prover.WriteProvingSystem(system, path, pathVkey)
					if err != nil {
						return err
					}

					logging.Logger().Info().Msg("Setup completed successfully")
					return nil
				},
			},
			{
				Name: "r1cs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Usage: "Output file", Required: true},
					&cli.UintFlag{Name: "tree-depth", Usage: "Depth of the account tree", Required: true},
					&cli.UintFlag{Name: "batch-size", Usage: "Number of deposits per batch", Required: true},
				},
				Action: func(context *cli.Context) error {
					path := context.String("output")
					treeDepth := uint32(context.Uint("tree-depth"))
					batchSize := uint32(context.Uint("batch-size"))

					if treeDepth == 0 || batchSize == 0 {
						return fmt.Errorf("tree depth and batch size must be provided")
					}

					logging.Logger().Info().Msg("Building R1CS")

					cs, err := prover.R1CSDeposit(treeDepth, batchSize)
					if err != nil {
						return err
					}
					file, err := os.Create(path)
					defer func(file *os.File) {
						err := file.Close()
						if err != nil {
							logging.Logger().Error().Err(err).Msg("error closing file")
						}
					}(file)
					if err != nil {
						return err
					}
					written, err := cs.WriteTo(file)
					if err != nil {
						return err
					}
					logging.Logger().Info().Int64("bytesWritten", written).Msg("R1CS written to file")
					return nil
				},
			},
			{
				Name: "import-setup",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "circuit", Usage: "Type of circuit (\"deposit\")", Required: true},
					&cli.StringFlag{Name: "output", Usage: "Output file", Required: true},
					&cli.StringFlag{Name: "pk", Usage: "Proving key", Required: true},
					&cli.StringFlag{Name: "vk", Usage: "Verifying key", Required: true},
					&cli.UintFlag{Name: "tree-depth", Usage: "Depth of the account tree", Required: true},
					&cli.UintFlag{Name: "batch-size", Usage: "Number of deposits per batch", Required: true},
				},
				Action: func(context *cli.Context) error {
					circuit := prover.CircuitType(context.String("circuit"))
					if circuit != prover.Deposit {
						return fmt.Errorf("invalid circuit type %s", circuit)
					}

					path := context.String("output")
					pk := context.String("pk")
					vk := context.String("vk")
					treeDepth := uint32(context.Uint("tree-depth"))
					batchSize := uint32(context.Uint("batch-size"))

					if treeDepth == 0 || batchSize == 0 {
						return fmt.Errorf("tree depth and batch size must be provided")
					}

					logging.Logger().Info().Msg("Importing setup")

					system, err := prover.ImportDepositSetup(treeDepth, batchSize, pk, vk)
					if err != nil {
						return err
					}
					err = prover.WriteProvingSystem(system, path, "")
					if err != nil {
						return err
					}

					logging.Logger().Info().Msg("Setup imported successfully")
					return nil
				},
			},
			{
				Name: "export-vk",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "keys-file", Aliases: []string{"k"}, Usage: "proving system file", Required: true},
					&cli.StringFlag{Name: "output", Usage: "output file", Required: true},
				},
				Action: func(context *cli.Context) error {
					keysFile := context.String("keys-file")
					outputFile := context.String("output")

					system, err := prover.ReadSystemFromFile(keysFile)
					if err != nil {
						return fmt.Errorf("failed to read proving system: %v", err)
					}

					var buf bytes.Buffer
					_, err = system.VerifyingKey.WriteTo(&buf)
					if err != nil {
						return fmt.Errorf("failed to serialize verification key: %v", err)
					}

					err = os.MkdirAll(filepath.Dir(outputFile), 0755)
					if err != nil {
						return fmt.Errorf("failed to create output directory: %v", err)
					}

					err = os.WriteFile(outputFile, buf.Bytes(), 0644)
					if err != nil {
						return fmt.Errorf("failed to write verification key to file: %v", err)
					}

					logging.Logger().Info().
						Str("file", outputFile).
						Int("bytes", buf.Len()).
						Msg("Verification key exported successfully")

					return nil
				},
			},
			{
				Name: "gen-test-params",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "tree-depth", Usage: "depth of the mock tree", DefaultText: "4", Value: 4},
					&cli.IntFlag{Name: "batch-size", Usage: "number of deposits", DefaultText: "2", Value: 2},
					&cli.Int64Flag{Name: "seed", Usage: "seed for the mock accounts", DefaultText: "1", Value: 1},
				},
				Action: func(context *cli.Context) error {
					treeDepth := context.Int("tree-depth")
					batchSize := context.Int("batch-size")
					seed := context.Int64("seed")
					logging.Logger().Info().Msg("Generating test params for the deposit circuit")

					params := prover.BuildTestDepositBatch(treeDepth, batchSize, seed)

					r, err := json.Marshal(params)
					if err != nil {
						return err
					}

					fmt.Println(string(r))
					return nil
				},
			},
			{
				Name: "prove",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json-logging", Usage: "enable JSON logging", Required: false},
					&cli.StringFlag{Name: "keys-dir", Usage: "Directory where circuit key files are stored", Value: "./proving-keys/", Required: false},
					&cli.StringFlag{
						Name:  "run-mode",
						Usage: "Specify the running mode (test or full)",
						Value: "full",
					},
				},
				Action: func(context *cli.Context) error {
					if context.Bool("json-logging") {
						logging.SetJSONOutput()
					}

					runMode := context.String("run-mode")
					isTestMode := runMode == "test"

					if isTestMode {
						logging.Logger().Info().Msg("Running in test mode")
					} else {
						logging.Logger().Info().Msg("Running in full mode")
					}

					circuits := []prover.CircuitType{prover.Deposit}
					if isTestMode {
						circuits = []prover.CircuitType{prover.DepositTest}
					}

					systems, err := prover.LoadKeys(context.String("keys-dir"), circuits)
					if err != nil {
						return err
					}

					if len(systems) == 0 {
						return fmt.Errorf("no proving systems loaded")
					}

					logging.Logger().Info().Msg("Reading params from stdin")
					inputsBytes, err := io.ReadAll(os.Stdin)
					if err != nil {
						return err
					}

					circuit, err := prover.ParseCircuitType(inputsBytes)
					if err != nil {
						return err
					}
					if circuit != prover.Deposit {
						return fmt.Errorf("invalid circuit type %s", circuit)
					}

					params, err := prover.ParseInput(string(inputsBytes))
					if err != nil {
						return err
					}

					for _, system := range systems {
						if system.TreeDepth == params.TreeDepth() && system.BatchSize == params.BatchSize() {
							proof, err := system.ProveDeposit(&params)
							if err != nil {
								return err
							}
							r, _ := json.Marshal(proof)
							fmt.Println(string(r))
							return nil
						}
					}

					return fmt.Errorf("no proving system loaded for depth %d and batch size %d", params.TreeDepth(), params.BatchSize())
				},
			},
			{
				Name: "verify",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "keys-file", Aliases: []string{"k"}, Usage: "proving system file", Required: true},
					&cli.StringFlag{Name: "old-accumulator-hash", Usage: "Deposit accumulator hash before the batch (hex format)", Required: true},
					&cli.StringFlag{Name: "new-accumulator-hash", Usage: "Deposit accumulator hash after the batch (hex format)", Required: true},
					&cli.StringFlag{Name: "old-root", Usage: "Account tree root before the batch (hex format)", Required: true},
					&cli.StringFlag{Name: "new-root", Usage: "Account tree root after the batch (hex format)", Required: true},
				},
				Action: func(context *cli.Context) error {
					keys := context.String("keys-file")

					system, err := prover.ReadSystemFromFile(keys)
					if err != nil {
						return fmt.Errorf("failed to read proving system: %v", err)
					}

					oldAccumulatorHash, err := parseBigInt(context.String("old-accumulator-hash"))
					if err != nil {
						return fmt.Errorf("failed to parse old accumulator hash: %v", err)
					}
					newAccumulatorHash, err := parseBigInt(context.String("new-accumulator-hash"))
					if err != nil {
						return fmt.Errorf("failed to parse new accumulator hash: %v", err)
					}
					oldRoot, err := parseBigInt(context.String("old-root"))
					if err != nil {
						return fmt.Errorf("failed to parse old root: %v", err)
					}
					newRoot, err := parseBigInt(context.String("new-root"))
					if err != nil {
						return fmt.Errorf("failed to parse new root: %v", err)
					}

					logging.Logger().Info().Msg("Reading proof from stdin")
					proofBytes, err := io.ReadAll(os.Stdin)
					if err != nil {
						return fmt.Errorf("failed to read proof from stdin: %v", err)
					}

					var proof prover.Proof
					err = json.Unmarshal(proofBytes, &proof)
					if err != nil {
						return fmt.Errorf("failed to unmarshal proof: %v", err)
					}

					err = system.VerifyDeposit(*oldAccumulatorHash, *newAccumulatorHash, *oldRoot, *newRoot, &proof)
					if err != nil {
						return fmt.Errorf("verification failed: %v", err)
					}

					logging.Logger().Info().Msg("Verification completed successfully")
					return nil
				},
			},
			{
				Name: "extract-circuit",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Usage: "Output file", Required: true},
					&cli.UintFlag{Name: "tree-depth", Usage: "Depth of the account tree", Required: true},
					&cli.UintFlag{Name: "batch-size", Usage: "Number of deposits per batch", Required: true},
				},
				Action: func(context *cli.Context) error {
					path := context.String("output")
					treeDepth := uint32(context.Uint("tree-depth"))
					batchSize := uint32(context.Uint("batch-size"))
					logging.Logger().Info().Msg("Extracting gnark circuit to Lean")
					circuitString, err := prover.ExtractLean(treeDepth, batchSize)
					if err != nil {
						return err
					}
					file, err := os.Create(path)
					defer func(file *os.File) {
						err := file.Close()
						if err != nil {
							logging.Logger().Error().Err(err).Msg("error closing file")
						}
					}(file)
					if err != nil {
						return err
					}
					written, err := file.WriteString(circuitString)
					if err != nil {
						return err
					}
					logging.Logger().Info().Int("bytesWritten", written).Msg("Lean circuit written to file")

					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logging.Logger().Fatal().Err(err).Msg("App failed.")
	}
}

func parseBigInt(input string) (*big.Int, error) {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "0x")

	bytes, err := hex.DecodeString(input)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %s", input)
	}

	bigInt := new(big.Int).SetBytes(bytes)
	return bigInt, nil
}
