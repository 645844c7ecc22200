package cmd

import (
	"fmt"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"

	"github.com/minirv/golden/rvgo/fast"
)

type WitnessOutput struct {
	Witness   hexutil.Bytes `json:"witness"`
	StateHash common.Hash   `json:"stateHash"`
}

func Witness(ctx *cli.Context) error {
	input := ctx.Path(WitnessInputFlag.Name)
	output := ctx.Path(WitnessOutputFlag.Name)
	state, err := jsonutil.LoadJSON[fast.VMState](input)
	if err != nil {
		return fmt.Errorf("invalid input state (%v): %w", input, err)
	}
	witness := state.EncodeWitness()
	stateHash := witness.StateHash()
	witnessOutput := &WitnessOutput{
		Witness:   hexutil.Bytes(witness),
		StateHash: stateHash,
	}
	if err := writeJSON(output, witnessOutput); err != nil {
		return fmt.Errorf("failed to write witness output %w", err)
	}
	fmt.Println(stateHash.Hex())
	return nil
}

var WitnessCommand = &cli.Command{
	Name:        "witness",
	Usage:       "Compute the state hash of a JSON state",
	Description: "Encode a JSON state as a binary witness. The state hash is written to stdout",
	Action:      Witness,
	Flags: []cli.Flag{
		WitnessInputFlag,
		WitnessOutputFlag,
	},
}
