package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/minirv/golden/rvgo/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "minirv"
	app.Usage = "miniRV golden model"
	app.Description = "Instruction-level golden model of the miniRV RV32E-subset core, with a cosimulation harness"
	app.Commands = []*cli.Command{
		cmd.RunCommand,
		cmd.LoadHexCommand,
		cmd.ConvertCommand,
		cmd.WitnessCommand,
		cmd.CosimCommand,
		cmd.DisasmCommand,
	}
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for {
			<-c
			cancel()
			fmt.Println("\r\nExiting...")
		}
	}()

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		if errors.Is(err, ctx.Err()) {
			_, _ = fmt.Fprintf(os.Stderr, "command interrupted\n")
			os.Exit(130)
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}
