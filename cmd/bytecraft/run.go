package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/bytecraft/bvm"
	"github.com/ezrec/bytecraft/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] program.bvm",
	Short: "load and run a BVM module until it halts.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v := verbose(cmd)

		mod, err := bvm.LoadFile(args[0])
		if err != nil {
			log.Fatalf("load failed: %v", err)
		}

		machine := vm.NewFromModule(mod)
		machine.Verbose = v
		machine.Run()

		if machine.Faulted() {
			log.Fatalf("halted: %v", machine.HaltReason())
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
