package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/bytecraft/asm"
	"github.com/ezrec/bytecraft/bvm"
)

var asmCmd = &cobra.Command{
	Use:   "asm [flags] input.asm",
	Short: "assemble a source file into a BVM module.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v := verbose(cmd)
		output, _ := cmd.Flags().GetString("output")

		assembler := &asm.Assembler{Verbose: v}
		mod, err := assembler.AssembleFile(args[0])
		if err != nil {
			log.Fatalf("assembly failed: %v", err)
		}

		if err := bvm.SaveFile(output, mod); err != nil {
			log.Fatalf("save failed: %v", err)
		}

		fmt.Printf("assembled OK: entry=%d code=%dB data=%dB\n",
			mod.EntryPoint, len(mod.Code), len(mod.Data))
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(asmCmd)
	asmCmd.Flags().StringP("output", "o", "a.bvm", "specify output file.")
	asmCmd.MarkFlagRequired("output")
}
