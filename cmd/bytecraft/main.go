// Command bytecraft drives the ByteCraft toolchain: assemble a source file
// into a BVM module, or load and run one.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bytecraft",
	Short: "A toolchain for the ByteCraft register machine.",
	Long: `An assembler, bytecode container codec, and virtual machine for the
	 ByteCraft 32-bit register machine.`,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}

// verbose reads the persistent verbosity flag and configures the log level.
func verbose(cmd *cobra.Command) bool {
	flag, _ := cmd.Flags().GetBool("verbose")
	if flag {
		log.SetLevel(log.DebugLevel)
	}
	return flag
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
