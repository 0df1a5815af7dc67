// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedxor.
//
// go-seedxor is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the seedxor command tree. Flags can also be set
// through SEEDXOR_* environment variables.
func NewRootCmd() *cobra.Command {
	cfg := NewConfig()
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "seedxor",
		Short: "Split a 24-word seed phrase into XOR parts and restore it",
		Long: `seedxor splits the device's 24-word seed phrase into 2, 3 or 4
parts. Each part is itself a valid 24-word phrase. All parts are required
to restore the original; any subset reveals nothing about it.

Parts may be entered in any order when restoring. When the device already
holds a secret, the restored secret is never saved. It stays active until
restore exits, and restore offers to split it or show the store status
in the meantime.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.ConfigFile = v.GetString("config")
			cfg.DataDir = v.GetString("data-dir")
			cfg.Storage = v.GetString("storage")
			cfg.RNG = v.GetString("rng")
			cfg.OutputFormat = v.GetString("output")
			cfg.Verbose = v.GetBool("verbose")
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (YAML)")
	flags.String("data-dir", "", "directory holding the secret slot (overrides storage.path)")
	flags.String("storage", "", "storage backend: file or memory (overrides storage.backend)")
	flags.String("rng", "", "random source: auto, software, tpm2 or pkcs11 (overrides rng.mode)")
	flags.StringP("output", "o", string(OutputFormatText), "output format (text, json)")
	flags.BoolP("verbose", "v", false, "verbose output")

	v.SetEnvPrefix("SEEDXOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(newVersionCmd(cfg))
	rootCmd.AddCommand(newSplitCmd(cfg))
	rootCmd.AddCommand(newRestoreCmd(cfg))
	rootCmd.AddCommand(newStoreCmd(cfg))

	return rootCmd
}

// Execute runs the root command and reports any error on stderr
func Execute() error {
	rootCmd := NewRootCmd()
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		if cmd == nil {
			cmd = rootCmd
		}
		format, _ := cmd.Flags().GetString("output")
		printer := NewPrinter(format, os.Stderr)
		_ = printer.PrintError(err) // Error printing to stderr is best-effort
	}
	return err
}
