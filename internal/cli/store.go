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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-seedxor/pkg/mnemonic"
	"github.com/jeremyhahn/go-seedxor/pkg/secure"
	"github.com/jeremyhahn/go-seedxor/pkg/trng"
)

func newStoreCmd(cfg *Config) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the device secret",
		Long:  `Commands for the secret the device holds.`,
	}

	storeCmd.AddCommand(newStoreImportCmd(cfg))
	storeCmd.AddCommand(newStoreGenerateCmd(cfg))
	storeCmd.AddCommand(newStoreStatusCmd(cfg))
	storeCmd.AddCommand(newStoreEraseCmd(cfg))
	return storeCmd
}

func newStoreImportCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import a 24-word seed phrase read from stdin",
		Long: `Read a 24-word seed phrase from stdin and save it. Words are never
accepted as arguments so they do not end up in shell history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := cfg.openDevice(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = dev.close() }()

			line, err := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).ask("Enter 24 words: ")
			if err != nil {
				return err
			}
			entropy, err := mnemonic.BIP39{}.Decode(expandWords(line))
			if err != nil {
				return fmt.Errorf("invalid phrase: %w", err)
			}
			secret := secure.BufferFrom(entropy)
			defer secret.Wipe()

			if err := dev.store.CommitPermanent(secure.ModeWords, secret.Bytes()); err != nil {
				return err
			}
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintSuccess("Secret saved")
		},
	}
}

func newStoreGenerateCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate and save a new 24-word seed phrase",
		Long: `Draw 32 bytes from the configured random source, save them as the
device secret and print the phrase once. The device must be empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := cfg.openDevice(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = dev.close() }()

			if !dev.store.IsEmpty() {
				return errors.New("device already holds a secret; erase it first")
			}
			rng, err := dev.entropy()
			if err != nil {
				return err
			}
			sample, err := rng.Rand(secure.SecretSize)
			if err != nil {
				return fmt.Errorf("failed to draw random bytes: %w", err)
			}
			secret := secure.BufferFrom(sample)
			defer secret.Wipe()
			if err := trng.CheckSample(secret.Bytes()); err != nil {
				return err
			}

			words, err := mnemonic.BIP39{}.Encode(secret.Bytes())
			if err != nil {
				return err
			}
			if err := dev.store.CommitPermanent(secure.ModeWords, secret.Bytes()); err != nil {
				return err
			}
			dev.logger.Info("secret generated", "rng", string(rng.Mode()))
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintWords(words)
		},
	}
}

func newStoreStatusCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the device holds a secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := cfg.openDevice(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = dev.close() }()

			st, err := dev.store.Status()
			if err != nil {
				return err
			}
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintStatus(st)
		},
	}
}

func newStoreEraseCmd(cfg *Config) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "erase",
		Short: "Erase the device secret",
		Long:  `Overwrite and remove the saved secret.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return errors.New("refusing to erase without --force")
			}
			dev, err := cfg.openDevice(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = dev.close() }()

			if err := dev.store.Erase(); err != nil {
				return err
			}
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintSuccess("Secret erased")
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm erasing the secret")
	return cmd
}
