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
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-seedxor/pkg/seedxor"
)

func newSplitCmd(cfg *Config) *cobra.Command {
	var (
		parts  int
		random bool
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split the stored seed phrase into XOR parts",
		Long: `Split the device's 24-word seed phrase into 2, 3 or 4 parts.

The parts are printed once. Each part must then be typed back in, one
line of 24 words per part, to prove it was written down correctly.
Words may be shortened to their first four letters.

Deterministic parts (the default) are the same every time the same
phrase is split into the same number of parts. With --random the parts
are different every time and cannot be shown again once discarded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := cfg.openDevice(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = dev.close() }()

			if !cmd.Flags().Changed("parts") {
				parts = dev.cfg.Split.Parts
			}
			if !cmd.Flags().Changed("random") {
				random = dev.cfg.Split.RandomMask
			}
			return runSplit(cmd, cfg, dev, newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()), parts, random)
		},
	}

	cmd.Flags().IntVarP(&parts, "parts", "n", 2, "number of parts (2, 3 or 4)")
	cmd.Flags().BoolVar(&random, "random", false, "use random masks instead of deterministic ones")
	return cmd
}

func runSplit(cmd *cobra.Command, cfg *Config, dev *device, prompt *prompter, parts int, random bool) error {
	splitCfg := &seedxor.SplitterConfig{Logger: dev.logger.With("component", "splitter")}
	if random {
		rng, err := dev.entropy()
		if err != nil {
			return err
		}
		splitCfg.Entropy = rng
	}
	splitter, err := seedxor.NewSplitter(splitCfg)
	if err != nil {
		return err
	}

	flow, screen, err := seedxor.StartSplit(&seedxor.SplitFlowConfig{
		Splitter: splitter,
		Source:   dev.store,
		Logger:   dev.logger,
	})
	if err != nil {
		return err
	}
	defer flow.Close()

	printer := NewPrinter(cfg.OutputFormat, cmd.OutOrStdout())

	screen, err = flow.Handle(seedxor.SelectPartCount{N: parts})
	if err != nil {
		return err
	}
	var mask seedxor.Input = seedxor.Continue{}
	if random {
		mask = seedxor.UseRandomMasks{}
	}
	if screen, err = flow.Handle(mask); err != nil {
		return err
	}

	for !screen.Done() {
		var in seedxor.Input
		switch screen.Step {
		case seedxor.StepShowParts:
			if err := printer.PrintReport(screen.Report); err != nil {
				return err
			}
			answer, err := prompt.ask("Press enter once every part is written down, or type 'abort': ")
			if err != nil {
				return err
			}
			in = seedxor.Continue{}
			if strings.EqualFold(answer, "abort") {
				in = seedxor.Abort{}
			}
		case seedxor.StepConfirmDiscard:
			answer, err := prompt.ask("Random parts cannot be shown again. Type 'yes' to discard them: ")
			if err != nil {
				return err
			}
			in = seedxor.Continue{}
			if strings.EqualFold(answer, "yes") {
				in = seedxor.Confirm{}
			}
		case seedxor.StepVerifyPart:
			answer, err := prompt.ask(fmt.Sprintf("Type part %s (24 words, or 'back' to see the parts again): ", screen.PartLabel))
			if err != nil {
				return err
			}
			in = seedxor.SubmitPart{Words: expandWords(answer)}
			if strings.EqualFold(answer, "back") {
				in = seedxor.Abort{}
			}
		default:
			return fmt.Errorf("unexpected split step %s", screen.Step)
		}

		screen, err = flow.Handle(in)
		if err != nil {
			if screen.Done() {
				return err
			}
			if errors.Is(err, seedxor.ErrTranscription) || errors.Is(err, seedxor.ErrInvalidPart) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Part %s was not entered correctly: %v\n", screen.PartLabel, err)
				continue
			}
			return err
		}
	}
	return printer.PrintSplitResult(screen)
}
