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
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-seedxor/pkg/secretstore"
	"github.com/jeremyhahn/go-seedxor/pkg/seedxor"
)

func newRestoreCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Combine XOR parts back into a seed phrase",
		Long: `Combine 2 to 4 parts back into the original seed phrase.

Enter one part per line, 24 words each, in any order. Words may be
shortened to their first four letters. After the second part the final
word of the combined phrase is shown so it can be compared with the word
recorded at split time.

If the device is empty the result is saved. Otherwise the device's own
phrase may be counted as one of the parts, and the result is never
saved: it stays active until restore exits. While it is active the
restored secret can be split again or the store status shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := cfg.openDevice(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = dev.close() }()
			return runRestore(cmd, cfg, dev)
		},
	}
}

func runRestore(cmd *cobra.Command, cfg *Config, dev *device) error {
	flow, screen, err := seedxor.StartRestore(&seedxor.RestoreFlowConfig{
		Store:  dev.store,
		Logger: dev.logger.With("component", "restore"),
	})
	if err != nil {
		return err
	}
	defer flow.Close()

	printer := NewPrinter(cfg.OutputFormat, cmd.OutOrStdout())
	prompt := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	status := cmd.ErrOrStderr()

	for !screen.Done() {
		var in seedxor.Input
		switch screen.Step {
		case seedxor.StepPreloadChoice:
			if !screen.CanPreload {
				fmt.Fprintln(status, "The device already holds a secret; the result will be temporary.")
				in = seedxor.Continue{}
				break
			}
			answer, err := prompt.ask("Count the device's own phrase as part A? [y/N]: ")
			if err != nil {
				return err
			}
			in = seedxor.Continue{}
			if isYes(answer) {
				in = seedxor.IncludeDeviceSecret{}
			}
		case seedxor.StepEnterPart:
			answer, err := prompt.ask(fmt.Sprintf("Enter part %s (24 words, 'done' to finish, 'abort' to cancel): ", screen.PartLabel))
			if err != nil {
				return err
			}
			switch strings.ToLower(answer) {
			case "done":
				in = seedxor.Finish{}
			case "abort":
				in = seedxor.Abort{}
			default:
				in = seedxor.SubmitPart{Words: expandWords(answer)}
			}
		case seedxor.StepPartAccepted:
			if screen.ChecksumWord != "" {
				fmt.Fprintf(status, "%d parts entered. Final word so far: %s\n", screen.PartsEntered, screen.ChecksumWord)
			} else {
				fmt.Fprintf(status, "%d part entered.\n", screen.PartsEntered)
			}
			answer, err := prompt.ask("Add another part? [Y/n/abort]: ")
			if err != nil {
				return err
			}
			switch strings.ToLower(answer) {
			case "n", "no", "done":
				in = seedxor.Finish{}
			case "abort":
				in = seedxor.Abort{}
			default:
				in = seedxor.Continue{}
			}
		default:
			return fmt.Errorf("unexpected restore step %s", screen.Step)
		}

		screen, err = flow.Handle(in)
		if err != nil {
			if screen.Done() {
				return err
			}
			if errors.Is(err, seedxor.ErrInvalidPart) || errors.Is(err, seedxor.ErrTooFewParts) ||
				errors.Is(err, seedxor.ErrTooManyParts) {
				fmt.Fprintf(status, "%v\n", err)
				continue
			}
			return err
		}
	}
	if err := printer.PrintRestoreResult(screen); err != nil {
		return err
	}
	if screen.Commit != nil && screen.Commit.Path == secretstore.CommitEphemeral {
		return runTemporaryActions(cmd, cfg, dev, prompt)
	}
	return nil
}

// runTemporaryActions serves commands against a secret that lives only as
// long as this process. End of input is the same as quit.
func runTemporaryActions(cmd *cobra.Command, cfg *Config, dev *device, prompt *prompter) error {
	printer := NewPrinter(cfg.OutputFormat, cmd.OutOrStdout())
	status := cmd.ErrOrStderr()

	for {
		answer, err := prompt.ask("Next: 'split [2-4] [random]', 'status' or 'quit': ")
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		fields := strings.Fields(strings.ToLower(answer))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit", "q":
			return nil
		case "status":
			st, err := dev.store.Status()
			if err != nil {
				return err
			}
			if err := printer.PrintStatus(st); err != nil {
				return err
			}
		case "split":
			parts, random, err := parseSplitAction(fields[1:], dev.cfg.Split.Parts, dev.cfg.Split.RandomMask)
			if err != nil {
				fmt.Fprintln(status, err)
				continue
			}
			if err := runSplit(cmd, cfg, dev, prompt, parts, random); err != nil {
				return err
			}
		default:
			// never echo the answer back
			fmt.Fprintln(status, "Unknown action.")
		}
	}
}

// parseSplitAction reads the optional part count and "random" keyword
// following "split".
func parseSplitAction(args []string, parts int, random bool) (int, bool, error) {
	for _, arg := range args {
		if arg == "random" {
			random = true
			continue
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < seedxor.MinParts || n > seedxor.MaxParts {
			return 0, false, errors.New("usage: split [2-4] [random]")
		}
		parts = n
	}
	return parts, random, nil
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}
