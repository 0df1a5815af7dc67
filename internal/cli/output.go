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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jeremyhahn/go-seedxor/pkg/secretstore"
	"github.com/jeremyhahn/go-seedxor/pkg/seedxor"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintReport prints the parts of a split for the user to write down
func (p *Printer) PrintReport(report *seedxor.Report) error {
	switch p.format {
	case OutputFormatJSON:
		parts := make([]map[string]interface{}, len(report.Parts))
		for i, part := range report.Parts {
			parts[i] = map[string]interface{}{
				"label": part.Label,
				"words": part.Words,
			}
		}
		return p.printJSON(map[string]interface{}{
			"parts":         parts,
			"random_masks":  report.Random,
			"checksum_word": report.ChecksumWord,
		})
	case OutputFormatText:
		_, err := io.WriteString(p.writer, report.String())
		return err
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintWords prints a freshly generated phrase
func (p *Printer) PrintWords(words []string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"words": words,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, "Record these 24 words:")
		fmt.Fprintln(p.writer)
		for i, w := range words {
			fmt.Fprintf(p.writer, "%2d: %s\n", i+1, w)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSplitResult prints the end of a split flow
func (p *Printer) PrintSplitResult(screen seedxor.Screen) error {
	switch p.format {
	case OutputFormatJSON:
		data := map[string]interface{}{
			"outcome": screen.Outcome.String(),
			"parts":   screen.NumParts,
		}
		if screen.ChecksumWord != "" {
			data["checksum_word"] = screen.ChecksumWord
		}
		return p.printJSON(data)
	case OutputFormatText:
		switch screen.Outcome {
		case seedxor.OutcomeCompleted:
			fmt.Fprintf(p.writer, "All %d parts verified.\n", screen.NumParts)
		case seedxor.OutcomeAborted:
			fmt.Fprintln(p.writer, "Split aborted. Parts discarded.")
		default:
			fmt.Fprintf(p.writer, "Split %s.\n", screen.Outcome)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintRestoreResult prints the end of a restore flow
func (p *Printer) PrintRestoreResult(screen seedxor.Screen) error {
	switch p.format {
	case OutputFormatJSON:
		data := map[string]interface{}{
			"outcome": screen.Outcome.String(),
		}
		if screen.Commit != nil {
			data["path"] = string(screen.Commit.Path)
			data["parts"] = screen.Commit.Parts
			data["checksum_word"] = screen.Commit.ChecksumWord
		}
		return p.printJSON(data)
	case OutputFormatText:
		if screen.Commit == nil {
			fmt.Fprintf(p.writer, "Restore %s. Nothing was stored.\n", screen.Outcome)
			return nil
		}
		fmt.Fprintf(p.writer, "Combined %d parts. Final word: %s\n",
			screen.Commit.Parts, screen.Commit.ChecksumWord)
		if screen.Commit.Path == secretstore.CommitPermanent {
			fmt.Fprintln(p.writer, "Secret saved.")
		} else {
			fmt.Fprintln(p.writer, "Secret active for this session only; it is discarded when seedxor exits.")
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintStatus prints the secret store summary
func (p *Printer) PrintStatus(st secretstore.Status) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"durable":        st.Durable,
			"durable_mode":   string(st.DurableMode),
			"ephemeral":      st.Ephemeral,
			"ephemeral_mode": string(st.EphemeralMode),
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Durable:   %s\n", describeSlot(st.Durable, string(st.DurableMode)))
		fmt.Fprintf(p.writer, "Ephemeral: %s\n", describeSlot(st.Ephemeral, string(st.EphemeralMode)))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

func describeSlot(present bool, mode string) string {
	if !present {
		return "empty"
	}
	return strings.TrimSpace("present " + mode)
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status":  "success",
			"message": message,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
