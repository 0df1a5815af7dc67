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
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeremyhahn/go-seedxor/pkg/mnemonic"
)

// errInputClosed is returned when stdin ends in the middle of a flow
var errInputClosed = errors.New("input closed before the flow finished")

// prompter reads one answer per line
type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{scanner: bufio.NewScanner(in), out: out}
}

// ask prints prompt and returns the next trimmed line
func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// expandWords splits a line into words, completing unique prefixes
func expandWords(line string) []string {
	fields := strings.Fields(line)
	words := make([]string, len(fields))
	for i, f := range fields {
		if full, ok := mnemonic.Complete(f); ok {
			words[i] = full
		} else {
			words[i] = f
		}
	}
	return words
}
