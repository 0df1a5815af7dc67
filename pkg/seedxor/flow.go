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

package seedxor

import "fmt"

// Input is an action taken by the user at a flow suspension point.
type Input interface {
	input()
}

type (
	// Continue accepts the current screen.
	Continue struct{}

	// Abort backs out of the current screen.
	Abort struct{}

	// Confirm accepts a destructive prompt.
	Confirm struct{}

	// SelectPartCount picks the number of parts for a split.
	SelectPartCount struct{ N int }

	// UseRandomMasks picks random masks instead of deterministic ones.
	UseRandomMasks struct{}

	// IncludeDeviceSecret counts the device's secret as the first part.
	IncludeDeviceSecret struct{}

	// SubmitPart enters one 24-word part.
	SubmitPart struct{ Words []string }

	// Finish commits the parts entered so far.
	Finish struct{}
)

func (Continue) input()            {}
func (Abort) input()               {}
func (Confirm) input()             {}
func (SelectPartCount) input()     {}
func (UseRandomMasks) input()      {}
func (IncludeDeviceSecret) input() {}
func (SubmitPart) input()          {}
func (Finish) input()              {}

// Outcome is the terminal result of a flow.
type Outcome int

const (
	// OutcomePending means the flow still waits for input.
	OutcomePending Outcome = iota

	// OutcomeCompleted means the split was verified or the restore committed.
	OutcomeCompleted

	// OutcomeAborted means the user cancelled and nothing was kept.
	OutcomeAborted

	// OutcomeFailed means an error ended the flow.
	OutcomeFailed
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeCompleted:
		return "completed"
	case OutcomeAborted:
		return "aborted"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Step names a flow suspension point.
type Step string

const (
	// StepChoosePartCount waits for SelectPartCount.
	StepChoosePartCount Step = "choose-part-count"

	// StepChooseMaskSource waits for Continue or UseRandomMasks.
	StepChooseMaskSource Step = "choose-mask-source"

	// StepShowParts displays the report until Continue or Abort.
	StepShowParts Step = "show-parts"

	// StepConfirmDiscard asks before random parts are thrown away.
	StepConfirmDiscard Step = "confirm-discard"

	// StepVerifyPart waits for the part named by PartLabel to be typed back.
	StepVerifyPart Step = "verify-part"

	// StepPreloadChoice offers to count the device secret as part A.
	StepPreloadChoice Step = "preload-choice"

	// StepEnterPart waits for the next part of a restore.
	StepEnterPart Step = "enter-part"

	// StepPartAccepted reports progress and waits for Continue or Finish.
	StepPartAccepted Step = "part-accepted"

	// StepDone is terminal; Outcome holds the result.
	StepDone Step = "done"
)

// Screen describes what a flow is waiting for. Only the fields relevant
// to Step are set.
type Screen struct {
	Step    Step
	Outcome Outcome

	// NumParts is the chosen part count of a split.
	NumParts int

	// Report holds the parts to write down at StepShowParts.
	Report *Report

	// PartLabel is the part being verified or entered.
	PartLabel string

	// PartsEntered counts parts accepted by a restore.
	PartsEntered int

	// ChecksumWord is shown once it is meaningful.
	ChecksumWord string

	// CanPreload tells whether IncludeDeviceSecret is offered.
	CanPreload bool

	// Commit reports where a completed restore went.
	Commit *CommitResult

	// Err is the terminal error of a failed flow.
	Err error
}

// Done reports whether the flow has ended.
func (s Screen) Done() bool {
	return s.Outcome != OutcomePending
}
