// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"strings"
)

// errConfirmationRequired is returned when a destructive action cannot
// prompt and --yes was not given.
var errConfirmationRequired = errors.New("confirmation required: re-run with --yes")

// confirm asks a yes/no question. Anything but y/yes is no.
func confirm(p prompter, question string) (bool, error) {
	answer, err := p.Prompt(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}

// unsavedChoice is the answer to the unsaved-changes prompt.
type unsavedChoice int

const (
	unsavedCancel unsavedChoice = iota
	unsavedSave
	unsavedDiscard
)

// askUnsaved asks what to do with unsaved changes before action.
func askUnsaved(p prompter, action string) (unsavedChoice, error) {
	answer, err := p.Prompt("You have unsaved changes. Save before " + action + "? [y]es/[n]o/[c]ancel: ")
	if err != nil {
		return unsavedCancel, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return unsavedSave, nil
	case "n", "no":
		return unsavedDiscard, nil
	}
	return unsavedCancel, nil
}
