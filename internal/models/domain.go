package models

import (
	"fmt"
	"strings"
)

// Action defines what the shelve command does with each resolved mapping.
type Action string

const (
	ActionPrint          Action = "print"
	ActionShelveNew      Action = "shelve-new"
	ActionUpdateExisting Action = "update-existing"
	ActionUpdateOrShelve Action = "update-or-shelve"
)

var validActions = map[Action]struct{}{
	ActionPrint:          {},
	ActionShelveNew:      {},
	ActionUpdateExisting: {},
	ActionUpdateOrShelve: {},
}

// ParseAction validates and normalizes an action name.
func ParseAction(raw string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := validActions[action]; !ok {
		return "", fmt.Errorf("invalid action %q", raw)
	}
	return action, nil
}

// Mutates reports whether the action performs external mutations.
func (a Action) Mutates() bool {
	return a != ActionPrint
}
