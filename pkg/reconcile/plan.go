// Package reconcile computes and executes the minimal attachment operations
// needed to move an item's attachment set from its baseline state to the
// state the user left it in.
package reconcile

import (
	"github.com/goliatone/go-listsync/pkg/store"
)

// Plan is the ordered work derived from diffing a current attachment set
// against its baseline. Deletes run before uploads.
type Plan struct {
	Uploads []store.Attachment
	Deletes []string
}

// Empty reports whether the plan carries no work.
func (p Plan) Empty() bool {
	return len(p.Uploads) == 0 && len(p.Deletes) == 0
}

// BuildPlan diffs current against baseline by name identity (remote id when
// present, file name otherwise). Every current entry with a pending file and
// no id is uploaded regardless of baseline membership; every baseline key
// absent from current is deleted. The diff is deliberately name-based, not
// content-based: a renamed pending upload shows up as an add, and the old
// name is deleted only if it also disappeared from current.
func BuildPlan(current, baseline []store.Attachment) Plan {
	var plan Plan

	currentKeys := make(map[string]struct{}, len(current))
	for _, att := range current {
		currentKeys[att.Key()] = struct{}{}
		if att.PendingFile != nil && att.ID == "" {
			plan.Uploads = append(plan.Uploads, att)
		}
	}

	for _, att := range baseline {
		key := att.Key()
		if _, ok := currentKeys[key]; !ok {
			plan.Deletes = append(plan.Deletes, key)
		}
	}

	return plan
}
