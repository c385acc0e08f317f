package checkout

import (
	"errors"

	"github.com/obentoo/srcsync/internal/common/git"
	"github.com/obentoo/srcsync/internal/recipe"
)

// Checkout states reported by Inspect
const (
	StateMissing   = "missing"
	StateUpToDate  = "up to date"
	StateOutOfDate = "out of date"
	StateModified  = "modified"
)

// Inspection is a local-only view of a checkout
type Inspection struct {
	State    string
	Head     string   // Commit checked out, empty when missing
	Target   string   // Pinned commit if the reference is known locally
	Modified []string // Tracked files that differ from HEAD
}

// Inspect reports how the checkout compares to its pinned reference
// without fetching or modifying anything. A reference that has not been
// fetched yet reads as out of date.
func Inspect(runner git.GitExecutor, co recipe.Checkout) (*Inspection, error) {
	if !runner.IsRepository() {
		return &Inspection{State: StateMissing}, nil
	}

	head, err := runner.Head()
	if err != nil {
		return nil, err
	}
	ins := &Inspection{Head: head}

	target, err := resolve(runner, co.RemoteName(), co.Reference)
	if err != nil && !errors.Is(err, ErrReferenceNotFound) {
		return nil, err
	}
	ins.Target = target

	if head == "" || head != target {
		ins.State = StateOutOfDate
		return ins, nil
	}

	ins.Modified, err = trackedChanges(runner)
	if err != nil {
		return nil, err
	}
	if len(ins.Modified) > 0 {
		ins.State = StateModified
	} else {
		ins.State = StateUpToDate
	}
	return ins, nil
}
