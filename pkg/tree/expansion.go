package tree

import "slices"

// Mode says who owns an expansion set.
type Mode int

const (
	// Owned controllers keep their own set and apply changes locally.
	Owned Mode = iota
	// External controllers only propose changes; the host owns the set and
	// feeds it back through Sync.
	External
)

func (m Mode) String() string {
	if m == External {
		return "external"
	}
	return "owned"
}

// Expansion tracks which node IDs are expanded.
//
// Every change is a full replacement: the current slice is never modified in
// place, so a host that compares slices by identity sees each change. Multiple
// branches can be open at once; expanding one never collapses another.
//
// An Expansion is not safe for concurrent use. Hosts serialize toggles into
// their own update loop.
type Expansion struct {
	mode     Mode
	ids      []string
	onChange func(next []string)
}

// NewOwnedExpansion returns a controller that owns its set, seeded once from
// policy resolved against forest. onChange, if non-nil, is told about every
// applied change.
func NewOwnedExpansion(policy ExpansionPolicy, forest []*Node, onChange func(next []string)) *Expansion {
	return &Expansion{
		mode:     Owned,
		ids:      policy.Resolve(forest),
		onChange: onChange,
	}
}

// NewExternalExpansion returns a controller whose set belongs to the host.
// current is the host's set as of now; changes are only proposed through
// onChange and take effect once the host calls Sync.
func NewExternalExpansion(current []string, onChange func(next []string)) *Expansion {
	if current == nil {
		current = []string{}
	}
	return &Expansion{
		mode:     External,
		ids:      current,
		onChange: onChange,
	}
}

// Mode reports who owns the set.
func (e *Expansion) Mode() Mode { return e.mode }

// IDs returns the current expansion set. Callers must not modify it.
func (e *Expansion) IDs() []string { return e.ids }

// IsExpanded reports whether id is in the current set.
func (e *Expansion) IsExpanded(id string) bool {
	return slices.Contains(e.ids, id)
}

// Len returns the size of the current set.
func (e *Expansion) Len() int { return len(e.ids) }

// Toggle removes id from the set if present and appends it otherwise, and
// returns the resulting set. Owned controllers apply it; external ones only
// report it through onChange.
func (e *Expansion) Toggle(id string) []string {
	var next []string
	if e.IsExpanded(id) {
		next = make([]string, 0, len(e.ids))
		for _, existing := range e.ids {
			if existing != id {
				next = append(next, existing)
			}
		}
	} else {
		next = make([]string, len(e.ids), len(e.ids)+1)
		copy(next, e.ids)
		next = append(next, id)
	}
	return e.propose(next)
}

// Expand adds every given ID that is not already expanded. When nothing would
// change, no notification is sent and the current set is returned.
func (e *Expansion) Expand(ids ...string) []string {
	var missing []string
	for _, id := range ids {
		if !e.IsExpanded(id) && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return e.ids
	}
	next := make([]string, 0, len(e.ids)+len(missing))
	next = append(next, e.ids...)
	next = append(next, missing...)
	return e.propose(next)
}

// Collapse removes the given IDs. When none of them are expanded nothing is
// sent and the current set is returned.
func (e *Expansion) Collapse(ids ...string) []string {
	next := make([]string, 0, len(e.ids))
	for _, existing := range e.ids {
		if !slices.Contains(ids, existing) {
			next = append(next, existing)
		}
	}
	if len(next) == len(e.ids) {
		return e.ids
	}
	return e.propose(next)
}

// Replace proposes a whole new set, e.g. for expand-all or collapse-all.
func (e *Expansion) Replace(ids []string) []string {
	return e.propose(dedupe(ids))
}

// Sync installs the host's current set. It is how external controllers learn
// about accepted changes; owned controllers treat it as a silent reset.
func (e *Expansion) Sync(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	e.ids = ids
}

func (e *Expansion) propose(next []string) []string {
	if e.mode == Owned {
		e.ids = next
	}
	if e.onChange != nil {
		e.onChange(next)
	}
	return next
}
