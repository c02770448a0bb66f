package ami

// Action is an outbound request: a flat string-keyed map that must
// contain an Action field. The client injects an ActionID if the
// caller has not set one.
type Action map[string]string

// NewAction returns an Action with the Action field set.
func NewAction(name string) Action {
	return Action{KeyAction: name}
}

// Name returns the value of the Action field.
func (a Action) Name() string { return a[KeyAction] }

// ID returns the ActionID, or "" when not yet assigned.
func (a Action) ID() string { return a[KeyActionID] }

// Clone returns a shallow copy. The client clones caller-supplied
// actions before injecting an ActionID so the caller's map is never
// mutated.
func (a Action) Clone() Action {
	out := make(Action, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	return out
}
