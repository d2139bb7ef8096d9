package preview

import "github.com/mhpenta/imagestudio/internal/keys"

// Action is a navigation command.
type Action int

const (
	ActionPrev Action = iota
	ActionNext
	ActionClose
)

func (a Action) String() string {
	switch a {
	case ActionPrev:
		return "prev"
	case ActionNext:
		return "next"
	case ActionClose:
		return "close"
	default:
		return "unknown"
	}
}

// Bindings maps key names, as reported by the terminal, to actions.
var Bindings = map[string]Action{
	keys.Left:   ActionPrev,
	keys.Right:  ActionNext,
	keys.Escape: ActionClose,
}

// Apply performs action against a list of the given length.
func (n *Navigator) Apply(action Action, length int) {
	switch action {
	case ActionPrev:
		n.Prev()
	case ActionNext:
		n.Next(length)
	case ActionClose:
		n.Close()
	}
}

// HandleKey applies the action bound to key and reports whether key was bound.
func (n *Navigator) HandleKey(key string, length int) bool {
	action, ok := Bindings[key]
	if !ok {
		return false
	}
	n.Apply(action, length)
	return true
}

// Actions lists what the modal offers for an image from a given source.
type Actions struct {
	Download   bool
	Variation  bool
	Regenerate bool
	Delete     bool
}

// ActionsFor returns the modal actions for source. Regenerate is offered
// only for fresh results and Delete only for saved gallery images.
func ActionsFor(source Source) Actions {
	return Actions{
		Download:   true,
		Variation:  true,
		Regenerate: source == SourceResults,
		Delete:     source == SourceGallery,
	}
}
