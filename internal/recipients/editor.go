package recipients

import (
	"strings"

	"github.com/nhle/mailfront/internal/model"
)

// Editor is the state of the campaign editor: the campaign being edited,
// the name typed so far, and the normalized recipient list. All methods
// return a new Editor; nothing is mutated in place.
type Editor struct {
	base model.Campaign
	name string
	list List
}

// NewEditor seeds an editor from c. Existing addresses are joined one per
// line and normalized, so the stats shown for a loaded campaign match what
// a fresh paste of the same addresses would give.
func NewEditor(c model.Campaign) Editor {
	return Editor{
		base: c,
		name: c.Name,
		list: Normalize(strings.Join(c.Emails, "\n")),
	}
}

// Name returns the current list name.
func (e Editor) Name() string { return e.name }

// List returns the current normalized recipient list.
func (e Editor) List() List { return e.list }

// Stats returns the statistics of the current recipient list.
func (e Editor) Stats() Stats { return e.list.Stats }

// IsNew reports whether the campaign being edited has never been saved.
func (e Editor) IsNew() bool { return e.base.IsNew() }

// Title returns the dialog title for the editor.
func (e Editor) Title() string {
	if e.IsNew() {
		return "New Target List"
	}
	return "Edit Target List"
}

// WithName returns a copy with the list name replaced.
func (e Editor) WithName(name string) Editor {
	e.name = name
	return e
}

// WithText returns a copy whose recipient list is recomputed from raw.
func (e Editor) WithText(raw string) Editor {
	e.list = Normalize(raw)
	return e
}

// Clear returns a copy with an empty recipient list.
func (e Editor) Clear() Editor {
	e.list = Normalize("")
	return e
}

// Save validates the editor state and returns the campaign to submit. The
// identifier and creation time of the campaign being edited are carried
// over.
func (e Editor) Save() (model.Campaign, error) {
	c, err := ValidateForSave(e.name, e.list.Addresses)
	if err != nil {
		return model.Campaign{}, err
	}

	c.ID = e.base.ID
	c.CreatedAt = e.base.CreatedAt
	return c, nil
}
