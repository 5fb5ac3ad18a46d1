package reconcile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/portfolio-content-api/internal/models"
)

// FormKind tags the active FormMode variant
type FormKind int

const (
	ModeCreate FormKind = iota
	ModeEdit
)

func (k FormKind) String() string {
	if k == ModeEdit {
		return "edit"
	}
	return "create"
}

// FormMode is either Create(draft) or Edit(id, draft). ID is empty in
// Create mode.
type FormMode[T models.Record] struct {
	Kind  FormKind
	ID    string
	Draft T
}

// Create starts a create form
func Create[T models.Record](draft T) FormMode[T] {
	return FormMode[T]{Kind: ModeCreate, Draft: draft}
}

// Edit snapshots rec into an edit form
func Edit[T models.Record](rec T) FormMode[T] {
	return FormMode[T]{Kind: ModeEdit, ID: rec.GetID(), Draft: rec}
}

// FormState holds the create draft and, while editing, the edit form.
// Only the active mode's draft is ever written.
type FormState[T models.Record] struct {
	New     T
	Editing *FormMode[T]
}

// Active returns the mode field updates are routed to
func (s FormState[T]) Active() FormMode[T] {
	if s.Editing != nil {
		return *s.Editing
	}
	return Create(s.New)
}

// ActionKind names a form transition
type ActionKind int

const (
	ActionSetField ActionKind = iota
	ActionBeginEdit
	ActionCancelEdit
	ActionSaved
)

// Action is one form event. Field and Value apply to ActionSetField;
// Record applies to ActionBeginEdit and ActionSaved.
type Action[T models.Record] struct {
	Kind   ActionKind
	Field  string
	Value  string
	Record T
}

// FieldSetter writes value into the named field of rec
type FieldSetter[T models.Record] func(rec T, field, value string) (T, error)

// Reduce is the single transition function for form state
func Reduce[T models.Record](s FormState[T], a Action[T], set FieldSetter[T], blank T) (FormState[T], error) {
	switch a.Kind {
	case ActionSetField:
		if s.Editing != nil {
			draft, err := set(s.Editing.Draft, a.Field, a.Value)
			if err != nil {
				return s, err
			}
			edit := FormMode[T]{Kind: ModeEdit, ID: s.Editing.ID, Draft: draft}
			return FormState[T]{New: s.New, Editing: &edit}, nil
		}
		draft, err := set(s.New, a.Field, a.Value)
		if err != nil {
			return s, err
		}
		return FormState[T]{New: draft, Editing: s.Editing}, nil

	case ActionBeginEdit:
		edit := Edit(a.Record)
		return FormState[T]{New: s.New, Editing: &edit}, nil

	case ActionCancelEdit:
		return FormState[T]{New: s.New}, nil

	case ActionSaved:
		// a saved create clears the create draft; a saved edit leaves it alone
		if s.Editing != nil {
			return FormState[T]{New: s.New}, nil
		}
		return FormState[T]{New: blank}, nil
	}
	return s, fmt.Errorf("unknown form action %d", a.Kind)
}

// ApplyFields routes each field update through Reduce in the state's
// active mode, in sorted field order
func ApplyFields[T models.Record](s FormState[T], fields map[string]string, set FieldSetter[T], blank T) (FormState[T], error) {
	for _, name := range sortedKeys(fields) {
		var err error
		s, err = Reduce(s, Action[T]{Kind: ActionSetField, Field: name, Value: fields[name]}, set, blank)
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unknownField(field string) error {
	return models.Validationf("set field", "unknown field %q", field)
}

// parseRevision reads the optimistic concurrency token of an edit form
func parseRevision(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, models.Validationf("set field", "revision must be a non-negative integer")
	}
	return n, nil
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetProjectField is the FieldSetter for projects
func SetProjectField(p models.Project, field, value string) (models.Project, error) {
	switch field {
	case "title":
		p.Title = value
	case "category":
		p.Category = value
	case "description":
		p.Description = value
	case "client":
		p.Client = value
	case "year":
		p.Year = value
	case "role":
		p.Role = value
	case "aspect_ratio":
		p.AspectRatio = value
	case "images":
		p.Images = splitList(value)
		p.Image = ""
	case "image":
		// legacy single-image input lands in the images array
		p.Images = []string{value}
		p.Image = ""
	case "revision":
		n, err := parseRevision(value)
		if err != nil {
			return p, err
		}
		p.Revision = n
	default:
		return p, unknownField(field)
	}
	return p, nil
}

// SetArtworkField is the FieldSetter for artworks
func SetArtworkField(a models.Artwork, field, value string) (models.Artwork, error) {
	switch field {
	case "title":
		a.Title = value
	case "artist":
		a.Artist = value
	case "image":
		a.Image = value
	case "description":
		a.Description = value
	case "year":
		a.Year = value
	case "medium":
		a.Medium = value
	case "dimensions":
		a.Dimensions = value
	case "status":
		a.Status = models.ArtworkStatus(value)
	case "revision":
		n, err := parseRevision(value)
		if err != nil {
			return a, err
		}
		a.Revision = n
	default:
		return a, unknownField(field)
	}
	return a, nil
}

// SetBlogPostField is the FieldSetter for blog posts
func SetBlogPostField(b models.BlogPost, field, value string) (models.BlogPost, error) {
	switch field {
	case "title":
		b.Title = value
	case "date":
		b.Date = value
	case "tags":
		b.Tags = splitList(value)
	case "readTime":
		b.ReadTime = value
	case "excerpt":
		b.Excerpt = value
	case "image":
		b.Image = value
	case "content":
		b.Content = value
	case "revision":
		n, err := parseRevision(value)
		if err != nil {
			return b, err
		}
		b.Revision = n
	default:
		return b, unknownField(field)
	}
	return b, nil
}
