package lookup

import (
	"fmt"
	"time"

	"horse.fit/tscat/internal/catalog"
	"horse.fit/tscat/internal/placeholder"
	"horse.fit/tscat/internal/plural"
)

// Request identifies one message and the values to render it with.
type Request struct {
	Context string `json:"context"`
	Source  string `json:"source"`
	// Comment selects among messages sharing a source text. When empty the
	// first visible message with that source is used.
	Comment string `json:"comment,omitempty"`
	// Count is required for numerus messages.
	Count *int  `json:"count,omitempty"`
	Args  []any `json:"args,omitempty"`
}

// Count is a convenience for building Request.Count.
func Count(n int) *int {
	return &n
}

// Result is a rendered translation.
type Result struct {
	Text    string `json:"text"`
	Context string `json:"context"`
	Source  string `json:"source"`
	// Unfinished is set when the translator has not signed the message off;
	// callers may prefer the source text.
	Unfinished bool `json:"unfinished"`
	// FormIndex is the numerus form used, -1 for non-plural messages.
	FormIndex int `json:"form_index"`
}

type indexKey struct {
	context string
	source  string
}

// Snapshot is an immutable, indexed view of one catalog. It is safe for
// concurrent use.
type Snapshot struct {
	catalog       *catalog.Catalog
	index         map[indexKey][]*catalog.Message
	rule          plural.RuleSet
	localeWarning error
	problems      catalog.ValidationErrors
	origin        string
	loadedAt      time.Time

	// Set by Service.Reload: the file state observed before reading it.
	fileModTime time.Time
	fileSize    int64
	fromFile    bool
}

// NewSnapshot validates cat, binds its plural rule and indexes every
// message that is not obsolete. Validation problems are recorded, not fatal.
func NewSnapshot(cat *catalog.Catalog, rules *plural.Registry, origin string, loadedAt time.Time) (*Snapshot, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if rules == nil {
		rules = plural.NewDefaultRegistry()
	}
	rule, warning := rules.Rule(cat.Language)

	snap := &Snapshot{
		catalog:       cat,
		index:         make(map[indexKey][]*catalog.Message),
		rule:          rule,
		localeWarning: warning,
		problems:      catalog.Validate(cat, rules),
		origin:        origin,
		loadedAt:      loadedAt,
	}
	for ci := range cat.Contexts {
		ctx := &cat.Contexts[ci]
		for mi := range ctx.Messages {
			msg := &ctx.Messages[mi]
			if msg.Status == catalog.StatusObsolete {
				continue
			}
			key := indexKey{context: ctx.Name, source: msg.Source}
			snap.index[key] = append(snap.index[key], msg)
		}
	}
	return snap, nil
}

func (s *Snapshot) Catalog() *catalog.Catalog { return s.catalog }

// Problems returns the validation errors found when the snapshot was built.
func (s *Snapshot) Problems() catalog.ValidationErrors { return s.problems }

// LocaleWarning is non-nil when the catalog language has no registered
// plural rule and the two-form default is in use.
func (s *Snapshot) LocaleWarning() error { return s.localeWarning }

// Ready reports whether the snapshot passed validation.
func (s *Snapshot) Ready() bool { return len(s.problems) == 0 }

func (s *Snapshot) Origin() string { return s.origin }

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// FileStat reports the modification time and size the catalog file had
// when it was read. ok is false for snapshots not loaded from a file.
func (s *Snapshot) FileStat() (modTime time.Time, size int64, ok bool) {
	return s.fileModTime, s.fileSize, s.fromFile
}

// Resolve renders the message identified by req.
func (s *Snapshot) Resolve(req Request) (Result, error) {
	msg := s.find(req)
	if msg == nil {
		return Result{}, &LookupError{Kind: MessageNotFound, Context: req.Context, Source: req.Source}
	}

	result := Result{
		Context:    req.Context,
		Source:     req.Source,
		Unfinished: msg.Status == catalog.StatusUnfinished,
		FormIndex:  -1,
	}

	text := msg.Translation.Text
	args := req.Args
	if msg.Numerus {
		if req.Count == nil {
			return Result{}, &LookupError{Kind: AmbiguousPluralRequest, Context: req.Context, Source: req.Source}
		}
		if forms := msg.Translation.Forms; len(forms) > 0 {
			idx := s.rule.FormIndex(*req.Count)
			if idx >= len(forms) {
				idx = len(forms) - 1
			}
			text = forms[idx]
			result.FormIndex = idx
		}
		// The count doubles as the only argument when none are given.
		if len(args) == 0 {
			args = []any{*req.Count}
		}
	}

	rendered, err := placeholder.Render(text, req.Count, args)
	if err != nil {
		return Result{}, &LookupError{Kind: MissingSubstitution, Context: req.Context, Source: req.Source, Err: err}
	}
	result.Text = rendered
	return result, nil
}

func (s *Snapshot) find(req Request) *catalog.Message {
	candidates := s.index[indexKey{context: req.Context, source: req.Source}]
	if len(candidates) == 0 {
		return nil
	}
	if req.Comment == "" {
		return candidates[0]
	}
	var uncommented *catalog.Message
	for _, msg := range candidates {
		if msg.Comment == req.Comment {
			return msg
		}
		if msg.Comment == "" && uncommented == nil {
			uncommented = msg
		}
	}
	return uncommented
}
