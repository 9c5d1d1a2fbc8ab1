// Package catalog parses, validates and serializes Qt TS translation catalogs.
//
// A Catalog is built once by Load and treated as read-only afterwards;
// consumers that need an index (see package lookup) build their own.
package catalog

import (
	"golang.org/x/text/language"
)

// Status is the translation state recorded in <translation type="...">.
type Status string

const (
	StatusTranslated Status = "translated"
	StatusUnfinished Status = "unfinished"
	StatusObsolete   Status = "obsolete"
)

// Catalog is the root of one parsed TS file.
type Catalog struct {
	// Language is the language attribute as written ("fr", "pt_BR").
	Language string
	// Tag is Language parsed as a BCP 47 tag.
	Tag            language.Tag
	SourceLanguage string
	Version        string
	Contexts       []Context
}

// Context groups the messages of one UI component.
type Context struct {
	Name     string
	Messages []Message
	// Line is where the context started in the input, 0 when unknown.
	Line int
}

// Message is one translatable unit.
type Message struct {
	// ID is the optional id attribute used by id-based TS files.
	ID                string
	Source            string
	Comment           string
	ExtraComment      string
	TranslatorComment string
	Locations         []Location
	Numerus           bool
	Status            Status
	Translation       Payload
	Line              int
}

// Payload holds either a single translation or ordered numerus forms.
type Payload struct {
	Text  string
	Forms []string
}

// IsPlural reports whether the payload was written as numerus forms.
func (p Payload) IsPlural() bool {
	return len(p.Forms) > 0
}

// Location is advisory metadata pointing to where the source string lives.
// Line is 0 when the attribute was absent.
type Location struct {
	File string
	Line int
}

// Context returns the context named name.
func (c *Catalog) Context(name string) (*Context, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Contexts {
		if c.Contexts[i].Name == name {
			return &c.Contexts[i], true
		}
	}
	return nil, false
}

// Stats counts messages per status.
type Stats struct {
	Contexts   int `json:"contexts"`
	Messages   int `json:"messages"`
	Translated int `json:"translated"`
	Unfinished int `json:"unfinished"`
	Obsolete   int `json:"obsolete"`
	Plural     int `json:"plural"`
}

func (c *Catalog) Stats() Stats {
	stats := Stats{}
	if c == nil {
		return stats
	}
	stats.Contexts = len(c.Contexts)
	for _, ctx := range c.Contexts {
		for _, msg := range ctx.Messages {
			stats.Messages++
			switch msg.Status {
			case StatusTranslated:
				stats.Translated++
			case StatusUnfinished:
				stats.Unfinished++
			case StatusObsolete:
				stats.Obsolete++
			}
			if msg.Numerus {
				stats.Plural++
			}
		}
	}
	return stats
}
