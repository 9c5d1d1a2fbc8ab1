package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const indentUnit = "    "

// Encode writes cat as TS markup in the layout lupdate produces. Loading
// the output yields the same contexts, messages, statuses and locations.
func Encode(w io.Writer, cat *Catalog) error {
	if cat == nil {
		return fmt.Errorf("catalog is nil")
	}

	bw := bufio.NewWriter(w)
	e := &encoder{w: bw}

	e.line(0, `<?xml version="1.0" encoding="utf-8"?>`)
	e.line(0, `<!DOCTYPE TS>`)

	root := `<TS version="` + escapeAttr(cat.Version) + `" language="` + escapeAttr(cat.Language) + `"`
	if cat.SourceLanguage != "" {
		root += ` sourcelanguage="` + escapeAttr(cat.SourceLanguage) + `"`
	}
	e.line(0, root+">")

	for _, ctx := range cat.Contexts {
		e.encodeContext(ctx)
	}

	e.line(0, "</TS>")
	if e.err != nil {
		return fmt.Errorf("encode catalog: %w", e.err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush catalog: %w", err)
	}
	return nil
}

// EncodeString is Encode into a string.
func EncodeString(cat *Catalog) (string, error) {
	var b strings.Builder
	if err := Encode(&b, cat); err != nil {
		return "", err
	}
	return b.String(), nil
}

type encoder struct {
	w   *bufio.Writer
	err error
}

func (e *encoder) line(depth int, text string) {
	if e.err != nil {
		return
	}
	if _, err := e.w.WriteString(strings.Repeat(indentUnit, depth) + text + "\n"); err != nil {
		e.err = err
	}
}

func (e *encoder) element(depth int, name, text string) {
	e.line(depth, "<"+name+">"+escapeText(text)+"</"+name+">")
}

func (e *encoder) encodeContext(ctx Context) {
	e.line(0, "<context>")
	e.element(1, "name", ctx.Name)
	for _, msg := range ctx.Messages {
		e.encodeMessage(msg)
	}
	e.line(0, "</context>")
}

func (e *encoder) encodeMessage(msg Message) {
	open := "<message"
	if msg.ID != "" {
		open += ` id="` + escapeAttr(msg.ID) + `"`
	}
	if msg.Numerus {
		open += ` numerus="yes"`
	}
	e.line(1, open+">")

	for _, loc := range msg.Locations {
		tag := `<location filename="` + escapeAttr(loc.File) + `"`
		if loc.Line > 0 {
			tag += ` line="` + strconv.Itoa(loc.Line) + `"`
		}
		e.line(2, tag+"/>")
	}
	e.element(2, "source", msg.Source)
	if msg.Comment != "" {
		e.element(2, "comment", msg.Comment)
	}
	if msg.ExtraComment != "" {
		e.element(2, "extracomment", msg.ExtraComment)
	}
	if msg.TranslatorComment != "" {
		e.element(2, "translatorcomment", msg.TranslatorComment)
	}

	open = "<translation"
	switch msg.Status {
	case StatusUnfinished:
		open += ` type="unfinished"`
	case StatusObsolete:
		open += ` type="obsolete"`
	}
	open += ">"

	if len(msg.Translation.Forms) == 0 {
		e.line(2, open+escapeText(msg.Translation.Text)+"</translation>")
	} else {
		e.line(2, open)
		for _, form := range msg.Translation.Forms {
			e.element(3, "numerusform", form)
		}
		e.line(2, "</translation>")
	}
	e.line(1, "</message>")
}

func escapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '&':
			b.WriteString("&amp;")
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case r == '\r':
			b.WriteString("&#xd;")
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r < 0x20:
			// Not representable in XML 1.0, so Qt writes a <byte> element.
			b.WriteString(`<byte value="x` + strconv.FormatInt(int64(r), 16) + `"/>`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeAttr(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#xa;",
		"\r", "&#xd;",
		"\t", "&#x9;",
	)
	return replacer.Replace(s)
}
