package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	langtag "horse.fit/tscat/internal/language"
)

// LoadFile parses the TS file at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	cat, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cat, nil
}

// LoadString parses TS markup held in memory.
func LoadString(markup string) (*Catalog, error) {
	return Load(strings.NewReader(markup))
}

// Load parses TS markup. Any failure is a *ParseError and no catalog is
// returned with it. A leading UTF-8 or UTF-16 byte-order mark is honoured.
func Load(r io.Reader) (*Catalog, error) {
	if r == nil {
		return nil, &ParseError{Kind: MalformedMarkup, Detail: "reader is nil"}
	}

	decoder := xml.NewDecoder(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	decoder.Strict = true
	decoder.CharsetReader = charsetReader

	p := &parser{d: decoder}
	cat, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// charsetReader is consulted for non UTF-8 encoding declarations. UTF-16
// input has already been transcoded by the BOM override.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8", "utf-16", "utf-16le", "utf-16be", "ucs-2":
		return input, nil
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

type parser struct {
	d *xml.Decoder
}

func (p *parser) line() int {
	line, _ := p.d.InputPos()
	return line
}

func (p *parser) malformed(err error, detail string) *ParseError {
	return &ParseError{Kind: MalformedMarkup, Line: p.line(), Detail: detail, Err: err}
}

func (p *parser) missing(detail string) *ParseError {
	return &ParseError{Kind: MissingRequiredField, Line: p.line(), Detail: detail}
}

// token wraps Decoder.Token, turning a premature EOF into MalformedMarkup.
func (p *parser) token() (xml.Token, error) {
	tok, err := p.d.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, p.malformed(nil, "unexpected end of document")
		}
		return nil, p.malformed(err, "")
	}
	return tok, nil
}

func (p *parser) skip() error {
	if err := p.d.Skip(); err != nil {
		return p.malformed(err, "")
	}
	return nil
}

func (p *parser) parseDocument() (*Catalog, error) {
	for {
		tok, err := p.d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, p.malformed(nil, "document has no <TS> root element")
			}
			return nil, p.malformed(err, "")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "TS" {
			return nil, p.malformed(nil, fmt.Sprintf("root element must be <TS>, got <%s>", start.Name.Local))
		}
		cat, err := p.parseRoot(start)
		if err != nil {
			return nil, err
		}
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return cat, nil
	}
}

// expectEnd rejects anything but whitespace, comments and processing
// instructions after the root element.
func (p *parser) expectEnd() error {
	for {
		tok, err := p.d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return p.malformed(err, "")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return p.malformed(nil, fmt.Sprintf("unexpected <%s> after </TS>", t.Name.Local))
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return p.malformed(nil, "unexpected text after </TS>")
			}
		}
	}
}

func (p *parser) parseRoot(start xml.StartElement) (*Catalog, error) {
	version, hasVersion := attr(start, "version")
	if !hasVersion || strings.TrimSpace(version) == "" {
		return nil, p.missing("<TS> version attribute")
	}
	version = strings.TrimSpace(version)
	if !supportedVersion(version) {
		return nil, &ParseError{Kind: UnsupportedVersion, Line: p.line(), Detail: fmt.Sprintf("version %q", version)}
	}

	lang, hasLang := attr(start, "language")
	if !hasLang || strings.TrimSpace(lang) == "" {
		return nil, p.missing("<TS> language attribute")
	}
	lang = strings.TrimSpace(lang)
	tag, err := langtag.Canonical(lang)
	if err != nil {
		return nil, p.malformed(err, "<TS> language attribute")
	}

	sourceLang, _ := attr(start, "sourcelanguage")

	cat := &Catalog{
		Language:       lang,
		Tag:            tag,
		SourceLanguage: strings.TrimSpace(sourceLang),
		Version:        version,
	}
	positions := map[string]int{}

	for {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "context" {
				if err := p.skip(); err != nil {
					return nil, err
				}
				continue
			}
			ctx, err := p.parseContext()
			if err != nil {
				return nil, err
			}
			// Repeated context blocks are folded into the first one.
			if idx, seen := positions[ctx.Name]; seen {
				cat.Contexts[idx].Messages = append(cat.Contexts[idx].Messages, ctx.Messages...)
				continue
			}
			positions[ctx.Name] = len(cat.Contexts)
			cat.Contexts = append(cat.Contexts, ctx)
		case xml.EndElement:
			return cat, nil
		}
	}
}

func (p *parser) parseContext() (Context, error) {
	ctx := Context{Line: p.line()}
	hasName := false

	for {
		tok, err := p.token()
		if err != nil {
			return Context{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				name, err := p.readText()
				if err != nil {
					return Context{}, err
				}
				ctx.Name = name
				hasName = true
			case "message":
				msg, err := p.parseMessage(t)
				if err != nil {
					return Context{}, err
				}
				ctx.Messages = append(ctx.Messages, msg)
			default:
				if err := p.skip(); err != nil {
					return Context{}, err
				}
			}
		case xml.EndElement:
			if !hasName {
				return Context{}, p.missing("<context> requires <name>")
			}
			return ctx, nil
		}
	}
}

func (p *parser) parseMessage(start xml.StartElement) (Message, error) {
	msg := Message{Line: p.line(), Status: StatusUnfinished}
	if numerus, ok := attr(start, "numerus"); ok && strings.EqualFold(strings.TrimSpace(numerus), "yes") {
		msg.Numerus = true
	}
	if id, ok := attr(start, "id"); ok {
		msg.ID = id
	}
	hasSource := false

	for {
		tok, err := p.token()
		if err != nil {
			return Message{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "source":
				text, err := p.readText()
				if err != nil {
					return Message{}, err
				}
				msg.Source = text
				hasSource = true
			case "comment":
				if msg.Comment, err = p.readText(); err != nil {
					return Message{}, err
				}
			case "extracomment":
				if msg.ExtraComment, err = p.readText(); err != nil {
					return Message{}, err
				}
			case "translatorcomment":
				if msg.TranslatorComment, err = p.readText(); err != nil {
					return Message{}, err
				}
			case "location":
				loc, err := p.parseLocation(t)
				if err != nil {
					return Message{}, err
				}
				msg.Locations = append(msg.Locations, loc)
			case "translation":
				payload, status, err := p.parseTranslation(t)
				if err != nil {
					return Message{}, err
				}
				msg.Translation = payload
				msg.Status = status
			default:
				if err := p.skip(); err != nil {
					return Message{}, err
				}
			}
		case xml.EndElement:
			if !hasSource {
				return Message{}, p.missing("<message> requires <source>")
			}
			return msg, nil
		}
	}
}

func (p *parser) parseLocation(start xml.StartElement) (Location, error) {
	loc := Location{}
	loc.File, _ = attr(start, "filename")
	if raw, ok := attr(start, "line"); ok && strings.TrimSpace(raw) != "" {
		line, err := strconv.Atoi(strings.TrimSpace(raw))
		// Line numbers are advisory; a bad value is dropped, not fatal.
		if err == nil && line > 0 {
			loc.Line = line
		}
	}
	if err := p.skip(); err != nil {
		return Location{}, err
	}
	return loc, nil
}

func (p *parser) parseTranslation(start xml.StartElement) (Payload, Status, error) {
	status := StatusTranslated
	if kind, ok := attr(start, "type"); ok {
		switch strings.ToLower(strings.TrimSpace(kind)) {
		case "unfinished":
			status = StatusUnfinished
		case "obsolete", "vanished":
			status = StatusObsolete
		}
	}

	var (
		payload Payload
		text    strings.Builder
	)
	for {
		tok, err := p.token()
		if err != nil {
			return Payload{}, "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "numerusform":
				form, err := p.readText()
				if err != nil {
					return Payload{}, "", err
				}
				payload.Forms = append(payload.Forms, form)
			case "byte":
				r, err := p.readByte(t)
				if err != nil {
					return Payload{}, "", err
				}
				text.WriteRune(r)
			case "lengthvariant":
				variant, err := p.readText()
				if err != nil {
					return Payload{}, "", err
				}
				if text.Len() == 0 || strings.TrimSpace(text.String()) == "" {
					text.Reset()
					text.WriteString(variant)
				}
			default:
				if err := p.skip(); err != nil {
					return Payload{}, "", err
				}
			}
		case xml.EndElement:
			if len(payload.Forms) > 0 {
				// Indentation around <numerusform> entries is not content.
				if trimmed := strings.TrimSpace(text.String()); trimmed != "" {
					payload.Text = text.String()
				}
			} else {
				payload.Text = text.String()
			}
			return payload, status, nil
		}
	}
}

// readText returns the character data of the current element. Qt escapes
// control characters as <byte value="x1b"/>; those are decoded. When the
// element only carries <lengthvariant> children the first one is used.
func (p *parser) readText() (string, error) {
	var (
		b       strings.Builder
		variant string
		hasVar  bool
	)
	for {
		tok, err := p.token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "byte":
				r, err := p.readByte(t)
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
			case "lengthvariant":
				text, err := p.readText()
				if err != nil {
					return "", err
				}
				if !hasVar {
					variant = text
					hasVar = true
				}
			default:
				if err := p.skip(); err != nil {
					return "", err
				}
			}
		case xml.EndElement:
			if hasVar && strings.TrimSpace(b.String()) == "" {
				return variant, nil
			}
			return b.String(), nil
		}
	}
}

func (p *parser) readByte(start xml.StartElement) (rune, error) {
	raw, _ := attr(start, "value")
	raw = strings.TrimSpace(raw)
	var (
		value int64
		err   error
	)
	switch {
	case strings.HasPrefix(raw, "x") || strings.HasPrefix(raw, "X"):
		value, err = strconv.ParseInt(raw[1:], 16, 32)
	default:
		value, err = strconv.ParseInt(raw, 10, 32)
	}
	if err != nil || value < 0 {
		return 0, p.malformed(err, fmt.Sprintf("invalid <byte value=%q>", raw))
	}
	if err := p.skip(); err != nil {
		return 0, err
	}
	return rune(value), nil
}

func attr(start xml.StartElement, name string) (string, bool) {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func supportedVersion(version string) bool {
	major, _, _ := strings.Cut(version, ".")
	switch major {
	case "1", "2":
		return true
	}
	return false
}
