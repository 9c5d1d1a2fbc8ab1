package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"horse.fit/tscat/internal/catalog"
)

// Format is a go-i18n message file format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "toml" or "json", case-insensitively.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatTOML, "":
		return FormatTOML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want toml or json)", raw)
	}
}

// FileName follows the go-i18n convention: active.<lang>.<format>.
func FileName(lang string, format Format) string {
	return "active." + lang + "." + string(format)
}

// Marshal encodes messages as a go-i18n message file keyed by message id.
func Marshal(messages []*i18n.Message, format Format) ([]byte, error) {
	doc := make(map[string]map[string]string, len(messages))
	for _, msg := range messages {
		if msg == nil || msg.ID == "" {
			continue
		}
		doc[msg.ID] = messageFields(msg)
	}

	switch format {
	case FormatTOML:
		return toml.Marshal(doc)
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Verify loads data into a fresh go-i18n bundle and checks that every
// message in want came back unchanged and that non-plural messages
// localize without error.
func Verify(tag language.Tag, format Format, data []byte, want []*i18n.Message) error {
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	file, err := bundle.ParseMessageFileBytes(data, FileName(tag.String(), format))
	if err != nil {
		return fmt.Errorf("parse exported messages: %w", err)
	}
	parsed := make(map[string]*i18n.Message, len(file.Messages))
	for _, msg := range file.Messages {
		parsed[msg.ID] = msg
	}

	localizer := i18n.NewLocalizer(bundle, tag.String())
	for _, msg := range want {
		got, ok := parsed[msg.ID]
		if !ok {
			return fmt.Errorf("message %q missing after export", msg.ID)
		}
		wantFields, gotFields := messageFields(msg), messageFields(got)
		if len(wantFields) != len(gotFields) {
			return fmt.Errorf("message %q changed during export", msg.ID)
		}
		for key, value := range wantFields {
			if gotFields[key] != value {
				return fmt.Errorf("message %q: field %s changed during export", msg.ID, key)
			}
		}
		if isPlural(msg) {
			continue
		}
		if _, err := localizer.Localize(&i18n.LocalizeConfig{
			MessageID:    msg.ID,
			TemplateData: map[string]any{},
		}); err != nil {
			return fmt.Errorf("localize %q: %w", msg.ID, err)
		}
	}
	return nil
}

// Write converts cat, verifies the encoded file and writes it into dir.
// It returns the path written and the conversion result.
func Write(dir string, cat *catalog.Catalog, format Format, opts Options) (string, Result, error) {
	result, err := Messages(cat, opts)
	if err != nil {
		return "", result, err
	}
	data, err := Marshal(result.Messages, format)
	if err != nil {
		return "", result, fmt.Errorf("encode %s: %w", format, err)
	}
	if err := Verify(cat.Tag, format, data, result.Messages); err != nil {
		return "", result, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", result, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, FileName(cat.Tag.String(), format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", result, fmt.Errorf("write %s: %w", path, err)
	}
	return path, result, nil
}

func messageFields(msg *i18n.Message) map[string]string {
	fields := make(map[string]string, 3)
	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	set("description", msg.Description)
	set("zero", msg.Zero)
	set("one", msg.One)
	set("two", msg.Two)
	set("few", msg.Few)
	set("many", msg.Many)
	set("other", msg.Other)
	return fields
}

func isPlural(msg *i18n.Message) bool {
	return msg.Zero != "" || msg.One != "" || msg.Two != "" || msg.Few != "" || msg.Many != ""
}
