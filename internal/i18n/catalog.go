// Package i18n loads the translation catalogs and resolves message keys to
// localized, interpolated strings. Catalogs are loaded once at startup and
// are read-only afterwards.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
)

// DefaultLanguage is the fallback for unsupported or unresolved languages.
const DefaultLanguage = "kaz"

//go:embed locales/*.yaml
var localeFS embed.FS

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// MissingKeyError reports a message key absent from every catalog. Callers
// must recover explicitly; the raw key is never rendered to users silently.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("i18n: missing message key %q", e.Key)
}

// FormatError reports a template placeholder with no value supplied.
type FormatError struct {
	Key         string
	Placeholder string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("i18n: message %q has no value for placeholder %q", e.Key, e.Placeholder)
}

// Catalog is the immutable message table for all supported languages.
type Catalog struct {
	defaultLang string
	messages    map[string]map[string]string // language -> key -> template
}

type localeFile struct {
	Language string            `yaml:"language"`
	Messages map[string]string `yaml:"messages"`
}

// Load parses the embedded locale catalogs.
func Load() (*Catalog, error) {
	return LoadFromFS(localeFS)
}

// LoadFromFS parses locale catalogs from the given filesystem.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale catalogs found")
	}
	sort.Strings(paths)

	c := &Catalog{
		defaultLang: DefaultLanguage,
		messages:    make(map[string]map[string]string),
	}

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file localeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		lang := strings.TrimSpace(file.Language)
		if lang == "" {
			return nil, fmt.Errorf("catalog %s: language is required", path)
		}
		if _, exists := c.messages[lang]; exists {
			return nil, fmt.Errorf("catalog %s: language %q already loaded", path, lang)
		}
		if len(file.Messages) == 0 {
			return nil, fmt.Errorf("catalog %s: messages map is required", path)
		}
		c.messages[lang] = file.Messages
	}

	if _, ok := c.messages[c.defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q is not present in catalogs", c.defaultLang)
	}

	// Every key of the default language must exist in every other language;
	// a hole here would surface as a runtime fallback, so fail at load.
	for key := range c.messages[c.defaultLang] {
		for lang, msgs := range c.messages {
			if _, ok := msgs[key]; !ok {
				return nil, fmt.Errorf("language %q is missing key %q", lang, key)
			}
		}
	}

	return c, nil
}

// Resolve returns the template for key in lang, falling back to the default
// language when lang is unsupported.
func (c *Catalog) Resolve(key, lang string) (string, error) {
	msgs, ok := c.messages[c.NormalizeLanguage(lang)]
	if !ok {
		msgs = c.messages[c.defaultLang]
	}
	tmpl, ok := msgs[key]
	if !ok {
		// The key may exist only in the default language set.
		if tmpl, ok = c.messages[c.defaultLang][key]; !ok {
			return "", &MissingKeyError{Key: key}
		}
	}
	return tmpl, nil
}

// Format resolves key in lang and interpolates {name} placeholders from vars.
func (c *Catalog) Format(key, lang string, vars map[string]string) (string, error) {
	tmpl, err := c.Resolve(key, lang)
	if err != nil {
		return "", err
	}
	var missing string
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		val, ok := vars[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return val
	})
	if missing != "" {
		return "", &FormatError{Key: key, Placeholder: missing}
	}
	return out, nil
}

// StatusLabel returns the localized label for a ride status. Unknown status
// codes fall back to the raw status identifier instead of failing the render.
func (c *Catalog) StatusLabel(status models.RideStatus, lang string) string {
	label, err := c.Resolve("ride_status."+string(status), lang)
	if err != nil {
		return string(status)
	}
	return label
}

// Translations returns key's template in every loaded language. Used by the
// action classifier to match inbound text across languages.
func (c *Catalog) Translations(key string) map[string]string {
	out := make(map[string]string)
	for lang, msgs := range c.messages {
		if tmpl, ok := msgs[key]; ok {
			out[lang] = tmpl
		}
	}
	return out
}

// Languages lists the loaded language codes, sorted.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.messages))
	for lang := range c.messages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// HasLanguage reports whether lang has its own catalog.
func (c *Catalog) HasLanguage(lang string) bool {
	_, ok := c.messages[c.NormalizeLanguage(lang)]
	return ok
}

// DefaultLang returns the configured fallback language.
func (c *Catalog) DefaultLang() string {
	return c.defaultLang
}

// NormalizeLanguage maps user-supplied language codes ("kk", "ru-RU", "kaz")
// to the three-letter codes the catalogs are keyed by.
func (c *Catalog) NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return c.defaultLang
	}
	if _, ok := c.messages[code]; ok {
		return code
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, conf := tag.Base()
	if conf == language.No {
		return code
	}
	return base.ISO3()
}
