// Package catalog loads the embedded dashboard translations and registers
// them with golang.org/x/text/message.
//
// Files live at locales/<locale>/<namespace>.yaml. Every locale must carry
// the keys of BaseLocale with the same printf verbs, because handlers format
// counts and names through message.Printer.
package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other catalog is checked against.
const BaseLocale = "en-US"

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Bundle holds the messages of every loaded locale.
type Bundle struct {
	// locale -> key -> message
	messages map[string]map[string]string
	// locale -> namespace -> file path, for error reporting
	sources map[string]map[string]string
}

//go:embed locales/*/*.yaml
var embedded embed.FS

var defaultBundle = mustLoadEmbedded()

// Default returns the embedded bundle, registered with x/text at init.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embedded)
}

// LoadFromFS loads and validates catalogs from catalogFS.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, errors.New("no catalog files found")
	}
	slices.Sort(paths)

	bundle := &Bundle{
		messages: map[string]map[string]string{},
		sources:  map[string]map[string]string{},
	}
	for _, filePath := range paths {
		file, err := readFile(catalogFS, filePath)
		if err != nil {
			return nil, err
		}
		if err := bundle.add(filePath, file); err != nil {
			return nil, err
		}
	}
	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s has no catalog", BaseLocale)
	}
	if err := bundle.checkVerbs(); err != nil {
		return nil, err
	}
	return bundle, nil
}

func readFile(catalogFS fs.FS, filePath string) (catalogFile, error) {
	data, err := fs.ReadFile(catalogFS, filePath)
	if err != nil {
		return catalogFile{}, fmt.Errorf("read catalog %s: %w", filePath, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var file catalogFile
	if err := decoder.Decode(&file); err != nil {
		return catalogFile{}, fmt.Errorf("parse catalog %s: %w", filePath, err)
	}
	return file, nil
}

func (b *Bundle) add(filePath string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	namespace := strings.TrimSpace(file.Namespace)
	switch {
	case locale != path.Base(path.Dir(filePath)):
		return fmt.Errorf("catalog %s: locale %q does not match its directory", filePath, locale)
	case namespace != strings.TrimSuffix(path.Base(filePath), path.Ext(filePath)):
		return fmt.Errorf("catalog %s: namespace %q does not match its file name", filePath, namespace)
	case len(file.Messages) == 0:
		return fmt.Errorf("catalog %s: no messages", filePath)
	}
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("catalog %s: %w", filePath, err)
	}

	if b.messages[locale] == nil {
		b.messages[locale] = map[string]string{}
		b.sources[locale] = map[string]string{}
	}
	b.sources[locale][namespace] = filePath
	messages := b.messages[locale]
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: blank message key", filePath)
		}
		if _, exists := messages[key]; exists {
			return fmt.Errorf("catalog %s: key %q is already defined for %s", filePath, key, locale)
		}
		messages[key] = value
	}
	return nil
}

var verbPattern = regexp.MustCompile(`%[-+# 0]*[0-9]*(?:\.[0-9]+)?[a-zA-Z%]`)

// verbs lists the printf verbs of s, ignoring literal percent signs.
func verbs(s string) []string {
	var found []string
	for _, verb := range verbPattern.FindAllString(s, -1) {
		if verb != "%%" {
			found = append(found, verb)
		}
	}
	return found
}

func (b *Bundle) checkVerbs() error {
	base := b.messages[BaseLocale]
	for _, locale := range b.Locales() {
		if locale == BaseLocale {
			continue
		}
		for key, value := range b.messages[locale] {
			want, ok := base[key]
			if !ok {
				return fmt.Errorf("locale %s: key %q is not defined in %s", locale, key, BaseLocale)
			}
			if !slices.Equal(verbs(value), verbs(want)) {
				return fmt.Errorf("locale %s: key %q uses verbs %v, %s uses %v", locale, key, verbs(value), BaseLocale, verbs(want))
			}
		}
	}
	return nil
}

// Register makes every message available to message.Printer, under the full
// locale tag and under its bare language.
func (b *Bundle) Register() error {
	for _, locale := range b.Locales() {
		tag := language.MustParse(locale)
		tags := []language.Tag{tag}
		if base, confidence := tag.Base(); confidence != language.No {
			if bare := language.Make(base.String()); bare.String() != tag.String() {
				tags = append(tags, bare)
			}
		}
		messages := b.messages[locale]
		for _, key := range slices.Sorted(maps.Keys(messages)) {
			for _, registerTag := range tags {
				if err := message.SetString(registerTag, key, messages[key]); err != nil {
					return fmt.Errorf("register %s %q: %w", locale, key, err)
				}
			}
		}
	}
	return nil
}

// HasLocale reports whether locale has a catalog.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.messages[strings.TrimSpace(locale)]
	return ok
}

// Locales returns the loaded locales in sorted order.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.messages))
}

// Namespaces returns the namespaces loaded for locale.
func (b *Bundle) Namespaces(locale string) []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.sources[strings.TrimSpace(locale)]))
}

// Message returns the message for key in locale, falling back to BaseLocale.
func (b *Bundle) Message(locale string, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	if value, ok := b.messages[strings.TrimSpace(locale)][key]; ok {
		return value, true
	}
	value, ok := b.messages[BaseLocale][key]
	return value, ok
}

// MissingKeys lists keys of BaseLocale that locale does not translate.
func (b *Bundle) MissingKeys(locale string) []string {
	if b == nil {
		return nil
	}
	target := b.messages[strings.TrimSpace(locale)]
	var missing []string
	for key := range b.messages[BaseLocale] {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	slices.Sort(missing)
	return missing
}

func mustLoadEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := bundle.Register(); err != nil {
		panic(err)
	}
	return bundle
}
