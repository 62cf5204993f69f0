// Package i18n provides localization packs: a default set of strings plus
// per-locale overlays. The locale is always passed explicitly.
package i18n

import (
	"maps"
	"slices"
	"strings"
)

// DefaultLocale is the name used for the default strings in serialized packs.
// Looking up with DefaultLocale or "" uses the default strings only.
const DefaultLocale = "default"

type Pack struct {
	defaults map[string]string
	locales  map[string]map[string]string
}

// NewPack creates a pack with a copy of defaults as its default strings.
func NewPack(defaults map[string]string) *Pack {
	p := &Pack{
		defaults: make(map[string]string, len(defaults)),
		locales:  make(map[string]map[string]string),
	}

	maps.Copy(p.defaults, defaults)
	return p
}

// Add sets a single translation for locale.
func (p *Pack) Add(key string, value string, locale string) {
	m := p.overlay(locale, true)
	m[key] = value
}

// Set replaces every translation of locale with translations.
func (p *Pack) Set(translations map[string]string, locale string) {
	m := make(map[string]string, len(translations))
	maps.Copy(m, translations)

	if isDefault(locale) {
		p.defaults = m
	} else {
		p.locales[normalizeLocale(locale)] = m
	}
}

// Lookup returns the value for key in locale, falling back to the default
// strings. The second result is false when neither has the key.
func (p *Pack) Lookup(key string, locale string) (string, bool) {
	if p == nil {
		return "", false
	}

	if !isDefault(locale) {
		if m := p.locales[normalizeLocale(locale)]; m != nil {
			if v, ok := m[key]; ok {
				return v, true
			}
		}
	}

	v, ok := p.defaults[key]
	return v, ok
}

// Get is Lookup without the presence flag.
func (p *Pack) Get(key string, locale string) string {
	v, _ := p.Lookup(key, locale)
	return v
}

// Locales returns the overlay locale identifiers in sorted order.
func (p *Pack) Locales() []string {
	if p == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(p.locales))
}

// Keys returns the keys resolvable in locale (default keys included), sorted.
func (p *Pack) Keys(locale string) []string {
	if p == nil {
		return nil
	}

	keys := maps.Clone(p.defaults)
	if !isDefault(locale) {
		maps.Copy(keys, p.locales[normalizeLocale(locale)])
	}

	return slices.Sorted(maps.Keys(keys))
}

// Resolve returns every string resolvable in locale.
func (p *Pack) Resolve(locale string) map[string]string {
	out := make(map[string]string)
	for _, k := range p.Keys(locale) {
		out[k] = p.Get(k, locale)
	}

	return out
}

func (p *Pack) overlay(locale string, create bool) map[string]string {
	if isDefault(locale) {
		return p.defaults
	}

	locale = normalizeLocale(locale)
	m := p.locales[locale]
	if m == nil && create {
		m = make(map[string]string)
		p.locales[locale] = m
	}

	return m
}

func isDefault(locale string) bool {
	return locale == "" || strings.EqualFold(locale, DefaultLocale)
}

// Locale identifiers compare case-insensitively ("ja_JP" == "ja_jp").
func normalizeLocale(locale string) string {
	return strings.ToLower(locale)
}
