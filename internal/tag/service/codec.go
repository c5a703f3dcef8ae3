// Package service converts tags to and from their wire form, appends the default tags of a
// record and encrypts tag lists for storage and search.
package service

import (
	"net/url"
	"sort"
	"strings"

	tagDomain "github.com/allisson/phrsdk/internal/tag/domain"
)

var (
	canonicalReplacer = newCanonicalReplacer()
	legacyReplacers   = newLegacyReplacers()
)

// newCanonicalReplacer rewrites url.QueryEscape output for the legacy table characters
// into their canonical escapes.
func newCanonicalReplacer() *strings.Replacer {
	pairs := make([]string, 0, 2*len(tagDomain.LegacyTable))
	for _, row := range tagDomain.LegacyTable {
		pairs = append(pairs, url.QueryEscape(row.Char), row.Forms[tagDomain.Canonical])
	}
	return strings.NewReplacer(pairs...)
}

func newLegacyReplacers() map[tagDomain.Encoding]*strings.Replacer {
	out := make(map[tagDomain.Encoding]*strings.Replacer, len(tagDomain.Encodings))
	for _, encoding := range tagDomain.Encodings {
		pairs := make([]string, 0, 2*len(tagDomain.LegacyTable))
		for _, row := range tagDomain.LegacyTable {
			pairs = append(pairs, row.Forms[tagDomain.Canonical], row.Forms[encoding])
		}
		out[encoding] = strings.NewReplacer(pairs...)
	}
	return out
}

// EncodeValue URL-encodes value and lower-cases the result. Only ASCII letters and digits
// stay unescaped.
func EncodeValue(value string) string {
	return strings.ToLower(canonicalReplacer.Replace(url.QueryEscape(value)))
}

// DecodeValue reverses EncodeValue. It accepts every legacy form. A value that does not
// percent-decode is returned unchanged.
func DecodeValue(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}

// EncodeEntry builds the canonical key=value entry.
func EncodeEntry(key, value string) string {
	return key + tagDomain.Delimiter + EncodeValue(value)
}

// LegacyVariants returns the distinct forms of a canonical entry, canonical first.
func LegacyVariants(entry string) []string {
	variants := make([]string, 0, len(tagDomain.Encodings))
	seen := make(map[string]struct{}, len(tagDomain.Encodings))
	for _, encoding := range tagDomain.Encodings {
		variant := legacyReplacers[encoding].Replace(entry)
		if _, ok := seen[variant]; ok {
			continue
		}
		seen[variant] = struct{}{}
		variants = append(variants, variant)
	}
	return variants
}

// ToTagList encodes tags (sorted by key) followed by annotations in the given order.
func ToTagList(tags tagDomain.Tags, annotations []string) []string {
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(tags)+len(annotations))
	for _, key := range keys {
		list = append(list, EncodeEntry(key, tags[key]))
	}
	for _, annotation := range annotations {
		list = append(list, EncodeEntry(tagDomain.AnnotationKey, annotation))
	}
	return list
}

// ToTagMap decodes a tag list. Annotations are returned separately in list order. Entries
// that do not split into exactly one key and one value, or with a blank side, are dropped.
func ToTagMap(list []string) (tagDomain.Tags, []string) {
	tags := tagDomain.Tags{}
	var annotations []string

	for _, entry := range list {
		parts := strings.Split(entry, tagDomain.Delimiter)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}

		if key == tagDomain.AnnotationKey {
			annotations = append(annotations, DecodeValue(value))
			continue
		}
		tags[key] = DecodeValue(value)
	}
	return tags, annotations
}
