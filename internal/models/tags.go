package models

import "strings"

// Tag vocabulary for user files.
const (
	TagResume      = "resume"
	TagCoverLetter = "cover-letter"
	TagOther       = "other"
)

// TagTemplate marks system files that back a template.
const TagTemplate = "template"

var AllowedTags = []string{TagResume, TagCoverLetter, TagOther}

// ParseTags splits a comma separated list, trimming and lowercasing entries.
func ParseTags(csv string) []string {
	out := []string{}
	for _, t := range strings.Split(csv, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NormalizeTags lowercases and de-duplicates tags, preserving order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// InvalidTags returns the entries of tags that are not in the vocabulary.
func InvalidTags(tags []string) []string {
	var bad []string
	for _, t := range tags {
		ok := false
		for _, a := range AllowedTags {
			if t == a {
				ok = true
				break
			}
		}
		if !ok {
			bad = append(bad, t)
		}
	}
	return bad
}
