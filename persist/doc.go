// Package persist serializes a model registry, its interned state
// knowledge, and per-goal experience/role/agent-config documents to JSON, the
// Go analogue of DigitalAssistant's JSON save/load methods.
//
// Saving an experience writes three files: the experience document itself at
// the caller-given base path, plus a model-definition document and a
// model-knowledge document named from the content id (cid) of the
// registry's name, shared across every experience file that references the
// same model so the (potentially large) interned-state table is written
// once rather than once per goal.
package persist

import (
	"regexp"
	"strings"
)

var cidDisallowed = regexp.MustCompile(`[^a-z0-9_]+`)

// Slug derives a filesystem-safe content id from a model name: lowercased,
// with every run of non-alphanumeric characters collapsed to a single
// underscore.
func Slug(name string) string {
	s := cidDisallowed.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(s, "_")
}

func modelFileName(cid string) string   { return cid + "_model.json" }
func knowledgeFileName(cid string) string { return cid + "_model_knowl.json" }
