// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Banner text conventions in EOS configuration output
const (
	// bannerPrefix opens a verbatim banner block (banner login, banner motd)
	bannerPrefix = "banner "

	// bannerTerminator ends a banner block when it appears alone on a line
	bannerTerminator = "EOF"
)

// SectionTree is an immutable mapping from section header to section body
// produced by parsing configuration text
//
// A section always begins with a line at the base indentation; a sub-section
// begins with a deeper-indented line and keeps its original leading
// whitespace as part of the key, so the same tree can be queried at multiple
// indentation levels. A section body is the header line plus all of its
// nested content, verbatim. For example:
//
//	"spanning-tree mode none": "spanning-tree mode none\n"
//	"mac security":            "mac security\n  profile PR\n    cipher aes256-gcm\n"
//	"  profile PR":            "  profile PR\n    cipher aes256-gcm\n"
//
// Trees are built once per distinct (text, indent) pair, cached by the
// Client, and never mutated after construction; a configuration change
// produces a new tree.
type SectionTree struct {
	keys []string
	body map[string]string
}

func newSectionTree() *SectionTree {
	return &SectionTree{body: make(map[string]string)}
}

// set records a section body. A duplicate header at the same level overwrites
// the earlier body but keeps the earlier position in iteration order; device
// configurations are assumed not to produce duplicate headers at the same
// nesting level within one document.
func (t *SectionTree) set(key, body string) {
	if _, ok := t.body[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.body[key] = body
}

// extend appends a line to an existing section body.
func (t *SectionTree) extend(key, line string) {
	t.body[key] += line
}

// Get returns the body for an exact section header
func (t *SectionTree) Get(key string) (string, bool) {
	body, ok := t.body[key]
	return body, ok
}

// Keys returns the section headers in the order they were first encountered
// during parsing
func (t *SectionTree) Keys() []string {
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// Len returns the number of sections in the tree
func (t *SectionTree) Len() int {
	return len(t.keys)
}

// splitKeepEnds splits text into lines, preserving line terminators.
func splitKeepEnds(text string) []string {
	var lines []string
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i+1])
		text = text[i+1:]
	}
	return lines
}

// indentOf counts the leading whitespace of a line.
func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// parseSections parses configuration text at the given base indentation into
// a SectionTree
//
// A line whose indentation equals the base exactly starts a new section; any
// deeper-indented line belongs to the current section's body, verbatim. At
// indentation 0 a line opening with "banner " starts a verbatim capture that
// appends every subsequent line regardless of indentation until a line equal
// to the terminator sentinel; the terminator line is included in the body.
// Banner bodies are never split into sub-sections.
//
// After the linear pass, every entry whose body contains deeper-indented
// lines is itself parsed at the deeper indentation and the resulting
// sub-sections are merged into the tree, keys retaining their original
// leading whitespace. Recursion ends when a body has no lines deeper than
// its header.
//
// When indent > 0 the text is a previously parsed section and its first line
// is the section header, not content, so it is skipped.
func parseSections(config string, indent int) *SectionTree {
	tree := newSectionTree()

	lines := splitKeepEnds(config)
	if indent > 0 && len(lines) > 0 {
		lines = lines[1:]
	}

	var key string
	haveKey := false
	banner := ""

	for _, line := range lines {
		stripped := strings.TrimRight(line, " \t\r\n")

		if indent == 0 {
			if banner != "" {
				tree.extend(banner, line)
				if stripped == bannerTerminator {
					banner = ""
				}
				continue
			}
			if strings.HasPrefix(line, bannerPrefix) {
				banner = stripped
				tree.set(banner, line)
				haveKey = false
				continue
			}
		}

		if indentOf(stripped) > indent {
			if haveKey {
				tree.extend(key, line)
			}
			continue
		}

		key = stripped
		haveKey = true
		tree.set(key, line)
	}

	// Merge nested sub-sections. Keys() snapshots the linear-pass entries,
	// so merged sub-keys are not revisited; deeper nesting is handled by
	// the recursive call itself.
	for _, k := range tree.Keys() {
		if indent == 0 && strings.HasPrefix(k, bannerPrefix) {
			continue
		}
		bodyLines := splitKeepEnds(tree.body[k])
		if len(bodyLines) < 2 {
			continue
		}
		subIndent := indentOf(strings.TrimRight(bodyLines[1], " \t\r\n"))
		if subIndent <= indent {
			continue
		}
		sub := parseSections(tree.body[k], subIndent)
		for _, sk := range sub.keys {
			if _, exists := tree.body[sk]; !exists {
				tree.set(sk, sub.body[sk])
			}
		}
	}

	return tree
}

// sectionKey identifies one cached parse result.
type sectionKey struct {
	config string
	indent int
}

// sectionTree returns the parsed tree for (config, indent), computing and
// caching it on first use. The cache is cleared by invalidateSections
// whenever a configuration-modifying command is accepted by the device.
func (c *Client) sectionTree(config string, indent int) *SectionTree {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := sectionKey{config: config, indent: indent}
	if tree, ok := c.sections[key]; ok {
		return tree
	}

	c.parses++
	tree := parseSections(config, indent)
	c.sections[key] = tree
	return tree
}

// invalidateSections drops all cached section trees. Called after any
// configuration-modifying command, because the cached text no longer
// reflects the running configuration.
func (c *Client) invalidateSections() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sections = make(map[sectionKey]*SectionTree)
}

// Sections parses configuration text into a SectionTree, using the client's
// cache
//
// The returned tree is shared and must not be retained across configuration
// changes; prefer Section or SectionFromConfig for simple lookups.
func (c *Client) Sections(config string) *SectionTree {
	return c.sectionTree(config, 0)
}

// Section returns the first section of the running configuration whose
// header matches the regular expression
//
// The body includes the header line and all nested content, verbatim.
// Returns ErrSectionNotFound (wrapped) when no header matches; callers that
// treat absence as a normal outcome should check for it with errors.Is.
//
// Example:
//
//	block, err := client.Section(ctx, `^interface Ethernet1$`)
func (c *Client) Section(ctx context.Context, regex string) (string, error) {
	config, err := c.RunningConfig(ctx)
	if err != nil {
		return "", err
	}
	return c.SectionFromConfig(regex, config)
}

// SectionFromConfig returns the first section of the supplied configuration
// text whose header matches the regular expression
//
// Headers are tested in the order sections were first encountered during
// parsing. An invalid pattern fails before any parsing is done.
func (c *Client) SectionFromConfig(regex, config string) (string, error) {
	re, err := regexp.Compile(regex)
	if err != nil {
		return "", fmt.Errorf("invalid section pattern %q: %w", regex, err)
	}

	tree := c.sectionTree(config, 0)
	for _, key := range tree.Keys() {
		if re.MatchString(key) {
			body, _ := tree.Get(key)
			return body, nil
		}
	}
	return "", fmt.Errorf("no section matching %q: %w", regex, ErrSectionNotFound)
}
