// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"fmt"
	"strings"
)

// CliVariants declares alternative command-sequence fragments, typically to
// bridge a CLI transition period where different EOS versions accept
// different spellings of the same configuration
//
// A CliVariants value is embedded in the command list passed to Config. The
// list is expanded into one concrete candidate sequence per alternative
// (prefix + alternative + suffix) and the candidates are tried in declared
// order until one succeeds. A recoverable command rejection moves on to the
// next candidate; if every candidate fails the last failure is returned.
// Transport failures are never retried.
//
// Example:
//
//	client.Config(ctx, []any{
//	    "router bgp 65001",
//	    eapi.Variants(
//	        []string{"neighbor 10.0.0.1 allowas-in 1"},
//	        []string{"neighbor 10.0.0.1 allowas-in"},
//	    ),
//	    "exit",
//	})
//
// At most one CliVariants entry may appear in a single command list; a list
// with more than one is rejected before any network interaction.
type CliVariants struct {
	variants [][]string
}

// Variants declares two or more alternative command fragments to be tried in
// order
//
// Each alternative is an ordered fragment of commands that replaces the
// CliVariants entry in the submitted list.
func Variants(first, second []string, rest ...[]string) CliVariants {
	variants := make([][]string, 0, 2+len(rest))
	variants = append(variants, first, second)
	variants = append(variants, rest...)
	return CliVariants{variants: variants}
}

// expandVariants expands a command list that may contain one CliVariants
// entry into the concrete candidate sequences, in declared order
//
// A list without a CliVariants entry expands to itself. Validation fails
// fast: entries must be non-blank strings or a single CliVariants value.
//
//	expandVariants([]any{"x", Variants([]string{"a"}, []string{"b"}), "y"})
//	  -> [["x", "a", "y"], ["x", "b", "y"]]
func expandVariants(commands []any) ([][]string, error) {
	if len(commands) == 0 {
		return nil, fmt.Errorf("commands cannot be empty")
	}

	var prefix, suffix []string
	var marker *CliVariants
	for i, entry := range commands {
		switch v := entry.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return nil, fmt.Errorf("command at index %d is blank", i)
			}
			if marker == nil {
				prefix = append(prefix, v)
			} else {
				suffix = append(suffix, v)
			}
		case CliVariants:
			if marker != nil {
				return nil, fmt.Errorf("only a single CliVariants entry is supported per command list")
			}
			if len(v.variants) < 2 {
				return nil, fmt.Errorf("CliVariants requires at least two alternatives")
			}
			for vi, alt := range v.variants {
				if len(alt) == 0 {
					return nil, fmt.Errorf("CliVariants alternative %d is empty", vi)
				}
				for _, cmd := range alt {
					if strings.TrimSpace(cmd) == "" {
						return nil, fmt.Errorf("CliVariants alternative %d contains a blank command", vi)
					}
				}
			}
			marker = &v
		default:
			return nil, fmt.Errorf("command at index %d must be string or CliVariants, got %T", i, entry)
		}
	}

	if marker == nil {
		return [][]string{prefix}, nil
	}

	candidates := make([][]string, 0, len(marker.variants))
	for _, alt := range marker.variants {
		candidate := make([]string, 0, len(prefix)+len(alt)+len(suffix))
		candidate = append(candidate, prefix...)
		candidate = append(candidate, alt...)
		candidate = append(candidate, suffix...)
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}
