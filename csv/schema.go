// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package csv

import (
	"fmt"

	"github.com/cstorelabs/cstore/value"
)

// uniquifyNames turns duplicate header tokens into A, A.1, A.2, ...
// (step 2).
func uniquifyNames(tokens []string) []string {
	seen := make(map[string]int, len(tokens))
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		n, ok := seen[tok]
		if !ok {
			out[i] = tok
			seen[tok] = 1
			continue
		}
		for {
			candidate := fmt.Sprintf("%s.%d", tok, n)
			if _, exists := seen[candidate]; !exists {
				out[i] = candidate
				seen[candidate] = 1
				seen[tok] = n + 1
				break
			}
			n++
		}
	}
	return out
}

func syntheticNames(ncols int) []string {
	out := make([]string, ncols)
	for i := range out {
		out[i] = fmt.Sprintf("X%d", i+1)
	}
	return out
}

// resolveTags applies hint resolution (step 3): a named hint, the
// positional "__X<i>__" form, or the catch-all "__all_columns__";
// anything unmatched defaults to String. usedHints tracks which hint
// keys were actually applied so the caller can warn about unused ones.
func resolveTags(names []string, hints map[string]value.Tag) (tags []value.Tag, usedHints map[string]bool) {
	tags = make([]value.Tag, len(names))
	usedHints = make(map[string]bool, len(hints))
	allTag, hasAll := hints["__all_columns__"]
	for i, name := range names {
		tags[i] = value.String
		if hasAll {
			tags[i] = allTag
		}
		if t, ok := hints[name]; ok {
			tags[i] = t
			usedHints[name] = true
		} else if t, ok := hints[fmt.Sprintf("__X%d__", i+1)]; ok {
			tags[i] = t
			usedHints[fmt.Sprintf("__X%d__", i+1)] = true
		}
	}
	if hasAll {
		usedHints["__all_columns__"] = true
	}
	return tags, usedHints
}

// unusedHintWarnings lists hint keys never applied to any column (step
// 3: "unused hints warn").
func unusedHintWarnings(hints map[string]value.Tag, used map[string]bool) []string {
	var warnings []string
	for k := range hints {
		if !used[k] {
			warnings = append(warnings, fmt.Sprintf("unused type hint for column %q", k))
		}
	}
	return warnings
}
