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

package archive

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// writeINI writes a dir_archive.ini with a single [metadata] section,
// one key=value pair per line. Keys and values are arbitrary UTF-8
// (§6); '=' and newlines in a value would be ambiguous to round-trip,
// so callers are expected to keep metadata values free of them (the
// values this package sets itself, the contents tag and the "id"
// UUID, are free of them by construction; values passed to
// SetMetadata are written as given).
func writeINI(path string, meta map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if _, err := bw.WriteString("[metadata]\n"); err != nil {
		return err
	}
	for k, v := range meta {
		if _, err := fmt.Fprintf(bw, "%s=%s\n", k, v); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

// readINI parses a dir_archive.ini back into its [metadata] keys. A
// missing [metadata] header, or any top-level key outside it, is a
// BadArchive condition the caller surfaces.
func readINI(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta := make(map[string]string)
	sawSection := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if line != "[metadata]" {
				return nil, fmt.Errorf("archive: %s: unknown section %s", path, line)
			}
			sawSection = true
			continue
		}
		if !sawSection {
			return nil, fmt.Errorf("archive: %s: key %q outside [metadata]", path, line)
		}
		i := strings.IndexByte(line, '=')
		if i < 0 {
			return nil, fmt.Errorf("archive: %s: malformed line %q", path, line)
		}
		meta[line[:i]] = line[i+1:]
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sawSection {
		return nil, fmt.Errorf("archive: %s: missing [metadata] section", path)
	}
	return meta, nil
}
