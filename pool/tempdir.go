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

package pool

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// prefix format: "<root>/cstore-<pid>-<seq>"
const tempPrefix = "cstore-"

// Registry tracks live on-disk temporaries for one process so that a
// later process can reclaim anything left behind by a crash (§5: "every
// process on startup enumerates and deletes orphaned prefixes whose
// pids no longer exist").
type Registry struct {
	root string
	pid  int
	mu   sync.Mutex
	seq  int
	live map[string]bool
}

// NewRegistry opens a Registry rooted at root, creating it if absent.
func NewRegistry(root string) (*Registry, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Registry{root: root, pid: os.Getpid(), live: map[string]bool{}}, nil
}

// NewDir allocates a fresh temporary directory under the registry's
// root and records it as live until Release is called.
func (r *Registry) NewDir() (string, error) {
	r.mu.Lock()
	r.seq++
	name := fmt.Sprintf("%s%d-%d", tempPrefix, r.pid, r.seq)
	r.live[name] = true
	r.mu.Unlock()

	dir := filepath.Join(r.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Release deletes a directory previously returned by NewDir and
// forgets it.
func (r *Registry) Release(dir string) error {
	r.mu.Lock()
	delete(r.live, filepath.Base(dir))
	r.mu.Unlock()
	return os.RemoveAll(dir)
}

// Sweep deletes every directory under root whose name matches the
// temp-prefix convention and whose encoded pid is no longer running.
// Call once at process startup, before any Registry allocates a dir.
func Sweep(root string) error {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		pid, ok := orphanPID(e.Name())
		if !ok || processAlive(pid) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func orphanPID(name string) (int, bool) {
	rest := strings.TrimPrefix(name, tempPrefix)
	parts := strings.SplitN(rest, "-", 2)
	if len(parts) != 2 {
		return 0, false
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return pid, true
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On POSIX, FindProcess always succeeds; signal 0 probes liveness
	// without affecting the target.
	return proc.Signal(syscallSig0()) == nil
}
