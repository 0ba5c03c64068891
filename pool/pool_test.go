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
	"sync/atomic"
	"testing"
)

func TestRunExecutesEveryTaskOncePerCursor(t *testing.T) {
	p := New(4)
	defer p.Close()
	tok := NewToken()

	var count int32
	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = func(tok *Token) error {
			atomic.AddInt32(&count, 1)
			return nil
		}
	}
	if err := p.Run(tok, tasks); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if count != int32(len(tasks)) {
		t.Fatalf("ran %d tasks, want %d", count, len(tasks))
	}
}

func TestRunReturnsFirstError(t *testing.T) {
	p := New(2)
	defer p.Close()
	tok := NewToken()

	boom := fmt.Errorf("task failed")
	tasks := []Task{
		func(tok *Token) error { return nil },
		func(tok *Token) error { return boom },
		func(tok *Token) error { return nil },
	}
	if err := p.Run(tok, tasks); err != boom {
		t.Fatalf("Run: got %v, want %v", err, boom)
	}
}

func TestWorkersReflectsRequestedSize(t *testing.T) {
	p := New(3)
	defer p.Close()
	if p.Workers() != 3 {
		t.Fatalf("Workers() = %d, want 3", p.Workers())
	}
}

func TestNewZeroOrNegativeSelectsGOMAXPROCS(t *testing.T) {
	p := New(0)
	defer p.Close()
	if p.Workers() <= 0 {
		t.Fatalf("Workers() = %d, want > 0", p.Workers())
	}
}

func TestCloseDrainsInFlightTasksThenStops(t *testing.T) {
	p := New(2)
	tok := NewToken()
	if err := p.Run(tok, []Task{
		func(tok *Token) error { return nil },
		func(tok *Token) error { return nil },
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	p.Close()
}
