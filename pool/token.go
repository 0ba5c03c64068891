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
	"sync/atomic"

	"github.com/cstorelabs/cstore/errs"
)

// Token is a process-wide cancellation flag paired with a monotonic
// command id (§5): every cursor polls Cancelled() at each read(k)
// boundary, and the CSV ingester polls it at each file boundary.
type Token struct {
	cancelled int32
	cmdID     int64
}

// NewToken returns a fresh, non-cancelled Token.
func NewToken() *Token { return &Token{} }

// Cancel flips the cancellation flag and bumps the command id so that
// stale in-flight commands issued before this Cancel can recognize
// they've been superseded.
func (t *Token) Cancel() {
	atomic.StoreInt32(&t.cancelled, 1)
	atomic.AddInt64(&t.cmdID, 1)
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	return atomic.LoadInt32(&t.cancelled) != 0
}

// CommandID returns the current command generation, incremented on
// every Cancel.
func (t *Token) CommandID() int64 {
	return atomic.LoadInt64(&t.cmdID)
}

// CheckCancelled returns a *errs.Error with Kind Cancelled if the
// token has been cancelled, nil otherwise. Cursors and the CSV
// ingester call this at their polling boundaries and propagate the
// error upstream without swallowing it (§7: Cancelled is never
// converted to a silent empty result).
func (t *Token) CheckCancelled() error {
	if t.Cancelled() {
		return errs.New(errs.Cancelled, "operation cancelled")
	}
	return nil
}
