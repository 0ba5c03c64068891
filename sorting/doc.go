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

// Package sorting defines the shared vocabulary for ORDER BY direction
// and null placement: Direction (Ascending/Descending) and NullsOrder
// (NullsFirst/NullsLast). The extsort package consumes these types to
// build its own composite row comparator over value.Value rows, rather
// than the column-wise quicksort this package historically implemented
// over decoded Ion values.
package sorting
