/*
  Copyright (C) 2015 Nirbhay Choubey

  This library is free software; you can redistribute it and/or
  modify it under the terms of the GNU Lesser General Public
  License as published by the Free Software Foundation; either
  version 2.1 of the License, or (at your option) any later version.

  This library is distributed in the hope that it will be useful,
  but WITHOUT ANY WARRANTY; without even the implied warranty of
  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
  Lesser General Public License for more details.

  You should have received a copy of the GNU Lesser General Public
  License along with this library; if not, write to the Free Software
  Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301
  USA
*/

package nuodb

// Result adapts an execute's outcome to database/sql/driver.Result.
// Unlike MySQL's single auto-increment column, NuoDB surfaces generated
// keys as their own result set (spec §4.G); lastInsertID is only
// populated when the statement was prepared with PrepareStatementKeys*
// and GetGeneratedKeys returned exactly one row with one column.
type Result struct {
	rowsAffected int64
	lastInsertID int64
	hasInsertID  bool
}

func (r *Result) LastInsertId() (int64, error) {
	if !r.hasInsertID {
		return 0, newError(InterfaceError, "statement was not prepared for generated keys")
	}
	return r.lastInsertID, nil
}

func (r *Result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}
