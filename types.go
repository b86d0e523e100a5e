/*
  The MIT License (MIT)

  Copyright (c) 2015 Nirbhay Choubey

  Permission is hereby granted, free of charge, to any person obtaining a copy
  of this software and associated documentation files (the "Software"), to deal
  in the Software without restriction, including without limitation the rights
  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
  copies of the Software, and to permit persons to whom the Software is
  furnished to do so, subject to the following conditions:

  The above copyright notice and this permission notice shall be included in all
  copies or substantial portions of the Software.

  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
  SOFTWARE.
*/

package nuodb

import (
	"database/sql/driver"
)

// defaultParameterConverter is handed back by every Statement's
// ColumnConverter, the way the teacher's types.go does for MySQL's own
// NullTime/NullDuration wrappers. Decimal implements driver.Valuer (see
// value.go), so driver.DefaultParameterConverter.ConvertValue already
// stringifies it losslessly through that path; this type exists as the
// same extension point the teacher used, for any future NuoDB-specific
// wrapper that needs conversion driver.DefaultParameterConverter doesn't
// know about.
var defaultParameterConverter DefaultParameterConverter

type DefaultParameterConverter struct{}

func (DefaultParameterConverter) ConvertValue(v interface{}) (driver.Value, error) {
	return driver.DefaultParameterConverter.ConvertValue(v)
}
