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

import (
	"net"
	"time"
)

// dial opens a TCP connection to a Transaction Engine. Unlike the MySQL
// ancestor this driver never falls back to a unix socket: every NuoDB
// engine endpoint returned by discovery is a host:port pair.
func dial(address string, connectTimeout time.Duration) (net.Conn, error) {
	c, err := net.DialTimeout("tcp", address, connectTimeout)
	if err != nil {
		return nil, wrapError(ConnectionLost, err, "failed to connect to %s", address)
	}
	return c, nil
}
