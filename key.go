// Copyright 2024 The pmtree Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pmtree

import "encoding/binary"

// depthKeyPairing and nextIndexKeyPairing are the two reserved pairing
// values, chosen to be the two largest values representable in a Key so
// they can never collide with encode(d, i) for any node of a tree of
// depth at most 31 (there i < 2^d, so the Cantor pairing of (d, i) stays
// below 2^62, far below these).
const (
	depthKeyPairing     uint64 = ^uint64(0) - 1
	nextIndexKeyPairing uint64 = ^uint64(0)
)

// depthKey and nextIndexKey are the reserved metadata keys.
var (
	depthKey     = pairingKey(depthKeyPairing)
	nextIndexKey = pairingKey(nextIndexKeyPairing)
)

func pairingKey(p uint64) Key {
	var k Key
	binary.BigEndian.PutUint64(k[:], p)
	return k
}

// encode injectively maps a node position (depth d, index i) to a fixed
// width Database key via the Cantor pairing function
//
//	p(d, i) = (d+i)*(d+i+1)/2 + i
//
// which is a bijection from pairs of naturals onto the naturals, so for
// depths up to 31 distinct (d, i) always produce distinct keys and no
// pairing reaches depthKeyPairing or nextIndexKeyPairing. At larger
// depths the 64-bit product below can overflow for the highest indices.
func encode(d, i int) Key {
	sum := uint64(d) + uint64(i)
	pairing := sum*(sum+1)/2 + uint64(i)
	return pairingKey(pairing)
}
