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

package cspanner

import "testing"

// Connecting to a real Spanner instance is left to integration tests;
// this only pins the marker row's key so a schema change doesn't
// silently shadow an existing tree.

func TestMarkerKeyStable(t *testing.T) {
	if string(markerKey) != "__pmtree_exists__" {
		t.Fatalf("got %q", markerKey)
	}
}
