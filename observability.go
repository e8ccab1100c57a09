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

import (
	"context"

	"contrib.go.opencensus.io/exporter/stackdriver"
	"go.opencensus.io/trace"
)

// TraceBatchInsert wraps BatchInsert in an OpenCensus span named
// "pmtree.BatchInsert", so callers who have registered an exporter see
// batch-insert latency broken out in their trace backend. The tree
// itself never starts spans on its own; tracing is opt-in per call site.
func TraceBatchInsert[F any](ctx context.Context, t *MerkleTree[F], start int, leaves []F) error {
	_, span := trace.StartSpan(ctx, "pmtree.BatchInsert")
	defer span.End()
	return t.BatchInsert(start, leaves)
}

// TraceProof wraps Proof in an OpenCensus span named "pmtree.Proof".
func TraceProof[F any](ctx context.Context, t *MerkleTree[F], index int) (*MerkleProof[F], error) {
	_, span := trace.StartSpan(ctx, "pmtree.Proof")
	defer span.End()
	return t.Proof(index)
}

// RegisterStackdriverExporter wires an OpenCensus Stackdriver exporter
// for projectID and registers it, so TraceBatchInsert/TraceProof spans
// are exported there. The returned func unregisters and flushes the
// exporter; callers that don't want tracing never need to call this.
func RegisterStackdriverExporter(projectID string) (func(), error) {
	exporter, err := stackdriver.NewExporter(stackdriver.Options{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	trace.RegisterExporter(exporter)
	return func() {
		trace.UnregisterExporter(exporter)
		exporter.Flush()
	}, nil
}
