package telemetry_test

import (
	"context"
	"testing"

	"go.trai.ch/hale/internal/adapters/telemetry"
	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports"
)

func TestNoOp(t *testing.T) {
	rec := telemetry.NewNoOp()

	ctx, vertex := rec.Record(context.Background(), "anything")
	if _, ok := ports.VertexFromContext(ctx); !ok {
		t.Error("expected vertex to be attached to the context")
	}

	if n, err := vertex.Stdout().Write([]byte("discarded")); err != nil || n != 9 {
		t.Errorf("Stdout().Write() = (%d, %v), want (9, nil)", n, err)
	}
	if n, err := vertex.Stderr().Write([]byte("discarded")); err != nil || n != 9 {
		t.Errorf("Stderr().Write() = (%d, %v), want (9, nil)", n, err)
	}

	vertex.Log(domain.LogLevelInfo, "msg")
	vertex.Complete(nil)
	vertex.Cached()

	if err := rec.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}
