package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/instrument"
)

func sampleDiagram(t *testing.T) *layout.Diagram {
	t.Helper()
	in := &instrument.Instrument{
		Name: "demo",
		Components: []instrument.Component{
			&instrument.Standard{Base: instrument.Base{ComponentName: "a", At: instrument.Absolute()}},
			&instrument.Standard{Base: instrument.Base{ComponentName: "b", At: instrument.Previous()}},
		},
	}
	d, err := layout.Build(in, layout.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	rec := &Record{Name: "demo", Diagram: sampleDiagram(t)}
	id, err := s.Put(ctx, rec)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := ValidateID(id); err != nil {
		t.Errorf("assigned ID %q is not a UUID", id)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := got.Diagram.Box("b"); !ok {
		t.Error("stored diagram lost its boxes")
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("after Delete: err = %v, want NOT_FOUND", err)
	}
}

func TestMemoryStoreKeepsGivenID(t *testing.T) {
	s := NewMemoryStore()
	id, _ := s.Put(context.Background(), &Record{ID: "fixed"})
	if id != "fixed" {
		t.Errorf("id = %q, want fixed", id)
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := s.Put(ctx, &Record{})
			_, _ = s.Get(ctx, id)
		}()
	}
	wg.Wait()
	if s.Len() != 50 {
		t.Errorf("Len = %d, want 50", s.Len())
	}
}

func TestValidateID(t *testing.T) {
	if err := ValidateID(NewID()); err != nil {
		t.Errorf("fresh ID rejected: %v", err)
	}
	for _, bad := range []string{"", "123", "../etc/passwd"} {
		if err := ValidateID(bad); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("ValidateID(%q) = %v, want NOT_FOUND", bad, err)
		}
	}
}

func TestMongoDocRoundTrip(t *testing.T) {
	rec := &Record{
		ID:        NewID(),
		Name:      "demo",
		Source:    []byte("name: demo\n"),
		Diagram:   sampleDiagram(t),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	doc, err := toDoc(rec)
	if err != nil {
		t.Fatalf("toDoc: %v", err)
	}
	got, err := fromDoc(doc)
	if err != nil {
		t.Fatalf("fromDoc: %v", err)
	}
	if diff := cmp.Diff(rec, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestFromDocCorrupt(t *testing.T) {
	if _, err := fromDoc(mongoDoc{ID: "x", Diagram: []byte("{")}); err == nil {
		t.Error("expected decode error")
	}
}
