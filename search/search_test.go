package search_test

import (
	"errors"
	"testing"

	"nvext/process"
	"nvext/process_blob"
	"nvext/search"
)

// controller -> +0x10 pawn -> +0x20 services -> +0x214 fov
func layout(t *testing.T) (*process_blob.ProcessBlob, process.ProcessMemoryAddress) {
	t.Helper()

	blob := process_blob.NewProcessBlob()
	controller := blob.Alloc(0x1000)
	pawn := blob.Alloc(0x1000)
	services := blob.Alloc(0x1000)

	blob.PutNTS(controller.Add(0x640), "Alice")
	blob.PutPointer(controller.Add(0x10), pawn)
	blob.PutINT32(pawn.Add(0x32C), 87)
	blob.PutFLOAT32(pawn.Add(0x1D0), 1234.5, -20.25, 64)
	blob.PutPointer(pawn.Add(0x20), services)
	blob.PutUINT32(services.Add(0x214), 0x5A5A5A)
	blob.PutPointer(services.Add(0x8), controller) // cycle back

	return blob, controller
}

func TestSearchValue(t *testing.T) {
	blob, controller := layout(t)

	results, err := search.Search(blob, controller, search.WithValue(uint32(0x5A5A5A)), search.WithMaxStructSize(0x800))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %v", results)
	}

	want := []uint64{0x10, 0x20, 0x214}
	for i := range want {
		if results[0].Path[i] != want[i] {
			t.Fatalf("Expected path %x, got %s", want, results[0])
		}
	}

	chain, field := results[0].Offsets()
	obj, err := process.Trace(blob, controller, chain...)
	if err != nil {
		t.Fatal(err)
	}
	v, err := process.ReadOffset[uint32](blob, obj, field)
	if err != nil || v != 0x5A5A5A {
		t.Errorf("result does not trace back to the value: %x %v", v, err)
	}
}

func TestSearchDepth(t *testing.T) {
	blob, controller := layout(t)

	results, _ := search.Search(blob, controller, search.WithValue(uint32(0x5A5A5A)), search.WithMaxDepth(1), search.WithMaxStructSize(0x800))
	if len(results) != 0 {
		t.Errorf("Expected nothing within one hop, got %v", results)
	}
}

func TestSearchString(t *testing.T) {
	blob, controller := layout(t)

	results, _ := search.Search(blob, controller, search.WithString("Alice"), search.WithMaxDepth(0))
	if len(results) != 1 || results[0].Path[0] != 0x640 {
		t.Errorf("Expected name at 0x640, got %v", results)
	}
}

func TestSearchFloat(t *testing.T) {
	blob, controller := layout(t)

	results, _ := search.Search(blob, controller, search.WithFloatNear(1234, 1), search.WithMaxDepth(1))
	if len(results) != 1 || results[0].Path[0] != 0x10 || results[0].Path[1] != 0x1D0 {
		t.Errorf("Expected origin at [0x10 0x1d0], got %v", results)
	}
}

func TestSearchMaxResults(t *testing.T) {
	blob := process_blob.NewProcessBlob()
	base := blob.Alloc(0x100)

	results, _ := search.Search(blob, base, search.WithValue(uint32(0)), search.WithMaxResults(3), search.WithMaxStructSize(0x100))
	if len(results) != 3 {
		t.Errorf("Expected 3 results, got %d", len(results))
	}
}

func TestSearchNoTarget(t *testing.T) {
	blob := process_blob.NewProcessBlob()
	if _, err := search.Search(blob, blob.Alloc(0x10)); !errors.Is(err, search.ErrNoTarget) {
		t.Errorf("Expected ErrNoTarget, got %v", err)
	}
}
