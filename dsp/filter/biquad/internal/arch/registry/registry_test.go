package registry

import (
	"testing"

	"github.com/cwbudde/algo-vecmath/cpu"
)

func TestRegistryLookupPrefersHigherPriority(t *testing.T) {
	reg := &OpRegistry{}
	reg.Register(OpEntry{Name: "generic", SIMDLevel: cpu.SIMDNone, Priority: 0})
	reg.Register(OpEntry{Name: "avx2", SIMDLevel: cpu.SIMDAVX2, Priority: 20})
	reg.Register(OpEntry{Name: "sse2", SIMDLevel: cpu.SIMDSSE2, Priority: 10})

	entry := reg.Lookup(cpu.Features{HasSSE2: true, HasAVX2: true})
	if entry == nil || entry.Name != "avx2" {
		t.Fatalf("expected avx2, got %#v", entry)
	}

	entry = reg.Lookup(cpu.Features{HasSSE2: true})
	if entry == nil || entry.Name != "sse2" {
		t.Fatalf("expected sse2, got %#v", entry)
	}

	entry = reg.Lookup(cpu.Features{})
	if entry == nil || entry.Name != "generic" {
		t.Fatalf("expected generic, got %#v", entry)
	}
}

func TestRegistryLookupForceGeneric(t *testing.T) {
	reg := &OpRegistry{}
	reg.Register(OpEntry{Name: "generic", SIMDLevel: cpu.SIMDNone, Priority: 0})
	reg.Register(OpEntry{Name: "avx2", SIMDLevel: cpu.SIMDAVX2, Priority: 20})

	entry := reg.Lookup(cpu.Features{HasAVX2: true, ForceGeneric: true})
	if entry == nil || entry.Name != "generic" {
		t.Fatalf("expected generic with ForceGeneric, got %#v", entry)
	}
}

func TestRegistryListEntriesSorted(t *testing.T) {
	reg := &OpRegistry{}
	reg.Register(OpEntry{Name: "generic", Priority: 0})
	reg.Register(OpEntry{Name: "sse2", Priority: 10})
	reg.Register(OpEntry{Name: "avx2", Priority: 20})

	entries := reg.ListEntries()
	want := []string{"avx2", "sse2", "generic"}
	if len(entries) != len(want) {
		t.Fatalf("entries=%d, want %d", len(entries), len(want))
	}
	for i, name := range want {
		if entries[i].Name != name {
			t.Fatalf("entry %d: got %q, want %q", i, entries[i].Name, name)
		}
	}
}

func TestRegistryLookupEmpty(t *testing.T) {
	reg := &OpRegistry{}
	if entry := reg.Lookup(cpu.Features{}); entry != nil {
		t.Fatalf("expected nil from empty registry, got %#v", entry)
	}
}
