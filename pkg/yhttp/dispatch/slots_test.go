package dispatch

import (
	"testing"

	"github.com/yourusername/yhttp/pkg/yhttp/http11"
)

func TestSlotVectorAddReusesFreedSlot(t *testing.T) {
	sv := newSlotVector(4)
	i1, err := sv.add(10, http11.New())
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	_, err = sv.add(11, http11.New())
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	sv.del(i1)
	i3, err := sv.add(12, http11.New())
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if i3 != i1 {
		t.Errorf("add after del returned index %d, want reused index %d", i3, i1)
	}
}

func TestSlotVectorGrowsInFixedIncrements(t *testing.T) {
	sv := newSlotVector(4)
	for i := 0; i < 4; i++ {
		if _, err := sv.add(100+i, http11.New()); err != nil {
			t.Fatalf("add error: %v", err)
		}
	}
	if len(sv.slots) != 4 {
		t.Fatalf("len(slots) = %d, want 4 after filling initial growth", len(sv.slots))
	}
	if _, err := sv.add(200, http11.New()); err != nil {
		t.Fatalf("add error: %v", err)
	}
	if len(sv.slots) != 8 {
		t.Errorf("len(slots) = %d, want 8 after one growth step", len(sv.slots))
	}
}

// Invariant 8: the slot vector never contains two distinct live slots
// with the same fd.
func TestSlotVectorNeverDuplicatesLiveFD(t *testing.T) {
	sv := newSlotVector(4)
	idx, _ := sv.add(42, http11.New())
	sv.del(idx)
	idx2, _ := sv.add(42, http11.New())

	seen := make(map[int]int)
	for _, s := range sv.slots {
		if s.fd == -1 {
			continue
		}
		seen[s.fd]++
	}
	for fd, count := range seen {
		if count > 1 {
			t.Errorf("fd %d appears in %d live slots, want at most 1", fd, count)
		}
	}
	if _, ok := sv.indexForFD(42); !ok {
		t.Error("indexForFD(42) not found after re-add")
	}
	_ = idx2
}

func TestSlotVectorIndexForFDMissing(t *testing.T) {
	sv := newSlotVector(4)
	if _, ok := sv.indexForFD(999); ok {
		t.Error("indexForFD found an fd that was never added")
	}
}

func TestSlotVectorReplaceParserKeepsSameSlot(t *testing.T) {
	sv := newSlotVector(4)
	idx, _ := sv.add(5, http11.New())
	fresh := http11.New()
	sv.replaceParser(idx, fresh)
	if sv.get(idx).parser != fresh {
		t.Error("replaceParser did not install the new parser")
	}
	if sv.get(idx).fd != 5 {
		t.Error("replaceParser must not change the slot's fd")
	}
}
