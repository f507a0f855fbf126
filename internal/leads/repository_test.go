package leads

import (
	"fmt"
	"testing"
)

func TestRecentStoreNewestFirst(t *testing.T) {
	s := NewRecentStore(10)
	for i := 0; i < 3; i++ {
		s.Add(&LeadRecord{Email: fmt.Sprintf("lead%d@example.com", i)})
	}

	got := s.List()
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Email != "lead2@example.com" || got[2].Email != "lead0@example.com" {
		t.Errorf("not newest first: %s .. %s", got[0].Email, got[2].Email)
	}
}

func TestRecentStoreEvictsOldest(t *testing.T) {
	s := NewRecentStore(2)
	for i := 0; i < 5; i++ {
		s.Add(&LeadRecord{Email: fmt.Sprintf("lead%d@example.com", i)})
	}

	got := s.List()
	if len(got) != 2 {
		t.Fatalf("len = %d, want capacity 2", len(got))
	}
	if got[0].Email != "lead4@example.com" || got[1].Email != "lead3@example.com" {
		t.Errorf("wrong window: %s, %s", got[0].Email, got[1].Email)
	}
}

func TestRecentStoreDefaultCapacity(t *testing.T) {
	s := NewRecentStore(0)
	for i := 0; i < 150; i++ {
		s.Add(&LeadRecord{})
	}
	if got := len(s.List()); got != 100 {
		t.Errorf("len = %d, want default capacity 100", got)
	}
}
