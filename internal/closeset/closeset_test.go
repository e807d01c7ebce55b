package closeset

import (
	"errors"
	"strings"
	"testing"
)

func TestCloseAllRunsEveryCloseAndMerges(t *testing.T) {
	var ran [3]bool
	var s Set
	s.Add(func() error { ran[0] = true; return errors.New("first") })
	s.Add(nil)
	s.Add(func() error { ran[1] = true; return nil })
	s.Add(func() error { ran[2] = true; return errors.New("third") })

	err := s.CloseAll()
	if err == nil {
		t.Fatal("expected a merged error")
	}
	for i, got := range ran {
		if !got {
			t.Errorf("close %d did not run", i)
		}
	}
	if !strings.Contains(err.Error(), "first") || !strings.Contains(err.Error(), "third") {
		t.Errorf("merged error = %q, want both failures present", err.Error())
	}
}

func TestCloseAllReturnsNilWhenAllSucceed(t *testing.T) {
	var s Set
	s.Add(func() error { return nil })
	s.Add(func() error { return nil })
	if err := s.CloseAll(); err != nil {
		t.Fatalf("CloseAll = %v, want nil", err)
	}
}
