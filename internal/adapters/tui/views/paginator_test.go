package views

import "testing"

func TestPaginatorWindowFollowsCursor(t *testing.T) {
	p := NewPaginator(3)
	p.SetTotal(7)

	for range 4 {
		p.CursorDown()
	}
	if got := p.Cursor(); got != 4 {
		t.Fatalf("cursor = %d, want 4", got)
	}
	start, end := p.VisibleRange()
	if start != 3 || end != 6 {
		t.Errorf("range = [%d,%d), want [3,6)", start, end)
	}
	if p.CurrentPage() != 2 || p.TotalPages() != 3 {
		t.Errorf("page %d of %d, want 2 of 3", p.CurrentPage(), p.TotalPages())
	}
}

func TestPaginatorShrinkingTotalClampsCursor(t *testing.T) {
	p := NewPaginator(5)
	p.SetTotal(10)
	p.SetCursor(9)
	p.SetTotal(4)

	if got := p.Cursor(); got != 3 {
		t.Errorf("cursor = %d, want 3", got)
	}
	if start, _ := p.VisibleRange(); start != 0 {
		t.Errorf("start = %d, want 0", start)
	}
}

func TestPaginatorPages(t *testing.T) {
	p := NewPaginator(4)
	p.SetTotal(6)

	if !p.NextPage() {
		t.Fatal("expected a second page")
	}
	if p.Cursor() != 4 {
		t.Errorf("cursor = %d, want 4", p.Cursor())
	}
	if p.NextPage() {
		t.Error("no third page expected")
	}
	if !p.PrevPage() || p.Cursor() != 0 {
		t.Errorf("after PrevPage cursor = %d, want 0", p.Cursor())
	}
}

func TestPaginatorSetPageSizeKeepsCursorVisible(t *testing.T) {
	p := NewPaginator(10)
	p.SetTotal(30)
	p.SetCursor(17)
	p.SetPageSize(5)

	start, end := p.VisibleRange()
	if start > 17 || end <= 17 {
		t.Errorf("cursor 17 outside [%d,%d)", start, end)
	}
}
