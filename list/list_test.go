package list

import "testing"

func TestPushAndFind(t *testing.T) {
	l := New[int](nil)
	l.PushBack(1)
	l.PushBack(2)
	l.PushFront(0)

	if l.Size() != 3 {
		t.Fatalf("size = %d, want 3", l.Size())
	}

	var seen []int
	l.Each(func(v int) { seen = append(seen, v) })
	want := []int{0, 1, 2}
	for i, w := range want {
		if seen[i] != w {
			t.Fatalf("order[%d] = %d, want %d", i, seen[i], w)
		}
	}

	if v, ok := l.FindFirst(func(v int) bool { return v == 1 }); !ok || v != 1 {
		t.Fatalf("find(1) = %d, %v", v, ok)
	}
	if _, ok := l.FindFirst(func(v int) bool { return v == 9 }); ok {
		t.Fatal("find(9) should fail")
	}
}

func TestDeleteFirst(t *testing.T) {
	destroyed := 0
	l := New[int](func(int) { destroyed++ })
	l.PushBack(1)
	l.PushBack(2)
	l.PushBack(3)

	if !l.DeleteFirst(func(v int) bool { return v == 2 }) {
		t.Fatal("expected delete to find the value")
	}
	if destroyed != 1 {
		t.Fatalf("destroyed = %d, want 1", destroyed)
	}
	if l.Size() != 2 {
		t.Fatalf("size = %d, want 2", l.Size())
	}
	if l.DeleteFirst(func(v int) bool { return v == 99 }) {
		t.Fatal("delete of absent value should report false")
	}
}

func TestDeleteTail(t *testing.T) {
	l := New[int](nil)
	l.PushBack(1)
	l.PushBack(2)
	if !l.DeleteFirst(func(v int) bool { return v == 2 }) {
		t.Fatal("expected delete to succeed")
	}
	l.PushBack(3)
	var seen []int
	l.Each(func(v int) { seen = append(seen, v) })
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 3 {
		t.Fatalf("unexpected order after tail deletion and re-append: %v", seen)
	}
}

func TestUpdateFirst(t *testing.T) {
	l := New[int](nil)
	l.PushBack(1)
	l.PushBack(2)

	ok := l.UpdateFirst(
		func(v int) bool { return v == 2 },
		func(v int) bool { return true },
	)
	if !ok {
		t.Fatal("update should report success")
	}
	if l.UpdateFirst(func(v int) bool { return v == 99 }, func(int) bool { return true }) {
		t.Fatal("update of absent value should report false")
	}
}

func TestDestroy(t *testing.T) {
	destroyed := 0
	l := New[int](func(int) { destroyed++ })
	l.PushBack(1)
	l.PushBack(2)
	l.PushBack(3)

	l.Destroy()
	if destroyed != 3 {
		t.Fatalf("destroyed = %d, want 3", destroyed)
	}
	if l.Size() != 0 {
		t.Fatalf("size after destroy = %d, want 0", l.Size())
	}
}
