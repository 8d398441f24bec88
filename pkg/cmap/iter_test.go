package cmap

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestRange(t *testing.T) {
	m := newTestMap[int](t, 4)
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		_ = m.Set(k, v)
	}

	got := make(map[string]int)
	m.Range(func(k string, v int) bool {
		got[k] = v
		return true
	})

	if len(got) != len(want) {
		t.Fatalf("Range visited %d items, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Range value for %q = %d, want %d", k, got[k], v)
		}
	}
}

func TestRangeEarlyStop(t *testing.T) {
	m := newTestMap[int](t, 4)
	for i := 0; i < 100; i++ {
		_ = m.Set(fmt.Sprint(i), i)
	}

	count := 0
	m.Range(func(string, int) bool {
		count++
		return count < 10
	})
	if count != 10 {
		t.Errorf("Range visited %d items, want 10", count)
	}
}

func TestKeys(t *testing.T) {
	m := newTestMap[int](t, 4)
	_ = m.Set("x", 1)
	_ = m.Set("y", 2)

	keys := m.Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "x" || keys[1] != "y" {
		t.Errorf("Keys() = %v, want [x y]", keys)
	}
}

func TestGetOrSet(t *testing.T) {
	m := newTestMap[int](t, 4)

	v, loaded, err := m.GetOrSet("k", 1)
	if err != nil || loaded || v != 1 {
		t.Errorf("GetOrSet(k, 1) = (%d, %v, %v), want (1, false, nil)", v, loaded, err)
	}

	v, loaded, err = m.GetOrSet("k", 2)
	if err != nil || !loaded || v != 1 {
		t.Errorf("GetOrSet(k, 2) = (%d, %v, %v), want (1, true, nil)", v, loaded, err)
	}
}

func TestUpdate(t *testing.T) {
	m := newTestMap[int](t, 4)

	incr := func(v int, exists bool) int {
		if !exists {
			return 1
		}
		return v + 1
	}

	for i := 1; i <= 3; i++ {
		got, err := m.Update("counter", incr)
		if err != nil || got != i {
			t.Errorf("Update() = (%d, %v), want (%d, nil)", got, err, i)
		}
	}
}

func TestPop(t *testing.T) {
	m := newTestMap[string](t, 4)
	_ = m.Set("k", "v")

	v, ok := m.Pop("k")
	if !ok || v != "v" {
		t.Errorf("Pop(k) = (%q, %v), want (\"v\", true)", v, ok)
	}
	if m.Has("k") {
		t.Error("k should not exist after Pop")
	}

	_, ok = m.Pop("k")
	if ok {
		t.Error("second Pop(k) should report absent")
	}
}

func TestRangeWithLimit(t *testing.T) {
	m := newTestMap[int](t, 4)
	for i := 0; i < 50; i++ {
		_ = m.Set(fmt.Sprint(i), i)
	}

	if n := m.RangeWithLimit(20, func(string, int) bool { return true }); n != 20 {
		t.Errorf("RangeWithLimit(20) = %d, want 20", n)
	}
	if n := m.RangeWithLimit(100, func(string, int) bool { return true }); n != 50 {
		t.Errorf("RangeWithLimit(100) = %d, want 50", n)
	}

	seen := 0
	n := m.RangeWithLimit(20, func(string, int) bool {
		seen++
		return seen < 5
	})
	if n != 4 {
		t.Errorf("RangeWithLimit with early stop = %d, want 4", n)
	}
}

func TestConcurrentUpdate(t *testing.T) {
	m := newTestMap[int](t, 4)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = m.Update("counter", func(v int, _ bool) int { return v + 1 })
			}
		}()
	}
	wg.Wait()

	if v, _ := m.Get("counter"); v != 2000 {
		t.Errorf("counter = %d, want 2000", v)
	}
}

func TestConcurrentRange(t *testing.T) {
	m := newTestMap[int](t, 4)
	for i := 0; i < 200; i++ {
		_ = m.Set(fmt.Sprint(i), i)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Range(func(string, int) bool { return true })
		}()
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = m.Set(fmt.Sprintf("w%d-%d", base, j), j)
			}
		}(i)
	}
	wg.Wait()

	if m.Count() != 400 {
		t.Errorf("Count() = %d, want 400", m.Count())
	}
}
