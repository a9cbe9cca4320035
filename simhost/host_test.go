package simhost

import "testing"

func TestRun_OrdersByTime(t *testing.T) {
	h := NewHost()
	var order []string

	h.After(5, func(h *Host) { order = append(order, "late") })
	h.After(1, func(h *Host) { order = append(order, "early") })
	h.After(3, func(h *Host) { order = append(order, "middle") })

	h.Run()

	want := []string{"early", "middle", "late"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRun_FIFOAtSameTime(t *testing.T) {
	h := NewHost()
	var order []int

	h.At(0, func(h *Host) { order = append(order, 1) })
	h.At(0, func(h *Host) { order = append(order, 2) })
	h.At(0, func(h *Host) { order = append(order, 3) })

	h.Run()

	for i, v := range []int{1, 2, 3} {
		if order[i] != v {
			t.Fatalf("order = %v, want [1 2 3]", order)
		}
	}
}

func TestRun_AdvancesNow(t *testing.T) {
	h := NewHost()
	h.After(10, func(h *Host) {
		if h.Now() != 10 {
			t.Errorf("Now() inside event = %v, want 10", h.Now())
		}
	})
	h.Run()
	if h.Now() != 10 {
		t.Errorf("Now() after Run = %v, want 10", h.Now())
	}
}

func TestAt_EventsScheduleMoreEvents(t *testing.T) {
	h := NewHost()
	count := 0
	var step Func
	step = func(h *Host) {
		count++
		if count < 3 {
			h.After(1, step)
		}
	}
	h.After(1, step)
	h.Run()
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestCancel_SkipsEvent(t *testing.T) {
	h := NewHost()
	ran := false
	handle := h.After(1, func(h *Host) { ran = true })
	handle.Cancel()
	h.Run()
	if ran {
		t.Error("cancelled event ran")
	}
}

func TestRunUntil_LeavesLaterEvents(t *testing.T) {
	h := NewHost()
	var order []string
	h.After(1, func(h *Host) { order = append(order, "a") })
	h.After(5, func(h *Host) { order = append(order, "b") })

	h.RunUntil(2)
	if len(order) != 1 || order[0] != "a" {
		t.Fatalf("after RunUntil(2) order = %v, want [a]", order)
	}
	if !h.Pending() {
		t.Error("Pending() = false, want true (event at t=5 remains)")
	}

	h.Run()
	if len(order) != 2 || order[1] != "b" {
		t.Fatalf("after Run order = %v, want [a b]", order)
	}
}
