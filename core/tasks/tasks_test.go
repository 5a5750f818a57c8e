package tasks

import "testing"

func TestAssignAndTasks(t *testing.T) {
	b := NewBoard()
	b.Assign(3, []byte{1, 2, 5})

	got := b.Tasks(3)
	if len(got) != 3 {
		t.Fatalf("Tasks() len = %d, want 3", len(got))
	}
	for _, task := range got {
		if task.Complete {
			t.Errorf("task %d reported complete before Complete() called", task.ID)
		}
	}
}

func TestCompleteMarksFirstMatchingIncomplete(t *testing.T) {
	b := NewBoard()
	b.Assign(1, []byte{5, 5, 9})

	if !b.Complete(1, 5) {
		t.Fatal("Complete(1, 5) = false, want true")
	}

	done, total := b.CompletedCount(1)
	if done != 1 || total != 3 {
		t.Errorf("CompletedCount = (%d,%d), want (1,3)", done, total)
	}

	tasks := b.Tasks(1)
	completeCount := 0
	for _, task := range tasks {
		if task.Complete {
			completeCount++
		}
	}
	if completeCount != 1 {
		t.Errorf("%d tasks marked complete, want 1", completeCount)
	}
}

func TestCompleteUnknownPlayerOrTaskReturnsFalse(t *testing.T) {
	b := NewBoard()
	if b.Complete(9, 1) {
		t.Error("Complete() for unassigned player returned true")
	}

	b.Assign(1, []byte{2})
	if b.Complete(1, 99) {
		t.Error("Complete() for unknown task id returned true")
	}
}

func TestClearRemovesPlayer(t *testing.T) {
	b := NewBoard()
	b.Assign(1, []byte{1, 2})
	b.Clear(1)
	if len(b.Tasks(1)) != 0 {
		t.Error("Tasks() non-empty after Clear")
	}
}

func TestAssignReplacesExistingList(t *testing.T) {
	b := NewBoard()
	b.Assign(1, []byte{1, 2})
	b.Complete(1, 1)
	b.Assign(1, []byte{9})

	done, total := b.CompletedCount(1)
	if done != 0 || total != 1 {
		t.Errorf("CompletedCount after reassign = (%d,%d), want (0,1)", done, total)
	}
}
