// Package tasks tracks each player's assigned task list and completion
// state. The session fills it from SetTasks RPCs and roster task states and
// clears it on EndGame; CompleteTask RPCs do not update it
// (spec.md §4.6, original_source/amongus/task.py).
package tasks

import "sync"

// Task is one assigned task: a task-type id and whether it has been
// completed.
type Task struct {
	ID       byte
	Complete bool
}

// Board is a mutex-guarded registry of per-player task lists, the same
// "map[id]*T guarded by a mutex" registry shape as the teacher's vehicle
// spawn/destroy bookkeeping, repurposed here to task ids keyed by player id
// instead of vehicle ids keyed by a spawn counter.
type Board struct {
	mu    sync.Mutex
	lists map[byte][]Task
}

// NewBoard returns an empty task board.
func NewBoard() *Board {
	return &Board{lists: make(map[byte][]Task)}
}

// Assign replaces playerID's task list with taskIDs, each starting
// incomplete. Matches SetTasks RPC semantics: the server sends the full
// assigned set, not incremental additions.
func (b *Board) Assign(playerID byte, taskIDs []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := make([]Task, len(taskIDs))
	for i, id := range taskIDs {
		list[i] = Task{ID: id}
	}
	b.lists[playerID] = list
}

// Complete marks the first incomplete task matching taskID as complete for
// playerID. Reports whether a matching task was found.
func (b *Board) Complete(playerID byte, taskID byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	list, ok := b.lists[playerID]
	if !ok {
		return false
	}
	for i := range list {
		if list[i].ID == taskID && !list[i].Complete {
			list[i].Complete = true
			return true
		}
	}
	return false
}

// Tasks returns a copy of playerID's task list.
func (b *Board) Tasks(playerID byte) []Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.lists[playerID]
	out := make([]Task, len(list))
	copy(out, list)
	return out
}

// Clear removes a player's task list, e.g. on player removal or a new round.
func (b *Board) Clear(playerID byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.lists, playerID)
}

// CompletedCount returns how many of playerID's tasks are complete and the
// total assigned. No event is emitted from these counts.
func (b *Board) CompletedCount(playerID byte) (done, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.lists[playerID]
	total = len(list)
	for _, t := range list {
		if t.Complete {
			done++
		}
	}
	return done, total
}
