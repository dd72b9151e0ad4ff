package service

import (
	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"
)

// replaceLocked swaps the whole board. Must be called with s.mu held.
func (s *Service) replaceLocked(entries []model.Entry) {
	seen := make(map[string]struct{}, len(entries))
	board := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		board = append(board, e)
	}
	repository.SortNewest(board)
	s.entries = board
	s.version++
	metrics.UpdateBoardEntries(len(board))
}

// mergeLocked inserts entries by id, replacing any existing copy, and
// reports whether the board changed. Every change counts as a write, so
// a reload that fetched before it merges instead of replacing. Must be
// called with s.mu held.
func (s *Service) mergeLocked(entries ...model.Entry) bool {
	if len(entries) == 0 {
		return false
	}
	index := make(map[string]int, len(s.entries))
	for i, e := range s.entries {
		index[e.ID] = i
	}

	board := s.entries
	changed := false
	for _, e := range entries {
		if i, ok := index[e.ID]; ok {
			if !sameEntry(board[i], e) {
				board[i] = e
				changed = true
			}
			continue
		}
		index[e.ID] = len(board)
		board = append(board, e)
		changed = true
	}
	if !changed {
		return false
	}
	repository.SortNewest(board)
	s.entries = board
	s.version++
	s.writes++
	metrics.UpdateBoardEntries(len(board))
	return true
}

func sameEntry(a, b model.Entry) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.Date.Equal(b.Date) &&
		a.Week == b.Week && a.Month == b.Month && a.Year == b.Year &&
		a.Counts() == b.Counts() &&
		a.CreatedAt.Equal(b.CreatedAt)
}
