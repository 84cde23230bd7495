package services

import (
	"context"
	"fmt"
	"io"

	"tradejournal/internal/core"
)

// SessionService appends trading sessions to the session log.
type SessionService struct {
	store    *TableStore
	captures *CaptureStore
}

func NewSessionService(store *TableStore, captures *CaptureStore) *SessionService {
	return &SessionService{store: store, captures: captures}
}

// Log loads the session log.
func (s *SessionService) Log(ctx context.Context) LoadResult {
	return s.store.Load(ctx, core.SessionSheet, core.Table{Columns: core.SessionColumns()})
}

// Record validates e, stores the optional capture and appends the entry.
// The log is refused when it could not be read, so that a transient read
// failure never replaces existing sessions with a single row. A capture is
// only kept once the row referencing it has been saved.
func (s *SessionService) Record(ctx context.Context, e core.SessionEntry, capture io.Reader) (core.Table, error) {
	if err := e.Validate(); err != nil {
		return core.Table{}, err
	}
	res := s.Log(ctx)
	if res.Origin == OriginDefault && res.Err != nil {
		return core.Table{}, fmt.Errorf("session log unavailable: %w", res.Err)
	}
	trial := res.Table.Clone()
	if err := e.AppendTo(&trial); err != nil {
		return core.Table{}, err
	}
	if capture == nil || s.captures == nil {
		if err := s.store.Save(ctx, trial, core.SessionSheet); err != nil {
			return core.Table{}, err
		}
		return trial, nil
	}

	rel, err := s.captures.Save(ctx, capture)
	if err != nil {
		return core.Table{}, err
	}
	e.Capture = rel
	t := res.Table
	err = e.AppendTo(&t)
	if err == nil {
		err = s.store.Save(ctx, t, core.SessionSheet)
	}
	if err != nil {
		s.captures.Remove(ctx, rel)
		return core.Table{}, err
	}
	return t, nil
}
