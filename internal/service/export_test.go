package service

import "time"

// SetClock replaces the clock used for anonymous workspace eviction.
func (ws *Workspaces) SetClock(now func() time.Time) { ws.now = now }
