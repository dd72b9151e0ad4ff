package model

import "time"

// NoticeKind classifies a change notice sent to live viewers.
type NoticeKind string

// Notice kinds.
const (
	NoticeEntry   NoticeKind = "entry"   // a local submission was stored
	NoticeRefresh NoticeKind = "refresh" // the board changed through a load or snapshot
	NoticeStatus  NoticeKind = "status"  // the load status changed
)

// Notice tells live dashboards that the board changed.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Entry     *Entry     `json:"entry,omitempty"`
	Celebrate bool       `json:"celebrate,omitempty"`
	Status    string     `json:"status,omitempty"`
	Version   uint64     `json:"version"`
	At        time.Time  `json:"at"`
}
