package actor

import "errors"

// ErrNotJoinable is returned by NewJoinGuard for a nil handle, a handle that
// was already joined, or one that is already owned by another guard.
var ErrNotJoinable = errors.New("actor: handle not joinable")

// JoinGuard takes sole ownership of joining a handle. Close it (typically
// deferred) to wait for the actor.
//
//	g, err := actor.NewJoinGuard(h)
//	if err != nil {
//	    return err
//	}
//	defer g.Close()
type JoinGuard struct {
	h *Handle
}

// NewJoinGuard fails fast when h cannot be joined by this guard.
func NewJoinGuard(h *Handle) (*JoinGuard, error) {
	if !h.Joinable() {
		return nil, ErrNotJoinable
	}
	if !h.guarded.CompareAndSwap(false, true) {
		return nil, ErrNotJoinable
	}
	return &JoinGuard{h: h}, nil
}

// Close joins the guarded actor and returns its error.
func (g *JoinGuard) Close() error { return g.h.Join() }
