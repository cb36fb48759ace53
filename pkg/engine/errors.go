package engine

import "errors"

var (
    ErrNotStarted      = errors.New("engine: not started")
    ErrAlreadyStarted  = errors.New("engine: already started")
    ErrStopped         = errors.New("engine: stopped")
    ErrPeerNotFound    = errors.New("engine: peer not found")
    ErrPeerClosed      = errors.New("engine: peer closed")
    ErrRequestHandled  = errors.New("engine: connection request already handled")
    ErrMessageTooLarge = errors.New("engine: message too large")
    ErrUnknownMethod   = errors.New("engine: unknown delivery method")
)
