package transport

import "errors"

var (
    // ErrAlreadyActive is returned when a role is started while an engine is
    // already allocated.
    ErrAlreadyActive = errors.New("transport: already active")
    // ErrUnimplemented marks unsupported transport variants.
    ErrUnimplemented  = errors.New("transport: unimplemented")
    ErrPeerNotFound   = errors.New("transport: connection not found")
    ErrInvalidChannel = errors.New("transport: invalid channel")
    ErrNotConnected   = errors.New("transport: not connected")
)
