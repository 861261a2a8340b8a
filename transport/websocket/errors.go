package websocket

import "errors"

var (
	errConnectFirst     = errors.New("connect is required before this action")
	errPositionRequired = errors.New("position is required")
)
