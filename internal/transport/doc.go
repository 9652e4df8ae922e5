// Package transport provides the WebSocket connection layer for the INDIGO
// client.
//
// The model layer consumes the small Transport interface (Send/Receive/Close)
// so tests and alternative transports can substitute the wire. The production
// implementation wraps a gorilla/websocket connection carrying UTF-8 JSON text
// messages, one protocol message per WebSocket message.
//
// # Connection Lifecycle
//
//	t, err := transport.Dial(ctx, "ws://mount.local:7624")
//	if err != nil { ... }
//	defer t.Close()
//
//	for {
//	    data, err := t.Receive()
//	    if err != nil {
//	        break // closed or failed; both end the receive loop
//	    }
//	    // dispatch data
//	}
//
// Close is idempotent and safe to call from any goroutine. Closing unblocks a
// pending Receive, which is the only way to cancel an in-flight receive loop.
package transport
