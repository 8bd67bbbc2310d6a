package server

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const keepaliveInterval = 30 * time.Second

// streamEvents serves GET /events/stream: each published batch becomes
// one SSE data frame carrying a JSON array of events. Comment frames
// keep idle connections alive through proxies.
func (s *Server) streamEvents(c *gin.Context) {
	ch, cancel := s.hub.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	streamClients.Inc()
	defer streamClients.Dec()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case batch, ok := <-ch:
			if !ok {
				return false
			}
			data, err := json.Marshal(batch)
			if err != nil {
				s.log.Warn("encode stream batch", "error", err)
				return true
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			return true
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			return true
		}
	})
}
