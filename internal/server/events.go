package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

const maxIngestBody = 4 << 20

// listEvents serves GET /api/events. Filter values default on empty or
// invalid input; a query is never rejected for a bad parameter.
func (s *Server) listEvents(c *gin.Context) {
	f := model.Filter{
		User:      strings.TrimSpace(c.Query("user")),
		Limit:     intQuery(c, "limit", model.DefaultLimit),
		LastNDays: intQuery(c, "last_n_days", model.DefaultLastNDays),
	}

	events, err := s.store.FetchEvents(c.Request.Context(), f)
	if err != nil {
		s.log.Error("fetch events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query events"})
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// ingestEvents serves POST /api/events: a JSON array of events or a
// single event object. Rows are persisted (duplicate ids ignored) and
// the batch is fanned out to stream subscribers. A row that fails to
// persist is still streamed; the realtime view should not stall on a
// database hiccup.
func (s *Server) ingestEvents(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIngestBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
		return
	}

	batch, ok := decodeIngest(body)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected an event or an array of events"})
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	inserted := 0
	for i := range batch {
		if batch[i].ID == "" {
			batch[i].ID = uuid.New().String()
		}
		if batch[i].Timestamp == "" {
			batch[i].Timestamp = now
		}
		if batch[i].UserID == "" {
			batch[i].UserID = model.UnknownUser
		}
		if err := s.store.InsertEvent(c.Request.Context(), batch[i]); err != nil {
			s.log.Warn("persist event", "id", batch[i].ID, "error", err)
			continue
		}
		inserted++
	}

	s.hub.Publish(batch)
	eventsIngestedTotal.Add(float64(len(batch)))

	c.JSON(http.StatusAccepted, gin.H{"accepted": len(batch), "inserted": inserted})
}

func decodeIngest(body []byte) ([]model.Event, bool) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, false
	}

	if strings.HasPrefix(trimmed, "[") {
		var batch []model.Event
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, false
		}
		return batch, true
	}

	var single model.Event
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, false
	}
	return []model.Event{single}, true
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
