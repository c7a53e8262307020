package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/transitflow/busalloc/core/allocation"
	"github.com/transitflow/busalloc/core/events"
	"github.com/transitflow/busalloc/core/history"
	"github.com/transitflow/busalloc/core/model"
)

// flexInt tolerates numbers, quoted numbers and junk in JSON bodies.
// Unparsable values coerce to zero rather than failing the request; a
// negative fleet still reaches the engine and is rejected there.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if v, err := strconv.Atoi(s); err == nil {
		*f = flexInt(v)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexInt(int(v))
		return nil
	}
	*f = 0
	return nil
}

type allocationRequest struct {
	TotalBuses   flexInt        `json:"total_buses"`
	CycleSeconds flexInt        `json:"cycle_seconds"`
	StopCounts   map[string]int `json:"stop_counts"`
}

type allocationResponse struct {
	RunID string `json:"run_id"`
	model.AllocationResult
}

func (s *Server) allocate(c *gin.Context) {
	req, stopCounts, ok := s.parseRequest(c)
	if !ok {
		return
	}
	if stopCounts == nil {
		stopCounts = s.source.Snapshot()
	}

	runID := uuid.NewString()
	start := time.Now()
	res, err := s.engine.Allocate(req, stopCounts)
	if err != nil {
		s.writeEngineError(c, err)
		return
	}
	elapsed := time.Since(start)

	if s.store != nil {
		rec := history.Record{
			RunID:        runID,
			Timestamp:    time.Now(),
			TotalBuses:   req.TotalBuses,
			CycleSeconds: req.CycleSeconds,
			SavedBuses:   res.SavedBuses,
			Routes:       res.Routes,
			StopCounts:   res.StopCounts,
		}
		if err := s.store.Append(c.Request.Context(), rec); err != nil {
			s.log.Errorf("history append: %v", err)
		}
	}
	if s.bus != nil {
		s.bus.Publish(events.AllocationEvent{
			RunID:    runID,
			Request:  req,
			Result:   res,
			Duration: elapsed,
			Time:     time.Now(),
		})
	}
	if s.pub != nil {
		if err := s.pub.PublishResult(res); err != nil {
			s.log.Errorf("result publish: %v", err)
		}
	}

	c.JSON(http.StatusOK, allocationResponse{RunID: runID, AllocationResult: res})
}

// parseRequest accepts either a JSON body or classic form fields. Form
// requests carry one numeric field per stop identifier; unparsable numbers
// fall back to zero.
func (s *Server) parseRequest(c *gin.Context) (model.FleetRequest, model.StopCounts, bool) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body allocationRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
			return model.FleetRequest{}, nil, false
		}
		var counts model.StopCounts
		if body.StopCounts != nil {
			counts = model.StopCounts(body.StopCounts)
		}
		return model.FleetRequest{TotalBuses: int(body.TotalBuses), CycleSeconds: int(body.CycleSeconds)}, counts, true
	}

	req := model.FleetRequest{
		TotalBuses:   atoiOrZero(c.PostForm("total_buses")),
		CycleSeconds: atoiOrZero(c.PostForm("cycle_seconds")),
	}
	var counts model.StopCounts
	for _, stop := range s.engine.Topology().Stops() {
		if v, ok := c.GetPostForm(stop); ok {
			if counts == nil {
				counts = model.StopCounts{}
			}
			counts[stop] = atoiOrZero(v)
		}
	}
	return req, counts, true
}

func (s *Server) writeEngineError(c *gin.Context, err error) {
	var invalid allocation.InvalidFleetSizeError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "total_buses must be non-negative",
			"provided": invalid.Provided,
		})
		return
	}
	var insufficient allocation.InsufficientFleetError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            "not enough buses in depot to assign minimum 1 bus per route",
			"required_minimum": insufficient.Required,
			"provided":         insufficient.Provided,
		})
		return
	}
	s.log.Errorf("allocation failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "allocation failed"})
}

func (s *Server) routes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"routes": s.engine.Topology().Routes})
}

// allocations serves the stored run history. Requests must include an
// Authorization header with "Bearer <token>" when a token is configured.
func (s *Server) allocations(c *gin.Context) {
	if s.token != "" {
		if c.GetHeader("Authorization") != "Bearer "+s.token {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
	}
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history disabled"})
		return
	}

	q := history.Query{}
	if v := c.Query("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.Start = t
		}
	}
	if v := c.Query("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.End = t
		}
	}
	q.RouteID = atoiOrZero(c.Query("route_id"))

	records, err := s.store.Query(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"allocations": records})
}

func atoiOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
