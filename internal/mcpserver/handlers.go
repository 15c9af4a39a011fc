package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/JustZavala/onboard/internal/capture"
	"github.com/JustZavala/onboard/internal/flow"
	"github.com/JustZavala/onboard/internal/logger"
	"github.com/mark3labs/mcp-go/mcp"
)

// stateView is the JSON shape returned by every tool.
type stateView struct {
	Session    string      `json:"session"`
	Flow       string      `json:"flow"`
	Step       flow.Step   `json:"step"`
	Title      string      `json:"title"`
	Index      int         `json:"index"`
	Count      int         `json:"count"`
	Final      bool        `json:"final"`
	Choices    []string    `json:"choices,omitempty"`
	Required   []flow.Slot `json:"required,omitempty"`
	Missing    []flow.Slot `json:"missing,omitempty"`
	Filled     []flow.Slot `json:"filled,omitempty"`
	Phase      string      `json:"phase"`
	ElapsedMS  int64       `json:"elapsed_ms"`
	TotalMS    int64       `json:"total_ms"`
	Progress   float64     `json:"progress"`
	CanAdvance bool        `json:"can_advance"`
}

// stateResult renders the controller state. Callers hold ctrlMu.
func (s *Server) stateResult() (*mcp.CallToolResult, error) {
	snap := s.ctrl.Snapshot()
	output, err := json.Marshal(stateView{
		Session:    s.id,
		Flow:       snap.Flow,
		Step:       snap.Step,
		Title:      snap.Title,
		Index:      snap.Index,
		Count:      snap.Count,
		Final:      snap.Final,
		Choices:    snap.Choices,
		Required:   snap.Required,
		Missing:    snap.Missing,
		Filled:     snap.Filled,
		Phase:      snap.Phase.Kind.String(),
		ElapsedMS:  snap.Phase.Elapsed.Milliseconds(),
		TotalMS:    snap.Phase.Total.Milliseconds(),
		Progress:   snap.Progress,
		CanAdvance: snap.CanAdvance,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode state: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

// handleState reports the session without changing it.
func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	return s.stateResult()
}

// handleSetArtifact decodes the payload and stores it in the requested slot.
func (s *Server) handleSetArtifact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	slot, ok := args["slot"].(string)
	if !ok || slot == "" {
		return mcp.NewToolResultError("missing or empty 'slot' parameter"), nil
	}
	name, _ := args["name"].(string)
	if name == "" {
		name = slot
	}
	data, hasData := args["data"].(string)
	text, hasText := args["text"].(string)

	var artifact flow.Artifact
	switch {
	case hasData && hasText:
		return mcp.NewToolResultError("provide either 'data' or 'text', not both"), nil
	case hasData:
		a, err := capture.DecodeBase64(name, data, s.opts.MaxArtifactBytes)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		artifact = a
	case hasText:
		if text == "" {
			return mcp.NewToolResultError("'text' is empty"), nil
		}
		artifact = flow.Artifact{Name: name, Data: []byte(text)}
	default:
		return mcp.NewToolResultError("missing 'data' or 'text' parameter"), nil
	}

	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	if err := s.ctrl.SetArtifact(flow.Slot(slot), artifact); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	logger.Debug("session %s: stored %s (%d bytes)", s.id, slot, len(artifact.Data))
	return s.stateResult()
}

// handleAdvance moves to the next step.
func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	if _, err := s.ctrl.Advance(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if snap := s.ctrl.Snapshot(); snap.Final && s.opts.OnComplete != nil {
		s.opts.OnComplete(snap)
	}
	return s.stateResult()
}

// handleBack returns to the previous step.
func (s *Server) handleBack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	if _, err := s.ctrl.GoBack(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.stateResult()
}

// handleStartVerification starts the phase with the requested or configured total.
func (s *Server) handleStartVerification(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	total := s.opts.VerifyDuration
	if ms, ok := request.GetArguments()["duration_ms"].(float64); ok {
		if ms < 0 {
			return mcp.NewToolResultError("'duration_ms' must be >= 0"), nil
		}
		d, ok := millis(ms)
		if !ok {
			return mcp.NewToolResultError("'duration_ms' is out of range"), nil
		}
		total = d
	}

	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	if err := s.ctrl.StartVerification(total); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.stateResult()
}

// handleTick advances the verification clock by delta_ms.
func (s *Server) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ms, ok := request.GetArguments()["delta_ms"].(float64)
	if !ok {
		return mcp.NewToolResultError("missing or non-numeric 'delta_ms' parameter"), nil
	}
	delta, ok := millis(ms)
	if !ok {
		return mcp.NewToolResultError("'delta_ms' is out of range"), nil
	}

	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	s.ctrl.Tick(delta)
	return s.stateResult()
}

// handleReset starts the session over.
func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	s.ctrl.Reset()
	logger.Info("session %s: reset", s.id)
	if s.opts.OnReset != nil {
		s.opts.OnReset(s.ctrl.Snapshot())
	}
	return s.stateResult()
}

// maxMillis is the largest millisecond count a time.Duration can hold.
const maxMillis = float64(math.MaxInt64 / int64(time.Millisecond))

// millis converts a client-supplied millisecond count, refusing values that
// would not fit in a time.Duration.
func millis(ms float64) (time.Duration, bool) {
	if math.IsNaN(ms) || ms > maxMillis || ms < -maxMillis {
		return 0, false
	}
	return time.Duration(ms * float64(time.Millisecond)), true
}
