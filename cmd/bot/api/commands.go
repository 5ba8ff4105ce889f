package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/samber/lo"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/commands"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/logger"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/middleware"
)

// CommandInfo describes a registered command.
type CommandInfo struct {
	Name        string `json:"name"`
	Usage       string `json:"usage"`
	Description string `json:"description"`
}

// RunCommandRequest is the body of POST /v1/commands.
type RunCommandRequest struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// RunCommandResponse is returned for every dispatched command.
type RunCommandResponse struct {
	ID         string  `json:"id"`
	Command    string  `json:"command"`
	Failure    string  `json:"failure"`
	DurationMS int64   `json:"duration_ms"`
	Replies    []Reply `json:"replies"`
}

// ListCommands returns the registry in help order.
func (s *ApiService) ListCommands(w http.ResponseWriter, r *http.Request) {
	infos := lo.Map(s.Dispatcher.Registry().Commands(), func(cmd commands.Command, _ int) CommandInfo {
		return CommandInfo{Name: cmd.Name, Usage: cmd.Usage(), Description: cmd.Description}
	})
	writeJSON(w, http.StatusOK, infos)
}

// RunCommand dispatches one command and answers with its replies. The
// command finishes even if the client goes away.
func (s *ApiService) RunCommand(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req RunCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be a JSON object")
		return
	}

	sink := &collectingSink{}
	res := s.Dispatcher.Dispatch(context.WithoutCancel(r.Context()), commands.Request{
		Name: req.Command,
		Args: req.Args,
		Sink: sink,
	})

	if errors.Is(res.Err, commands.ErrUnknownCommand) {
		middleware.WriteError(w, http.StatusNotFound, "unknown_command", "unknown command: "+req.Command)
		return
	}

	log.InfoContext(r.Context(), "command run via api",
		"command", req.Command, "command_id", res.ID, "caller", middleware.CallerFromContext(r.Context()), "failure", res.Failure.String())

	writeJSON(w, http.StatusOK, RunCommandResponse{
		ID:         res.ID,
		Command:    res.Command,
		Failure:    res.Failure.String(),
		DurationMS: res.Duration.Milliseconds(),
		Replies:    sink.collected(),
	})
}

// Health reports liveness.
func (s *ApiService) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
