// Package server implements spec.md §6's HTTP transport: the six routes
// an Argon client/editor talks to. Routes are thin: they decode/encode
// JSON and delegate to internal/core.Core and internal/processor.Processor
// for all actual logic, ported in shape from
// original_source/src/server/unsubscribe.rs's minimal-handler style.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/core"
	"github.com/go-chi/chi/v5"
)

// drainTimeout bounds how long POST /read long-polls before returning an
// empty result, per spec.md §4.5's drain contract.
const drainTimeout = 30 * time.Second

// New builds the chi router exposing spec.md §6's six endpoints over c.
func New(c *core.Core) http.Handler {
	r := chi.NewRouter()

	r.Post("/subscribe", handleSubscribe(c))
	r.Post("/unsubscribe", handleUnsubscribe(c))
	r.Get("/snapshot", handleSnapshot(c))
	r.Post("/read", handleRead(c))
	r.Post("/write", handleWrite(c))
	r.Get("/details", handleDetails(c))

	return r
}

type subscribeRequest struct {
	ClientID uint64 `json:"client_id"`
}

func handleSubscribe(c *core.Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		c.Queue.Subscribe(req.ClientID)
		w.WriteHeader(http.StatusOK)
	}
}

// handleUnsubscribe is ported in shape from
// original_source/src/server/unsubscribe.rs: decode the client id, call
// the one underlying operation, and translate its boolean result into the
// two documented status/body pairs.
func handleUnsubscribe(c *core.Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if c.Queue.Unsubscribe(req.ClientID) {
			writeText(w, http.StatusOK, "Unsubscribed successfully")
		} else {
			writeText(w, http.StatusBadRequest, "Not subscribed")
		}
	}
}

func handleSnapshot(c *core.Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := c.Snapshot(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

type readRequest struct {
	ClientID uint64 `json:"client_id"`
}

func handleRead(c *core.Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req readRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), drainTimeout)
		defer cancel()

		changes, err := c.Queue.Drain(ctx, req.ClientID, drainTimeout)
		if err != nil {
			httpError(w, http.StatusBadRequest, err.Error())
			return
		}
		if changes == nil {
			changes = []api.ChangeSet{}
		}
		writeJSON(w, http.StatusOK, changes)
	}
}

func handleWrite(c *core.Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch api.Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			httpError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		result := c.Processor.HandlePatch(patch)
		writeJSON(w, http.StatusOK, result)
	}
}

func handleDetails(c *core.Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Details())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func httpError(w http.ResponseWriter, status int, message string) {
	writeText(w, status, message)
}
