// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package resolution exposes the draft resolution engine over HTTP.
package resolution

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scriptoria/scriptorium/pkg/validation"
	"github.com/scriptoria/scriptorium/services/resolution/dossier"
	"github.com/scriptoria/scriptorium/services/resolution/registry"
	"github.com/scriptoria/scriptorium/services/resolution/resolver"
	"github.com/scriptoria/scriptorium/services/resolution/verindex"
)

// ServiceVersion is the resolution service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the resolution service.
type Handlers struct {
	resolver *resolver.Resolver
	trees    dossier.TreeProvider
	finals   dossier.FinalRegistry
	index    *verindex.Cache
}

// NewHandlers creates handlers wired to the engine collaborators.
// finals may be nil when the final registry is disabled; the final
// endpoints then answer 503.
func NewHandlers(res *resolver.Resolver, trees dossier.TreeProvider, finals dossier.FinalRegistry, index *verindex.Cache) *Handlers {
	return &Handlers{resolver: res, trees: trees, finals: finals, index: index}
}

// HandleResolve handles POST /v1/resolution/resolve.
//
// Description:
//
//	Resolves a navigational selection to its display text. The deepest
//	populated id in the request decides granularity: draft pins an exact
//	version, run and segment walk the precedence fallback chain, and a
//	bare dossier id returns the stitched reading view. Resolution never
//	fails; unresolvable selections come back with empty text.
//
// Response:
//
//	200 OK: resolver.Result
//	400 Bad Request: malformed body or invalid identifier
func (h *Handlers) HandleResolve(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleResolve")

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	if err := validation.ValidateEntityIDs(req.DossierID, req.SegmentID, req.RunID, req.DraftID); err != nil {
		logger.Warn("Invalid identifier", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_ID",
		})
		return
	}

	path := dossier.SelectionPath{
		DossierID: req.DossierID,
		SegmentID: req.SegmentID,
		RunID:     req.RunID,
		DraftID:   req.DraftID,
	}
	res := h.resolver.ResolveOnce(c.Request.Context(), path)

	logger.Info("Selection resolved",
		"dossier_id", req.DossierID,
		"mode", res.Mode,
		"source", res.Context.Source,
		"text_len", len(res.Text))
	c.JSON(http.StatusOK, res)
}

// HandleStitched handles GET /v1/resolution/dossiers/:dossierId/stitched.
//
// Response:
//
//	200 OK: StitchedResponse
//	400 Bad Request: invalid dossier id
//	404 Not Found: unknown dossier
func (h *Handlers) HandleStitched(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleStitched")

	dossierID := c.Param("dossierId")
	if err := validation.ValidateEntityID(dossierID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_ID"})
		return
	}

	d, err := h.trees.GetDossier(c.Request.Context(), dossierID)
	if err != nil || d == nil {
		logger.Warn("Dossier not found", "dossier_id", dossierID, "error", err)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrDossierNotFound.Error(),
			Code:  "DOSSIER_NOT_FOUND",
		})
		return
	}

	text := h.resolver.Stitch(c.Request.Context(), d)
	logger.Info("Dossier stitched", "dossier_id", dossierID, "segments", len(d.Segments))
	c.JSON(http.StatusOK, StitchedResponse{
		DossierID: dossierID,
		Text:      text,
		Segments:  len(d.Segments),
	})
}

// HandleInvalidate handles POST /v1/resolution/invalidate.
//
// Description:
//
//	Applies one named invalidation event to the version index cache.
//	Mirrors the file watcher's event bridge for callers that know about
//	changes the filesystem cannot show (remote saves, bulk imports).
//
// Response:
//
//	200 OK: InvalidateResponse
//	400 Bad Request: unknown event name or invalid dossier id
func (h *Handlers) HandleInvalidate(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleInvalidate")

	var req InvalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	if !verindex.KnownEvent(verindex.EventName(req.Event)) {
		logger.Warn("Unknown invalidation event", "event", req.Event)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrUnknownEvent.Error(),
			Code:  "UNKNOWN_EVENT",
		})
		return
	}
	if req.DossierID != "" {
		if err := validation.ValidateEntityID(req.DossierID); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_ID"})
			return
		}
	}

	h.index.HandleEvent(verindex.Event{
		Name:      verindex.EventName(req.Event),
		DossierID: req.DossierID,
	})
	logger.Info("Invalidation applied", "event", req.Event, "dossier_id", req.DossierID)
	c.JSON(http.StatusOK, InvalidateResponse{
		Accepted:  true,
		Event:     req.Event,
		DossierID: req.DossierID,
	})
}

// HandleGetFinal handles GET /v1/resolution/dossiers/:dossierId/segments/:segmentId/final.
//
// Response:
//
//	200 OK: FinalResponse
//	404 Not Found: no final recorded for the segment
func (h *Handlers) HandleGetFinal(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetFinal")

	dossierID, segmentID, ok := h.finalParams(c)
	if !ok {
		return
	}

	entry, err := h.finals.GetSegmentFinal(c.Request.Context(), dossierID, segmentID)
	if err != nil {
		logger.Error("Final lookup failed", "dossier_id", dossierID, "segment_id", segmentID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "REGISTRY_ERROR"})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrFinalNotFound.Error(),
			Code:  "FINAL_NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, FinalResponse{DossierID: dossierID, SegmentID: segmentID, Entry: *entry})
}

// HandleSetFinal handles POST /v1/resolution/dossiers/:dossierId/segments/:segmentId/final.
//
// Response:
//
//	200 OK: FinalResponse with the stored entry (SetAt stamped)
//	400 Bad Request: missing fields or invalid identifiers
func (h *Handlers) HandleSetFinal(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSetFinal")

	dossierID, segmentID, ok := h.finalParams(c)
	if !ok {
		return
	}

	var req FinalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	entry := dossier.FinalEntry{
		TranscriptionID: req.TranscriptionID,
		DraftID:         req.DraftID,
		SetBy:           req.SetBy,
	}
	if err := h.finals.SetSegmentFinal(c.Request.Context(), dossierID, segmentID, entry); err != nil {
		status := http.StatusInternalServerError
		code := "REGISTRY_ERROR"
		if errors.Is(err, registry.ErrInvalidEntry) {
			status = http.StatusBadRequest
			code = "INVALID_ENTRY"
		}
		logger.Error("Final store failed", "dossier_id", dossierID, "segment_id", segmentID, "error", err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	stored, err := h.finals.GetSegmentFinal(c.Request.Context(), dossierID, segmentID)
	if err != nil || stored == nil {
		// Write succeeded, readback did not; return what we were given.
		stored = &entry
	}
	logger.Info("Final selection recorded",
		"dossier_id", dossierID,
		"segment_id", segmentID,
		"draft_id", req.DraftID)
	c.JSON(http.StatusOK, FinalResponse{DossierID: dossierID, SegmentID: segmentID, Entry: *stored})
}

// HandleClearFinal handles DELETE /v1/resolution/dossiers/:dossierId/segments/:segmentId/final.
//
// Response:
//
//	204 No Content: entry removed
//	404 Not Found: no final was recorded
func (h *Handlers) HandleClearFinal(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleClearFinal")

	dossierID, segmentID, ok := h.finalParams(c)
	if !ok {
		return
	}

	removed, err := h.finals.ClearSegmentFinal(c.Request.Context(), dossierID, segmentID)
	if err != nil {
		logger.Error("Final clear failed", "dossier_id", dossierID, "segment_id", segmentID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "REGISTRY_ERROR"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrFinalNotFound.Error(),
			Code:  "FINAL_NOT_FOUND",
		})
		return
	}
	logger.Info("Final selection cleared", "dossier_id", dossierID, "segment_id", segmentID)
	c.Status(http.StatusNoContent)
}

// HandleHealth handles GET /v1/resolution/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "healthy",
		Version:       ServiceVersion,
		CachedIndexes: h.index.Size(),
	})
}

// finalParams validates the path params shared by the final endpoints
// and verifies the registry is configured. Writes the error response
// itself and returns ok=false when the request must not proceed.
func (h *Handlers) finalParams(c *gin.Context) (dossierID, segmentID string, ok bool) {
	if h.finals == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "final registry not configured",
			Code:  "REGISTRY_DISABLED",
		})
		return "", "", false
	}
	dossierID = c.Param("dossierId")
	segmentID = c.Param("segmentId")
	if err := validation.ValidateEntityIDs(dossierID, segmentID); err != nil || dossierID == "" || segmentID == "" {
		if err == nil {
			err = errors.New("dossier and segment ids are required")
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_ID"})
		return "", "", false
	}
	return dossierID, segmentID, true
}

// getOrCreateRequestID returns the X-Request-ID header, generating one
// when absent, and echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
