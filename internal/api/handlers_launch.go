// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/conduct-telemetry/internal/ingest"
	"github.com/tomtom215/conduct-telemetry/internal/models"
	"github.com/tomtom215/conduct-telemetry/internal/validation"
)

// maxLaunchEventBody bounds the request body. A valid event is a few hundred
// bytes.
const maxLaunchEventBody = 16 << 10

var errTrailingData = errors.New("data after the JSON object")

// LaunchEvent ingests one launch event.
func (h *Handler) LaunchEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLaunchEventBody)

	var req models.LaunchEventRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		h.respondDecodeError(w, r, err)
		return
	}
	if err := expectEOF(dec); err != nil {
		h.respondDecodeError(w, r, err)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondAPIError(w, http.StatusUnprocessableEntity, &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		})
		return
	}

	in, err := req.ToInput()
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, CodeValidation, err.Error(), nil)
		return
	}

	res, err := h.pipeline.Ingest(r.Context(), in, ingest.OriginFromRequest(r))
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to store launch event", err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// respondDecodeError maps body decoding failures. A well-formed document with
// a wrongly typed field is a validation failure, not malformed JSON.
func (h *Handler) respondDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		respondAPIError(w, http.StatusUnprocessableEntity, &models.APIError{
			Code:    CodeValidation,
			Message: field + " has the wrong type",
			Details: map[string]interface{}{
				"fields": []map[string]interface{}{{"field": field, "tag": "type", "message": field + " has the wrong type"}},
			},
		})
		return
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		respondError(w, r, http.StatusRequestEntityTooLarge, CodeInvalidJSON, "Request body too large", nil)
		return
	}

	if errors.Is(err, errTrailingData) {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "Request body must be a single JSON object", nil)
		return
	}

	respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "Request body must be a JSON object", nil)
}

// expectEOF fails unless only whitespace follows the decoded value.
func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	err := dec.Decode(&extra)
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		return errTrailingData
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return errTrailingData
	}
}
