// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

// Package validation checks request structs with go-playground/validator v10.
//
// A single validator instance is built on first use and shared. Field names in
// errors are the JSON names, so clients see "install_id" rather than
// "InstallID". Two tags are registered on top of the built-ins:
//
//   - installid: any UUID spelling google/uuid accepts (dashed, braced,
//     urn:uuid:, or 32 bare hex digits)
//   - isotime: an ISO-8601 date-time accepted by models.ParseClientTimestamp
//
// Failures convert to the VALIDATION_ERROR body via ToAPIError:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusUnprocessableEntity, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
