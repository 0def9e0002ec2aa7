// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/juju/errors"

	"github.com/juju/juju-dashboard/internal/dispatcher"
	"github.com/juju/juju-dashboard/rpc/params"
)

const contentTypeJSON = "application/json"

// sendStatusAndJSON sends an HTTP status code and a JSON-encoded
// response to a client.
func sendStatusAndJSON(w http.ResponseWriter, statusCode int, response interface{}) error {
	body, err := json.Marshal(response)
	if err != nil {
		return errors.Errorf("cannot marshal JSON result %#v: %v", response, err)
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		return errors.Annotate(err, "cannot write response")
	}
	return nil
}

// sendJSON sends a successful JSON response.
func sendJSON(w http.ResponseWriter, response interface{}) {
	if err := sendStatusAndJSON(w, http.StatusOK, response); err != nil {
		logger.Errorf("%v", err)
	}
}

// sendError sends a JSON-encoded error response, with the status code
// derived from the error.
func sendError(w http.ResponseWriter, err error) {
	logger.Debugf("returning error to user: %s", errors.Details(err))
	status, body := errorResponse(err)
	if err := sendStatusAndJSON(w, status, body); err != nil {
		logger.Errorf("%v", err)
	}
}

func errorResponse(err error) (int, params.Error) {
	body := params.Error{Message: err.Error()}
	switch {
	case errors.Is(err, errors.NotValid):
		body.Code = params.CodeNotValid
		return http.StatusBadRequest, body
	case errors.Is(err, errors.NotFound):
		body.Code = params.CodeNotFound
		return http.StatusNotFound, body
	case errors.Is(err, dispatcher.ErrStopped):
		return http.StatusServiceUnavailable, body
	}
	return http.StatusInternalServerError, body
}
