// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package debugapi

import (
	"net/http"

	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/core/statejson"
)

const errorTypeTornDown = "Glue.TornDown"

// StateProvider snapshots a glue instance.
type StateProvider interface {
	Describe() (statejson.GlueDescription, bool)
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorType    string `json:"errorType"`
}

type pingHandler struct{}

func (h *pingHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if _, err := writer.Write([]byte("pong")); err != nil {
		log.WithError(err).Warn("Failed to write 'pong' response")
	}
}

type stateHandler struct {
	provider StateProvider
}

func (h *stateHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	desc, ok := h.provider.Describe()
	if !ok {
		render.Status(request, http.StatusNotFound)
		render.JSON(writer, request, &ErrorResponse{
			ErrorType:    errorTypeTornDown,
			ErrorMessage: "glue already torn down",
		})
		return
	}
	render.JSON(writer, request, &desc)
}
