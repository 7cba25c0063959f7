/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package connection exposes the admin connection-query and DID-rotation
// surface over HTTP, thin wrappers around pkg/controller/command/connection
// (spec.md §1, "HTTP transport layer... a thin adapter").
package connection

import (
	"encoding/json"
	"net/http"

	command "github.com/adorsys/didcomm-mediator/pkg/controller/command/connection"
	"github.com/gorilla/mux"
)

// Operation wires the connection admin command to HTTP routes.
type Operation struct {
	cmd *command.Command
}

// New builds an Operation over cmd.
func New(cmd *command.Command) *Operation {
	return &Operation{cmd: cmd}
}

// RegisterRoutes mounts the admin connection routes on r.
func (o *Operation) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/connections", o.queryConnections).Methods(http.MethodGet)
	r.HandleFunc("/connections/rotate", o.rotateDID).Methods(http.MethodPost)
}

func (o *Operation) queryConnections(w http.ResponseWriter, r *http.Request) {
	req := command.QueryConnectionRequest{ClientDID: r.URL.Query().Get("client_did")}

	resp, err := o.cmd.QueryConnections(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (o *Operation) rotateDID(w http.ResponseWriter, r *http.Request) {
	var req command.RotateDIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	resp, err := o.cmd.RotateDID(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}
