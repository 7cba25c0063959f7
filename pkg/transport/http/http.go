/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package http is the thin transport adapter spec.md §1 scopes the HTTP
// layer down to: it reads the envelope off the wire, hands it to the
// core dispatcher, and writes back whatever the dispatcher returns. It
// carries no protocol logic of its own.
package http

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/adorsys/didcomm-mediator/internal/log"
	connection "github.com/adorsys/didcomm-mediator/pkg/controller/rest/connection"
	"github.com/adorsys/didcomm-mediator/pkg/didcomm/packer"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

var logger = log.New("transport/http")

// Server wires the DIDComm envelope endpoint and the admin connection
// surface onto one mux.Router.
type Server struct {
	router *mux.Router
}

// New builds a Server. dispatch receives each raw request body and
// unpacks and handles it; conn, if
// non-nil, mounts the admin connection routes alongside the envelope
// endpoint.
func New(dispatch EnvelopeHandler, conn *connection.Operation) *Server {
	s := &Server{router: mux.NewRouter()}

	s.router.HandleFunc("/didcomm", envelopeHandlerFunc(dispatch)).Methods(http.MethodPost)

	if conn != nil {
		conn.RegisterRoutes(s.router)
	}

	s.router.Use(func(next http.Handler) http.Handler {
		return handlers.LoggingHandler(os.Stdout, next)
	})

	return s
}

// Router exposes the configured http.Handler for use with http.Server.
func (s *Server) Router() http.Handler {
	return s.router
}

// EnvelopeHandler is the core dispatcher's envelope entry point, kept as
// a narrow function type so this package does not need to import
// pkg/didcomm/dispatcher/inbound and its full provider dependency graph.
type EnvelopeHandler func(ctx context.Context, contentTypeHeader string, raw []byte) ([]byte, error)

func envelopeHandlerFunc(dispatch EnvelopeHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			err = errors.Wrap(err, "reading request body")
			logger.Warnf("%+v", err)
			http.Error(w, "failed to read request body", http.StatusBadRequest)

			return
		}

		reply, err := dispatch(r.Context(), r.Header.Get("Content-Type"), raw)
		if err != nil {
			err = errors.Wrap(err, "handling inbound envelope")
			logger.Warnf("%+v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		if reply == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		w.Header().Set("Content-Type", packer.ContentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(reply)
	}
}
