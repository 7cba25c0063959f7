/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"context"
	"fmt"

	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/didcomm/common/service"
	"github.com/adorsys/didcomm-mediator/pkg/didcomm/rotation"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
)

// Command exposes administrative connection operations: querying
// mediated connections and applying an already-issued from_prior
// rotation token out of band from the regular envelope pipeline.
type Command struct {
	repo     repository.Repository
	resolver did.Resolver
}

// New builds a Command.
func New(repo repository.Repository, resolver did.Resolver) *Command {
	return &Command{repo: repo, resolver: resolver}
}

// QueryConnections returns the mediated connection for req.ClientDID, or
// an empty result set if none exists.
func (c *Command) QueryConnections(ctx context.Context, req QueryConnectionRequest) (*QueryConnectionResponse, error) {
	if req.ClientDID == "" {
		return nil, fmt.Errorf("%w: client_did is required", errorx.ErrMalformedRequest)
	}

	conn, err := c.repo.Connections().FindByClientDID(ctx, req.ClientDID)
	if err != nil {
		if err == repository.ErrNotFound {
			return &QueryConnectionResponse{}, nil
		}

		return nil, fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	return &QueryConnectionResponse{Results: []*service.ConnectionRecord{service.FromRepository(conn)}}, nil
}

// RotateDID verifies req.FromPrior and applies its rotation side effects
// to the connection it names (spec.md §4.3).
func (c *Command) RotateDID(ctx context.Context, req RotateDIDRequest) (*RotateDIDResponse, error) {
	oldDID, newDID, err := rotation.Verify(c.resolver, req.FromPrior)
	if err != nil {
		return nil, err
	}

	if err := rotation.ApplyRotation(ctx, c.repo.Connections(), oldDID, newDID); err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	return &RotateDIDResponse{OldDID: oldDID, NewDID: newDID}, nil
}
