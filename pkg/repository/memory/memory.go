/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package memory implements pkg/repository.Repository over plain maps,
// guarded by a mutex. It exists for tests and for a single-process
// deployment; it is not the durable backing store the production
// repository driver would provide (out of scope, spec.md §1).
package memory

import (
	"context"
	"sync"

	"github.com/adorsys/didcomm-mediator/pkg/repository"
)

// Repository is an in-memory repository.Repository.
type Repository struct {
	conns *connectionStore
	secs  *secretStore
	msgs  *messageStore
}

// New builds an empty in-memory repository.
func New() *Repository {
	return &Repository{
		conns: &connectionStore{byID: map[string]*repository.Connection{}},
		secs:  &secretStore{byKid: map[string]*repository.Secret{}},
		msgs:  &messageStore{byID: map[string]*repository.QueuedMessage{}},
	}
}

func (r *Repository) Connections() repository.Connections { return r.conns }
func (r *Repository) Secrets() repository.Secrets         { return r.secs }
func (r *Repository) Messages() repository.Messages       { return r.msgs }

type connectionStore struct {
	mu   sync.Mutex
	byID map[string]*repository.Connection
}

func (s *connectionStore) FindByClientDID(_ context.Context, clientDID string) (*repository.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.byID {
		if c.ClientDID == clientDID {
			cp := *c
			cp.Keylist = append([]string(nil), c.Keylist...)

			return &cp, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (s *connectionStore) FindByKeylistMember(_ context.Context, recipientDID string) (*repository.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.byID {
		for _, k := range c.Keylist {
			if k == recipientDID {
				cp := *c
				cp.Keylist = append([]string(nil), c.Keylist...)

				return &cp, nil
			}
		}
	}

	return nil, repository.ErrNotFound
}

func (s *connectionStore) Insert(_ context.Context, conn *repository.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *conn
	cp.Keylist = append([]string(nil), conn.Keylist...)
	s.byID[conn.ID] = &cp

	return nil
}

func (s *connectionStore) Update(_ context.Context, conn *repository.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[conn.ID]; !ok {
		return repository.ErrNotFound
	}

	cp := *conn
	cp.Keylist = append([]string(nil), conn.Keylist...)
	s.byID[conn.ID] = &cp

	return nil
}

func (s *connectionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, id)

	return nil
}

type secretStore struct {
	mu   sync.Mutex
	byKid map[string]*repository.Secret
}

func (s *secretStore) GetSecret(_ context.Context, kid string) (*repository.Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec, ok := s.byKid[kid]
	if !ok {
		return nil, repository.ErrNotFound
	}

	cp := *sec

	return &cp, nil
}

func (s *secretStore) FindSecrets(_ context.Context, kids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make([]string, 0, len(kids))

	for _, kid := range kids {
		if _, ok := s.byKid[kid]; ok {
			found = append(found, kid)
		}
	}

	return found, nil
}

func (s *secretStore) PutSecret(_ context.Context, secret *repository.Secret) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *secret
	s.byKid[secret.Kid] = &cp

	return nil
}

type messageStore struct {
	mu    sync.Mutex
	byID  map[string]*repository.QueuedMessage
	order []string
}

func (s *messageStore) Enqueue(_ context.Context, msg *repository.QueuedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *msg
	s.byID[msg.ID] = &cp
	s.order = append(s.order, msg.ID)

	return nil
}

func (s *messageStore) inScope(msg *repository.QueuedMessage, recipients []string) bool {
	for _, r := range recipients {
		if msg.RecipientDID == r {
			return true
		}
	}

	return false
}

func (s *messageStore) CountForRecipients(_ context.Context, recipients []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0

	for _, id := range s.order {
		if s.inScope(s.byID[id], recipients) {
			count++
		}
	}

	return count, nil
}

func (s *messageStore) ListForRecipients(_ context.Context, recipients []string, limit int) ([]*repository.QueuedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*repository.QueuedMessage, 0)

	for _, id := range s.order {
		msg := s.byID[id]
		if !s.inScope(msg, recipients) {
			continue
		}

		cp := *msg
		out = append(out, &cp)

		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return out, nil
}

func (s *messageStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return nil
	}

	delete(s.byID, id)

	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}
