/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestOpensAfterMaxRetriesExceeded(t *testing.T) {
	b := New(Config{MaxRetries: 2, ResetTimeout: time.Hour})

	calls := 0
	err := b.Call(context.Background(), func(context.Context) error {
		calls++

		return errBoom
	})

	require.ErrorIs(t, err, errBoom)
	require.Equal(t, 3, calls) // initial + 2 retries
	require.Equal(t, Open, b.State())
}

func TestOpenShortCircuitsUntilResetTimeout(t *testing.T) {
	b := New(Config{MaxRetries: 0, ResetTimeout: 10 * time.Millisecond})

	fixedNow := time.Now()
	b.now = func() time.Time { return fixedNow }

	err := b.Call(context.Background(), func(context.Context) error { return errBoom })
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, Open, b.State())

	err = b.Call(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, errorx.ErrCircuitOpen)

	fixedNow = fixedNow.Add(20 * time.Millisecond)

	calls := 0
	err = b.Call(context.Background(), func(context.Context) error {
		calls++

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, Closed, b.State())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	b := New(Config{MaxRetries: 0, HalfOpenMaxFailures: 1, ResetTimeout: time.Millisecond})

	fixedNow := time.Now()
	b.now = func() time.Time { return fixedNow }

	_ = b.Call(context.Background(), func(context.Context) error { return errBoom })
	require.Equal(t, Open, b.State())

	fixedNow = fixedNow.Add(2 * time.Millisecond)

	err := b.Call(context.Background(), func(context.Context) error { return errBoom })
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, Open, b.State())
}

func TestHalfOpenSuccessCloses(t *testing.T) {
	b := New(Config{MaxRetries: 0, ResetTimeout: time.Millisecond})

	fixedNow := time.Now()
	b.now = func() time.Time { return fixedNow }

	_ = b.Call(context.Background(), func(context.Context) error { return errBoom })
	require.Equal(t, Open, b.State())

	fixedNow = fixedNow.Add(2 * time.Millisecond)

	err := b.Call(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)
	require.Equal(t, Closed, b.State())
}
