/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package log wraps zap with the call shape the teacher's
// pkg/common/log package uses throughout the dispatcher
// (logger.Debugf/Infof/Warnf/Errorf, one named logger per package).
package log

import (
	"go.uber.org/zap"
)

// Log is a named structured logger.
type Log struct {
	name string
	sug  *zap.SugaredLogger
}

var base = mustBuild()

func mustBuild() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"

	l, err := cfg.Build()
	if err != nil {
		// fall back to a no-op logger rather than panicking at import time
		return zap.NewNop()
	}

	return l
}

// New returns a logger named for the calling package, e.g. log.New("didcomm/packer").
func New(name string) *Log {
	return &Log{name: name, sug: base.Sugar().Named(name)}
}

func (l *Log) Debugf(template string, args ...interface{}) { l.sug.Debugf(template, args...) }
func (l *Log) Infof(template string, args ...interface{})  { l.sug.Infof(template, args...) }
func (l *Log) Warnf(template string, args ...interface{})  { l.sug.Warnf(template, args...) }
func (l *Log) Errorf(template string, args ...interface{}) { l.sug.Errorf(template, args...) }

// Sync flushes any buffered log entries; call on shutdown.
func Sync() error {
	return base.Sync()
}
