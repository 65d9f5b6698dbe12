package common

import (
	"context"
	"log/slog"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely, making
// disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// NopLogger creates a logger that silently discards all output. Components
// default to it so the addon produces no log output unless a host wires in a
// real sink via their WithLogger options.
//
// Returns:
//   - *slog.Logger: a logger whose handler drops every record
func NopLogger() *slog.Logger { return slog.New(nopHandler{}) }
