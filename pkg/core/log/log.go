// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package log is a thin layer over log/slog which the use cases and
// adapters use for their structured logs. The Debug, Info, Warn, and
// Error functions take statically typed slog.Attr arguments (such as
// the Party and LinearID attributes of this package) and report the
// caller of these functions as the log source.
package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Setup replaces the default slog logger with one which writes to w
// at the given minimum level. Records are encoded as JSON objects if
// json is true and as key=value texts otherwise.
func Setup(w io.Writer, level slog.Level, json bool) {
	opts := &slog.HandlerOptions{AddSource: true, Level: level}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelDebug, msg, attrs)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelInfo, msg, attrs)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelWarn, msg, attrs)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelError, msg, attrs)
}

// logAttrs must be called directly by the exported functions above,
// so the source of records is the caller of those functions.
func logAttrs(
	ctx context.Context, level slog.Level, msg string, attrs []slog.Attr,
) {
	h := slog.Default().Handler()
	if !h.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // runtime.Callers, logAttrs, Info/...
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = h.Handle(ctx, r)
}
