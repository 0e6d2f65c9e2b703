// Copyright 2018 The aquachain Authors
// This file is part of the aquachain library.
//
// The aquachain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The aquachain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the aquachain library. If not, see <http://www.gnu.org/licenses/>.

// Package log is a leveled key/value logger. Records flow through a
// swappable root handler, stderr in terminal format by default.
package log

import (
	"os"
	"runtime/debug"
	"time"

	"github.com/go-stack/stack"
	"gitlab.com/aquachain/ethashlight/common/sense"
)

var (
	StderrHandler         = newRootHandler()
	root          *logger = newRoot(StderrHandler)
)

// New returns a new logger with the given context.
// New is a convenient alias for Root().New
func New(ctx ...interface{}) LoggerI {
	logger := root.New(ctx...)
	if debuglog {
		root.Warn("New Logger Created", append([]any{"log_creator", stack.Caller(1)}, ctx...)...)
	}
	return logger
}

var debuglog = sense.EnvBool("DEBUGLOG")

// SetRootHandler swaps the handler of the root logger, which every logger
// created with New writes through.
func SetRootHandler(h Handler) {
	if root == nil {
		root = newRoot(h)
		return
	}
	root.SetHandler(h)
}

// Root returns the root logger
func Root() *logger {
	return root
}

// The following functions bypass the exported logger methods (logger.Debug,
// etc.) to keep the call depth the same for all paths to logger.write so
// runtime.Caller(2) always refers to the call site in client code.

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...interface{}) {
	Root().write(msg, LvlTrace, ctx)
}

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...interface{}) {
	Root().write(msg, LvlDebug, ctx)
}

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...interface{}) {
	Root().write(msg, LvlInfo, ctx)
}

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...interface{}) {
	Root().write(msg, LvlWarn, ctx)
}

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...interface{}) {
	Root().write(msg, LvlError, ctx)
}

// Crit is a convenient alias for Root().Crit, then exits
func Crit(msg string, ctx ...interface{}) {
	if root != nil {
		root.write(msg, LvlCrit, ctx)
	} else {
		println("fatal: ", msg)
	}
	if sense.EnvBool("DEBUG") {
		println("stack trace requsted (DEBUG=1)...")
		debug.PrintStack()
		time.Sleep(time.Second)
	}
	os.Exit(1)
}
