// Package logger re-exports the shared goLogger module so call sites keep the
// short linecheck/internal/logger import path.
package logger

import (
	pkglogger "github.com/Bparsons0904/goLogger"
)

type Logger = pkglogger.Logger

var New = pkglogger.New
