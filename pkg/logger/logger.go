package logger

import (
	"log/slog"
	"os"
)

// Log is usable before Init; Init swaps in the configured handler.
var Log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init sets up the process-wide structured logger. JSON output so log
// aggregators can parse it.
func Init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}
