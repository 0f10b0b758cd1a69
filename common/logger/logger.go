package logger

import (
	"fmt"
	"strings"
	"sync"

	glog "github.com/Laisky/go-utils/v5/log"

	"github.com/songquanpeng/ai-probe/common/config"
)

var (
	Logger      glog.Logger
	initLogOnce sync.Once
)

// init initializes the logger automatically when the package is imported
func init() {
	initLogger()
}

// initLogger initializes the go-utils logger
func initLogger() {
	initLogOnce.Do(func() {
		var err error
		level := glog.LevelInfo
		if config.DebugEnabled {
			level = glog.LevelDebug
		}

		Logger, err = glog.NewConsoleWithName("ai-probe", level)
		if err != nil {
			panic(fmt.Sprintf("failed to create logger: %+v", err))
		}
	})
}

// MaskSecret renders a secret safe for logs: first four characters plus length.
// Credentials must never appear in full in any log line.
func MaskSecret(secret string) string {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return "<empty>"
	}
	if len(trimmed) <= 8 {
		return fmt.Sprintf("****(%d)", len(trimmed))
	}
	return fmt.Sprintf("%s****(%d)", trimmed[:4], len(trimmed))
}
