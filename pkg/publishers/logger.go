package publishers

import "github.com/samvad-hq/okbot/internal/logger"

// Logger is the structured logger publishers report delivery through.
type Logger = logger.Logger
