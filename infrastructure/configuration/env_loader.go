package configuration

import (
	"errors"
	"io/fs"

	"clip-and-ship/infrastructure/logger"

	"github.com/subosito/gotenv"
)

// LoadEnvFromFile loads KEY=VALUE pairs from dotenv files such as config.env or .env.
// Variables already present in the environment are kept. Missing files are skipped.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		if err := gotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.GetLogger().WithField("file", p).Debug("Env file not found")
				continue
			}
			logger.GetLogger().WithField("file", p).WithField("error", err).Warn("Failed to load env file")
			continue
		}
		logger.GetLogger().WithField("file", p).Info("Loaded env file")
	}
}
