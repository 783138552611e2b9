package config

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sets the global logrus level and formatter.  Production
// logs are JSON; everything else gets the full-timestamp text formatter.
func ConfigureLogging(c Config) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	if c.Production() {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
