// Package logger configures the process-wide logrus defaults.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Init sets JSON output on stdout. The "dev" env logs at debug, every
// other env at info.
func Init(env string) {
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logrus.SetOutput(os.Stdout)

	if env == "dev" {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetLevel(logrus.InfoLevel)
}
