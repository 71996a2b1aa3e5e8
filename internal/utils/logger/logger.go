package logger

import (
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"time"

	"beautyfood-backend/internal/utils"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/sirupsen/logrus"
	"gopkg.in/go-extras/elogrus.v7"
)

const appName = "beautyfood-backend"

// New builds the process logger: stdout plus a daily file under LOG_DIR, with
// optional elasticsearch and logstash hooks.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(utils.GetConfigDefault("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	out := io.Writer(os.Stdout)
	if file, err := openDailyFile(utils.GetConfigDefault("LOG_DIR", "./logs"), time.Now()); err != nil {
		fmt.Println(err.Error())
	} else {
		out = io.MultiWriter(os.Stdout, file)
	}
	logger.SetOutput(out)

	if url := utils.GetConfig("LOG_ELK_URL"); url != "" {
		client, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: []string{url},
		})
		if err != nil {
			logger.Debug(err.Error())
		} else {
			index := utils.GetConfigDefault("LOG_ELK_INDEX", appName)
			hook, err := elogrus.NewAsyncElasticHook(client, appName, level, index)
			if err != nil {
				logger.Debug(err.Error())
			} else {
				logger.AddHook(hook)
			}
		}
	}

	if url := utils.GetConfig("LOG_LOGSTASH_URL"); url != "" {
		conn, err := net.Dial("udp", url)
		if err != nil {
			logger.Debug(err)
		} else {
			hook := logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": appName}))
			logger.AddHook(hook)
		}
	}

	return logger
}

func openDailyFile(dir string, now time.Time) (*os.File, error) {
	logDir := path.Join(dir, now.Format("2006-01-02"))
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return os.OpenFile(path.Join(logDir, appName+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// Discard returns a logger that drops everything. Used by tests and tools.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
