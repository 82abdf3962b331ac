package logging

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLogDir каталог логов до загрузки конфигурации.
const DefaultLogDir = "logs"

var log = logrus.New()

var (
	logDirInUse string
	logFile     *os.File
)

type CustomFormatter struct{}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	level := entry.Level.String()

	module, ok := entry.Data["module"].(string)
	var logMessage string
	if ok && module != "" {
		logMessage = fmt.Sprintf("%s (%s) [%s]: %s\n", timestamp, level, module, entry.Message)
	} else {
		logMessage = fmt.Sprintf("%s (%s) [Система]: %s\n", timestamp, level, entry.Message)
	}

	return []byte(logMessage), nil
}

func SetupLogger(logDir string, level string) *logrus.Logger {
	log.SetFormatter(&CustomFormatter{})

	// Создаем директорию для логов, если она не существует
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		err = os.MkdirAll(logDir, 0755)
		if err != nil {
			log.Fatalf("Невозможно создать директорию для логов: %v", err)
		}
	}

	// Устанавливаем файл для логов на каждый день
	fileName := filepath.Join(logDir, fmt.Sprintf("log-%s.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Ошибка при открытии файла логов: %v", err)
	}

	log.SetOutput(io.MultiWriter(file, os.Stdout))
	SetLevel(level)

	if logFile != nil {
		logFile.Close()
	}
	logFile = file
	logDirInUse = logDir

	return log
}

// Reconfigure применяет настройки из конфигурации к уже запущенному логгеру:
// файл переоткрывается только если сменился каталог.
func Reconfigure(logDir, level string) {
	if logDir != "" && logDir != logDirInUse {
		SetupLogger(logDir, level)
		return
	}
	SetLevel(level)
}

// SetLevel понимает debug, info, warn и error; все остальное трактуется как info.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
}

func Log(module string, level logrus.Level, message string) {
	entry := log.WithFields(logrus.Fields{
		"module": module,
	})

	switch level {
	case logrus.DebugLevel:
		entry.Debug(message)
	case logrus.InfoLevel:
		entry.Info(message)
	case logrus.WarnLevel:
		entry.Warn(message)
	case logrus.ErrorLevel:
		entry.Error(message)
	case logrus.FatalLevel:
		entry.Fatal(message)
	case logrus.PanicLevel:
		entry.Panic(message)
	default:
		entry.Info(message)
	}
}

// Writer отдает логгер модуля для библиотек, которым нужен Printf (gorm).
func Writer(module string) *logrus.Entry {
	return log.WithField("module", module)
}
