/*
Copyright 2022 Cortex Labs, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"go.uber.org/zap"
)

const (
	LogLevelEnvVar           = "TRAINER_LOG_LEVEL"
	DisableJSONLoggingEnvVar = "TRAINER_DISABLE_JSON_LOGGING"
)

var logger *zap.SugaredLogger
var loggerLock sync.Mutex

func initializeLogger() {
	logLevel := os.Getenv(LogLevelEnvVar)
	if logLevel == "" {
		logLevel = "info"
	}

	trainerLogLevel := userconfig.LogLevelFromString(logLevel)
	if trainerLogLevel == userconfig.UnknownLogLevel {
		panic(ErrorInvalidLogLevel(logLevel, userconfig.LogLevelTypes()))
	}

	zapConfig := DefaultZapConfig(trainerLogLevel)

	disableJSONLogging := strings.ToLower(os.Getenv(DisableJSONLoggingEnvVar))
	if disableJSONLogging == "true" {
		zapConfig.Encoding = "console"
	}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		panic(err)
	}

	logger = zapLogger.Sugar()
}

func GetLogger() *zap.SugaredLogger {
	loggerLock.Lock()
	defer loggerLock.Unlock()

	if logger == nil {
		initializeLogger()
	}
	return logger
}

// SetLogger replaces the process logger (used by tests and by the CLI's --log-level flag)
func SetLogger(l *zap.SugaredLogger) {
	loggerLock.Lock()
	defer loggerLock.Unlock()
	logger = l
}

func DefaultZapConfig(level userconfig.LogLevel, fields ...map[string]interface{}) zap.Config {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.MessageKey = "message"

	labels := map[string]interface{}{}
	for _, m := range fields {
		for k, v := range m {
			labels[k] = v
		}
	}

	initialFields := map[string]interface{}{}
	if len(labels) > 0 {
		initialFields["labels"] = labels
	}

	return zap.Config{
		Level:            zap.NewAtomicLevelAt(userconfig.ToZapLogLevel(level)),
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields:    initialFields,
	}
}
