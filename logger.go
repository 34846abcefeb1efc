package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jonnenauha/obj-decimate/internal/logger"
)

func initLogging(level, logFile string) error {
	console := logger.Stdout
	switch {
	case StartParams.Quiet:
		console = logger.Quiet
	case StartParams.Stdout:
		// stdout carries the mesh
		console = logger.Stderr
	}
	return logger.Init(level, logFile, console)
}

func logTitle(format string, args ...interface{}) {
	logInfo(format, args...)

	title := strings.Repeat("-", len(fmt.Sprintf(format, args...)))
	if len(title) > 0 {
		logInfo(title)
	}
}

func logResultsIntPostfix(label string, value int, postfix string) {
	if value > 0 {
		logInfo(fmt.Sprintf("%-15s %15s    %s", label, formatInt(value), postfix))
	}
}

func logResults(label, value string) {
	logInfo(fmt.Sprintf("%-15s %15s", label, value))
}

func logResultsPostfix(label, value, postfix string) {
	logInfo(fmt.Sprintf("%-15s %15s    %s", label, value, postfix))
}

func logDebug(format string, args ...interface{}) {
	logger.Sugar.Debugf(format, args...)
}

func logInfo(format string, args ...interface{}) {
	logger.Sugar.Infof(format, args...)
}

func logWarn(format string, args ...interface{}) {
	logger.Sugar.Warnf(format, args...)
}

func logError(format string, args ...interface{}) {
	logger.Sugar.Errorf(format, args...)
}

func logFatal(format string, args ...interface{}) {
	logger.Sugar.Errorf(format, args...)
	logger.Sync()
	// the logger may be quiet or not set up yet
	if StartParams.Quiet || logger.Log == nil {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
	os.Exit(1)
}

func logFatalError(err error) {
	if err != nil {
		logFatal("%s", err.Error())
	}
}
