// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package observability provides structured logging.
package observability

import (
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logger interface.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field represents a log field.
type Field struct {
	Key   string
	Value any
}

// logger adapts a logrus entry to Logger.
type logger struct {
	entry *logrus.Entry
}

// NewLoggerWithOutput creates a logger writing text records to w.
// Unknown levels fall back to info.
func NewLoggerWithOutput(level string, w io.Writer) Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	base.SetLevel(ParseLevel(level))

	return &logger{entry: logrus.NewEntry(base)}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.PanicLevel)
	return &logger{entry: logrus.NewEntry(base)}
}

// ParseLevel maps a config level name to a logrus level.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// ValidLevel reports whether level is one of the accepted names.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

func (l *logger) Debug(msg string, fields ...Field) {
	l.withFields(fields).Debug(msg)
}

func (l *logger) Info(msg string, fields ...Field) {
	l.withFields(fields).Info(msg)
}

func (l *logger) Warn(msg string, fields ...Field) {
	l.withFields(fields).Warn(msg)
}

func (l *logger) Error(msg string, fields ...Field) {
	l.withFields(fields).Error(msg)
}

func (l *logger) With(fields ...Field) Logger {
	return &logger{entry: l.withFields(fields)}
}

func (l *logger) withFields(fields []Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return l.entry.WithFields(data)
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Err creates an error field.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
