// Package zap adapts a *zap.Logger to mercury.Logger.
package zap

import (
	"go.uber.org/zap"

	"github.com/fairspace/mercury"
)

var _ mercury.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

func (z ZapLogger) Debug(msg string, f mercury.Fields) { z.L.Debug(msg, fields(f)...) }
func (z ZapLogger) Info(msg string, f mercury.Fields)  { z.L.Info(msg, fields(f)...) }
func (z ZapLogger) Warn(msg string, f mercury.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z ZapLogger) Error(msg string, f mercury.Fields) { z.L.Error(msg, fields(f)...) }

func fields(f mercury.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
