package log

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base atomic.Pointer[zap.Logger]

func init() {
	base.Store(New(os.Stdout, "info"))
}

// New builds a JSON logger writing to w.
func New(w io.Writer, level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "action"
	enc.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core)
}

// Set replaces the process-wide logger and returns the previous one.
func Set(l *zap.Logger) *zap.Logger {
	return base.Swap(l)
}

func L() *zap.Logger { return base.Load() }

func fieldsFor(c *fiber.Ctx, err error, extra map[string]any) []zap.Field {
	out := make([]zap.Field, 0, 8)
	if c != nil {
		out = append(out,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			out = append(out, zap.String("req_id", rid))
		}
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	if len(extra) > 0 {
		out = append(out, zap.Any("fields", extra))
	}
	return out
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	L().Info(action, fieldsFor(c, nil, fields)...)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	L().Info(action, append(fieldsFor(c, nil, fields), zap.Bool("audit", true))...)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	L().Warn(action, fieldsFor(c, nil, fields)...)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	L().Error(action, fieldsFor(c, err, fields)...)
}
