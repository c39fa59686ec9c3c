// Command yhttpd is the static-file-serving demo executable built on
// top of the yhttp library. It drops privileges into the directory it
// serves, then hands control to the library's dispatch loop.
package main

import (
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yourusername/yhttp"
	"github.com/yourusername/yhttp/pkg/yhttp/dispatch"
)

func newLogger() *zap.Logger {
	rotator := &lumberjack.Logger{
		Filename:   "yhttpd.log",
		MaxSize:    50, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.NewMultiWriteSyncer(zapcore.AddSync(rotator), zapcore.AddSync(os.Stderr)),
		zap.InfoLevel,
	)
	return zap.New(core)
}

func main() {
	var port int

	cmd := &cobra.Command{
		Use:   "yhttpd DIRECTORY",
		Short: "Static-file HTTP/1.1 origin server built on the yhttp engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(port, args[0])
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on (>= 1024)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(port int, dir string) error {
	logger := newLogger()
	defer logger.Sync()

	absDir, err := filepath.Abs(dir)
	if err != nil {
		logger.Error("resolve directory failed", zap.Error(err))
		return err
	}

	if err := sandbox(absDir, logger); err != nil {
		logger.Error("sandbox setup failed", zap.Error(err))
		return err
	}

	metrics := dispatch.NewMetrics()
	cfg := dispatch.DefaultConfig()
	cfg.Logger = logger
	cfg.Metrics = metrics

	instance, err := yhttp.Init(port, cfg)
	if err != nil {
		logger.Error("init failed", zap.Int("port", port), zap.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		if err := instance.Stop(); err != nil {
			logger.Warn("stop failed", zap.Error(err))
		}
	}()

	handler := fileHandler(absDir, logger)
	logger.Info("listening", zap.Int("port", port), zap.String("root", absDir))
	return instance.Dispatch(handler)
}

// fileHandler returns a yhttp.Handler that serves files rooted at root.
// It is the only HTTP-serving logic in the demo executable; the engine
// itself knows nothing about filesystems.
func fileHandler(root string, logger *zap.Logger) yhttp.Handler {
	return func(req *yhttp.Request) {
		clean := filepath.Clean("/" + req.Path)
		full := filepath.Join(root, clean)
		if !strings.HasPrefix(full, root) {
			_ = yhttp.RespStatus(req, 403)
			_ = yhttp.RespBody(req, []byte("Forbidden"))
			return
		}

		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			_ = yhttp.RespStatus(req, 404)
			_ = yhttp.RespBody(req, []byte("Not Found"))
			return
		}

		data, err := os.ReadFile(full)
		if err != nil {
			logger.Warn("read failed", zap.String("path", full), zap.Error(err))
			_ = yhttp.RespStatus(req, 500)
			_ = yhttp.RespBody(req, []byte("Internal Server Error"))
			return
		}

		ct := mime.TypeByExtension(filepath.Ext(full))
		if ct != "" {
			_ = yhttp.RespHeader(req, "Content-Type", ct)
		}
		_ = yhttp.RespStatus(req, 200)
		_ = yhttp.RespBody(req, data)
	}
}
