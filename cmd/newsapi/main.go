package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"newsboard/internal/newsapi"
	"newsboard/internal/storage"
	"newsboard/internal/storage/memdb"
	"newsboard/internal/storage/postgres"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	zl := zapLogger(os.Stdout)
	defer func() {
		_ = zl.Sync()
	}()

	st, err := openStorage(zl)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	var wg sync.WaitGroup
	wg.Add(1)

	srv := startRestServer(zl, st, &wg)
	cancelation(zl, srv)

	wg.Wait()
	return nil
}

// openStorage picks Postgres when DATABASE_URL is set, otherwise the
// in-memory store for local development.
func openStorage(logger *zap.Logger) (storage.Storage, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		return memdb.New(), nil
	}
	logger.Info("connecting to postgres")
	return postgres.New(dsn)
}

// cancelation watches for interrupt signals and shuts the server down
// gracefully when one arrives.
func cancelation(logger *zap.Logger, srv *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		sig := <-stop
		logger.Sugar().Warnf("got signal %q", sig)
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Sugar().Info(err)
		}
	}()
}

// startRestServer starts the news REST API server.
func startRestServer(logger *zap.Logger, st storage.Storage, wg *sync.WaitGroup) *http.Server {
	port := os.Getenv("NEWSAPI_PORT")
	if port == "" {
		port = "3000"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newsapi.New(st, logger),
		IdleTimeout:       3 * time.Minute,
		ReadHeaderTimeout: time.Minute,
	}

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error(err.Error())
		}
		logger.Warn("server is shut down")
		wg.Done()
	}()
	logger.Info("REST server started", zap.String("address", srv.Addr))
	return srv
}

var encoderCfg = zapcore.EncoderConfig{
	MessageKey: "msg",
	NameKey:    "name",

	LevelKey:    "level",
	EncodeLevel: zapcore.CapitalLevelEncoder,

	CallerKey:    "caller",
	EncodeCaller: zapcore.ShortCallerEncoder,

	TimeKey:    "time",
	EncodeTime: zapcore.RFC3339TimeEncoder,
}

func zapLogger(w io.Writer) *zap.Logger {
	zl := zap.New(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.Lock(zapcore.AddSync(w)),
			zapcore.DebugLevel,
		),
		zap.AddCaller(),
	)
	return zl
}
