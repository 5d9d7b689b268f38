package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	fakereportrepo "github.com/jrsteele09/hrdash/dashboard/repofake"
	"github.com/jrsteele09/hrdash/internal/config"
	"github.com/jrsteele09/hrdash/internal/logging"
	"github.com/jrsteele09/hrdash/server"
	"github.com/jrsteele09/hrdash/token"
	fakeuserrepo "github.com/jrsteele09/hrdash/users/repofake"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const revocationPruneInterval = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetLogLevel(), c.GetEnv() == "DEV", os.Stderr)
	displayAppname(c.GetAppName() + " stub")

	repos := server.Repos{
		Accounts: fakeuserrepo.NewFakeAccountRepo(),
		Reports:  fakereportrepo.NewFakeReportRepo(),
		Revoked:  token.NewRevocationList(),
	}
	handler, err := server.New(c, repos)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	pruneCtx, stopPruning := context.WithCancel(context.Background())
	defer stopPruning()
	go handler.PruneRevocations(pruneCtx, revocationPruneInterval)

	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "server.ListenAndServe")
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
