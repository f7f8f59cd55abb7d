package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ruteri/dapp-registry-backend/api"
	"github.com/ruteri/dapp-registry-backend/cmd/flags"
	"github.com/ruteri/dapp-registry-backend/events"
	"github.com/ruteri/dapp-registry-backend/httpserver"
	"github.com/ruteri/dapp-registry-backend/interfaces"
	"github.com/ruteri/dapp-registry-backend/metrics"
	"github.com/ruteri/dapp-registry-backend/registry"
	"github.com/ruteri/dapp-registry-backend/storage"
	"github.com/ruteri/dapp-registry-backend/verify"
)

// metricsSink counts emitted notifications by kind.
type metricsSink struct{}

func (metricsSink) Emit(event events.Event) {
	metrics.RecordEvent(string(event.Kind))
}

var serverFlags = append([]cli.Flag{
	flags.ListenAddrFlag,
	flags.MetricsAddrFlag,
	flags.AdministratorFlag,
	flags.RegistrationFeeFlag,
	flags.NatsURLFlag,
	flags.StorageURIFlag,
	flags.RestoreSnapshotFlag,
	flags.DNSResolverFlag,
	flags.PprofFlag,
	flags.DrainSecondsFlag,
}, flags.LoggingFlags...)

func main() {
	app := &cli.App{
		Name:   "registry-server",
		Usage:  "Serve the dapp registry API",
		Flags:  serverFlags,
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServer(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	// Every mutation lands in the in-memory log so it can be archived at
	// shutdown; metric counting and NATS publishing are layered on top.
	eventLog := events.NewLog()
	sinks := []events.Sink{eventLog, metricsSink{}}
	if natsURL := cCtx.String(flags.NatsURLFlag.Name); natsURL != "" {
		natsSink, err := events.NewNATSSink(natsURL, logger)
		if err != nil {
			logger.Error("Failed to connect to NATS", "err", err)
			return err
		}
		defer natsSink.Close()
		sinks = append(sinks, natsSink)
		logger.Info("Publishing notifications to NATS", "url", natsURL)
	}
	sink := events.Fanout(sinks...)

	var keeper *storage.SnapshotKeeper
	if uris := cCtx.StringSlice(flags.StorageURIFlag.Name); len(uris) > 0 {
		locations := make([]interfaces.StorageBackendLocation, len(uris))
		for i, uri := range uris {
			locations[i] = interfaces.StorageBackendLocation(uri)
		}

		factory := storage.NewStorageBackendFactory(logger)
		backend, err := factory.CreateMultiBackend(locations)
		if err != nil {
			logger.Error("Failed to create storage backend", "err", err)
			return err
		}
		keeper = storage.NewSnapshotKeeper(backend, logger)
	}

	reg, err := buildRegistry(cCtx, logger, keeper, sink)
	if err != nil {
		return err
	}

	var verifier *verify.DomainVerifier
	if cCtx.IsSet(flags.DNSResolverFlag.Name) || cCtx.String(flags.DNSResolverFlag.Name) != "" {
		verifier, err = verify.NewDomainVerifier(cCtx.String(flags.DNSResolverFlag.Name), logger)
		if err != nil {
			logger.Error("Failed to set up domain verifier", "err", err)
			return err
		}
	}

	handler := httpserver.NewHandler(logger, reg, verifier)
	server, err := httpserver.New(flags.ConfigureServer(cCtx, logger), handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	server.RunInBackground()
	logger.Info("Server is running", "administrator", reg.Administrator().String())

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()

	if keeper != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if id, err := keeper.Persist(ctx, reg); err != nil {
			logger.Error("Failed to persist shutdown snapshot", "err", err)
		} else {
			logger.Info("Shutdown snapshot persisted", "contentID", id.String())
		}
		if _, err := keeper.ArchiveEvents(ctx, eventLog); err != nil {
			logger.Error("Failed to archive events", "err", err)
		}
	}

	logger.Info("Server shutdown complete")
	return nil
}

// buildRegistry restores the registry from a snapshot when one is named,
// otherwise starts a fresh one with the configured administrator and fee.
func buildRegistry(cCtx *cli.Context, logger *slog.Logger, keeper *storage.SnapshotKeeper, sink events.Sink) (*registry.Registry, error) {
	if snapshotHex := cCtx.String(flags.RestoreSnapshotFlag.Name); snapshotHex != "" {
		if keeper == nil {
			return nil, errors.New("restore-snapshot requires at least one storage-uri")
		}

		contentID, err := interfaces.NewContentIDFromHex(snapshotHex)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		reg, err := keeper.Restore(ctx, contentID, sink)
		if err != nil {
			logger.Error("Failed to restore registry", "err", err)
			return nil, err
		}
		return reg, nil
	}

	adminHex := cCtx.String(flags.AdministratorFlag.Name)
	if adminHex == "" {
		return nil, errors.New("administrator is required unless restoring a snapshot")
	}
	admin, err := interfaces.NewIdentityFromHex(adminHex)
	if err != nil {
		return nil, err
	}

	var fee *big.Int
	if feeStr := cCtx.String(flags.RegistrationFeeFlag.Name); feeStr != "" {
		fee, err = api.ParseAmount(feeStr)
		if err != nil {
			return nil, err
		}
	}

	return registry.New(admin, fee, sink)
}
