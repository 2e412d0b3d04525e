// Command kakarot-rpc boots the JSON-RPC adapter: it loads configuration
// from the environment, dials Mongo and the L2 RPC endpoint, wires the
// provider/pool/tracing layers together, starts the pending-transaction
// retry loop, and serves the JSON-RPC surface until terminated.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cosmossdk.io/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kkrt-labs/kakarot-rpc-go/config"
	"github.com/kkrt-labs/kakarot-rpc-go/ethprovider"
	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
	"github.com/kkrt-labs/kakarot-rpc-go/l2client"
	"github.com/kkrt-labs/kakarot-rpc-go/mempool"
	"github.com/kkrt-labs/kakarot-rpc-go/rpc"
)

func main() {
	logger := log.NewLogger(os.Stdout)

	if err := run(logger); err != nil {
		logger.Error("kakarot-rpc exited", "error", err)
		os.Exit(1)
	}
}

func run(logger log.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("failed to disconnect mongo client", "error", err)
		}
	}()

	store := indexstore.NewEthereumStore(indexstore.New(mongoClient.Database(cfg.MongoDatabase), logger))

	l2, err := l2client.Dial(ctx, cfg.StarknetNetwork, logger)
	if err != nil {
		return err
	}
	defer l2.Close()

	kernel := l2client.NewKernelReader(l2, cfg.KakarotAddress)
	account := l2client.NewAccountReader(l2)
	token := l2client.NewTokenReader(l2, l2client.NativeTokenAddress)

	provider := ethprovider.New(store, kernel, account, token, cfg, logger)
	provider.TestingMode = cfg.Testing

	chainID, err := provider.ChainID(ctx)
	if err != nil {
		return err
	}
	pool := mempool.NewPool(store, chainID)

	go provider.RunRetryLoop(ctx)

	server, err := rpc.NewServer(cfg, provider, pool, logger)
	if err != nil {
		return err
	}

	return server.Run(ctx)
}
