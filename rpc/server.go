package rpc

import (
	"context"
	"net"
	"net/http"
	"time"

	"cosmossdk.io/log"
	ethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/kkrt-labs/kakarot-rpc-go/ethprovider"
	"github.com/kkrt-labs/kakarot-rpc-go/mempool"
	"github.com/kkrt-labs/kakarot-rpc-go/config"
)

const httpTimeout = 30 * time.Second

// Server mounts the JSON-RPC namespaces onto a single HTTP endpoint, with
// CORS left strict outside testing (this adapter has no broader API config
// section to carry a CORS allowlist).
type Server struct {
	addr             string
	maxConnections   int
	enableUnsafeCORS bool
	logger           log.Logger
	rpcServer        *ethrpc.Server
}

// NewServer registers every namespace API and returns the mountable server.
func NewServer(cfg *config.Config, provider *ethprovider.Provider, pool *mempool.Pool, logger log.Logger) (*Server, error) {
	rpcServer := ethrpc.NewServer()

	apis := map[string]any{
		"eth":     NewEthAPI(provider),
		"net":     NewNetAPI(provider),
		"web3":    NewWeb3API(),
		"debug":   NewDebugAPI(provider),
		"alchemy": NewAlchemyAPI(provider),
		"txpool":  NewTxPoolAPI(pool),
		"kakarot": NewKakarotAPI(cfg),
	}

	for namespace, service := range apis {
		if err := rpcServer.RegisterName(namespace, service); err != nil {
			return nil, err
		}
	}

	maxConnections := cfg.RPCMaxConnections
	if maxConnections <= 0 {
		maxConnections = 100
	}

	return &Server{
		addr:             cfg.KakarotRPCURL,
		maxConnections:   maxConnections,
		enableUnsafeCORS: cfg.Testing,
		logger:           logger.With("module", "rpc"),
		rpcServer:        rpcServer,
	}, nil
}

// Run binds the listener and serves until ctx is canceled, shutting down
// gracefully from an errgroup.Group goroutine.
func (s *Server) Run(ctx context.Context) error {
	r := mux.NewRouter()
	r.HandleFunc("/", s.rpcServer.ServeHTTP).Methods("POST")

	handlerWithCORS := cors.Default()
	if s.enableUnsafeCORS {
		handlerWithCORS = cors.AllowAll()
	}

	httpSrv := &http.Server{
		Addr:              s.addr,
		Handler:           handlerWithCORS.Handler(r),
		ReadHeaderTimeout: httpTimeout,
		ReadTimeout:       httpTimeout,
		WriteTimeout:      httpTimeout,
		IdleTimeout:       httpTimeout,
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	ln = netutil.LimitListener(ln, s.maxConnections)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting JSON-RPC server", "address", s.addr)
		errCh := make(chan error, 1)
		go func() { errCh <- httpSrv.Serve(ln) }()

		select {
		case <-gctx.Done():
			s.logger.Info("stopping JSON-RPC server", "address", s.addr)
			return httpSrv.Shutdown(context.Background())
		case err := <-errCh:
			if err == http.ErrServerClosed {
				return nil
			}
			return err
		}
	})

	return g.Wait()
}
