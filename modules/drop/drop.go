package drop

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/core/datasources"
	"github.com/gaze-network/drop-offerer/internal/config"
	"github.com/gaze-network/drop-offerer/internal/postgres"
	"github.com/gaze-network/drop-offerer/modules/drop/api/httphandler"
	dropconfig "github.com/gaze-network/drop-offerer/modules/drop/config"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/repository/memory"
	droppostgres "github.com/gaze-network/drop-offerer/modules/drop/repository/postgres"
	"github.com/gaze-network/drop-offerer/pkg/logger"
	"github.com/gaze-network/drop-offerer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
)

// Module is a running drop: the engine plus the resources it owns.
type Module struct {
	*Engine
	cleanupFuncs []func(context.Context) error
}

// Shutdown releases the module resources. It is called by the injector on shutdown.
func (m *Module) Shutdown(ctx context.Context) error {
	var errList []error
	for _, cleanup := range m.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.WithStack(errors.Join(errList...))
}

func parseAddress(field, s string, required bool) (common.Address, error) {
	if s == "" {
		if required {
			return common.Address{}, errors.Wrapf(errs.InvalidArgument, "%s is required", field)
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(errs.InvalidArgument, "%s %q is not a valid address", field, s)
	}
	return common.HexToAddress(s), nil
}

func New(injector do.Injector) (*Module, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector).Modules.Drop
	ctx = logger.WithContext(ctx, slogx.String("module", "drop"))

	self, err := parseAddress("self", conf.Self, true)
	if err != nil {
		return nil, errors.Wrap(err, "invalid drop configuration")
	}
	settlement, err := parseAddress("settlement", conf.Settlement, true)
	if err != nil {
		return nil, errors.Wrap(err, "invalid drop configuration")
	}
	owner, err := parseAddress("owner", conf.Owner, false)
	if err != nil {
		return nil, errors.Wrap(err, "invalid drop configuration")
	}

	module := &Module{}
	deps, err := newDependencies(ctx, conf, module)
	if err != nil {
		_ = module.Shutdown(ctx)
		return nil, errors.WithStack(err)
	}

	module.Engine = NewEngine(Params{
		Name:                    conf.Name,
		DomainVersion:           conf.DomainVersion,
		Self:                    self,
		Settlement:              settlement,
		EnableGatedSubstandards: conf.EnableGatedSubstandards,
	}, deps)
	if owner != (common.Address{}) {
		if err := module.InitOwner(ctx, owner); err != nil {
			_ = module.Shutdown(ctx)
			return nil, errors.Wrap(err, "can't initialize owner")
		}
	}

	// Mount API
	httpServer := do.MustInvoke[*fiber.App](injector)
	handler := httphandler.New(module.Engine, func() int64 { return time.Now().Unix() })
	if err := handler.Mount(httpServer); err != nil {
		_ = module.Shutdown(ctx)
		return nil, errors.Wrap(err, "can't mount drop API")
	}
	logger.InfoContext(ctx, "Mounted drop HTTP handler")

	logger.InfoContext(ctx, "Drop module started",
		slogx.Address("self", self),
		slogx.Address("settlement", settlement),
		slogx.Bool("gatedSubstandards", conf.EnableGatedSubstandards),
	)
	return module, nil
}

func newDependencies(ctx context.Context, conf dropconfig.Config, module *Module) (Dependencies, error) {
	var deps Dependencies
	switch strings.ToLower(conf.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, conf.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return deps, errors.Wrap(err, "Invalid Postgres configuration for drop")
			}
			return deps, errors.Wrap(err, "can't create Postgres connection pool")
		}
		module.cleanupFuncs = append(module.cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		deps.Store = droppostgres.NewRepository(pg)
		deps.Ledger = droppostgres.NewTokenLedger(pg, conf.MaxSupply)
	case "memory", "":
		logger.WarnContext(ctx, "Drop state is kept in memory and will be lost on shutdown")
		repo := memory.NewRepository()
		deps.Store = repo
		deps.Ledger = memory.NewTokenLedger(repo, conf.MaxSupply)
	default:
		return deps, errors.Wrapf(errs.Unsupported, "%q database for drop is not supported", conf.Database)
	}

	if conf.EVM.RPCURL == "" {
		if conf.ChainID == 0 {
			return deps, errors.Wrap(errs.InvalidArgument, "chain_id is required without an EVM RPC URL")
		}
		logger.WarnContext(ctx, "No EVM RPC URL configured, token-gated ownership and delegations are empty")
		deps.Gating = memory.NewGatingLedger()
		deps.Delegation = memory.NewDelegationRegistry()
		deps.Chain = memory.StaticChain(conf.ChainID)
		return deps, nil
	}

	registry, err := parseAddress("evm.delegation_registry", conf.EVM.DelegationRegistry, false)
	if err != nil {
		return deps, errors.WithStack(err)
	}
	client, err := ethclient.DialContext(ctx, conf.EVM.RPCURL)
	if err != nil {
		return deps, errors.Wrap(err, "can't connect to EVM node")
	}
	module.cleanupFuncs = append(module.cleanupFuncs, func(context.Context) error {
		client.Close()
		return nil
	})
	evm := datasources.NewEVMDatasource(client, registry)

	start := time.Now()
	chainID, err := evm.ChainID(ctx)
	if err != nil {
		return deps, errors.Wrap(err, "can't get chain id from EVM node")
	}
	if conf.ChainID != 0 && conf.ChainID != chainID {
		return deps, errors.Wrapf(errs.InvalidArgument, "configured chain id %d does not match EVM node chain id %d", conf.ChainID, chainID)
	}
	logger.InfoContext(ctx, "Connected to EVM node", slogx.Uint64("chainId", chainID), slogx.Duration("latency", time.Since(start)))

	deps.Gating = evm
	deps.Delegation = evm
	deps.Chain = evm
	return deps, nil
}

var (
	_ datagateway.GatingLedger       = (*datasources.EVMDatasource)(nil)
	_ datagateway.DelegationRegistry = (*datasources.EVMDatasource)(nil)
	_ datagateway.ChainReader        = (*datasources.EVMDatasource)(nil)
)
