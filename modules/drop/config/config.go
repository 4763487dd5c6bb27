package config

import "github.com/gaze-network/drop-offerer/internal/postgres"

type Config struct {
	// Name is the collection name served by metadata and used as the EIP-712 domain name.
	Name string `mapstructure:"name"`
	// DomainVersion is the EIP-712 domain version. Default is "1".
	DomainVersion string `mapstructure:"domain_version"`

	Self       string `mapstructure:"self"`       // address of the drop
	Owner      string `mapstructure:"owner"`      // initial owner, applied only when no owner is stored
	Settlement string `mapstructure:"settlement"` // the only caller allowed to generate orders
	ChainID    uint64 `mapstructure:"chain_id"`   // if zero, read from the EVM node
	MaxSupply  uint64 `mapstructure:"max_supply"`

	EnableGatedSubstandards bool `mapstructure:"enable_gated_substandards"`

	Database string          `mapstructure:"database"` // memory | postgres
	Postgres postgres.Config `mapstructure:"postgres"`

	EVM EVM `mapstructure:"evm"`
}

type EVM struct {
	RPCURL             string `mapstructure:"rpc_url"`
	DelegationRegistry string `mapstructure:"delegation_registry"` // delegate.cash v1 registry
}
