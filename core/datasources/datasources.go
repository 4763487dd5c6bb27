package datasources

// Datasource is an on-chain data source.
type Datasource interface {
	Name() string
}

var _ Datasource = (*EVMDatasource)(nil)
