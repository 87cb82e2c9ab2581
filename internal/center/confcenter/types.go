package confcenter

// Authentication is the global credential record persisted for every
// process bootstrapping off the same config store.
type Authentication struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DataSourceConfig describes one named data source inside a schema.
// Props carries driver-specific settings verbatim.
type DataSourceConfig struct {
	URL      string            `yaml:"url"`
	Username string            `yaml:"username,omitempty"`
	Password string            `yaml:"password,omitempty"`
	Props    map[string]string `yaml:"props,omitempty"`
}

// RuleConfig is one sharding/routing rule document. The facade treats
// rules as opaque; consumers give them meaning.
type RuleConfig map[string]any

// ClusterConfig is the cluster heartbeat configuration persisted for
// health detection.
type ClusterConfig struct {
	SQL          string `yaml:"sql"`
	Interval     int    `yaml:"interval"`
	RetryEnable  bool   `yaml:"retryEnable"`
	RetryMaximum int    `yaml:"retryMaximum"`
	ThreadCount  int    `yaml:"threadCount"`
}

// MetricsConfig is the metrics collector configuration.
type MetricsConfig struct {
	Name        string            `yaml:"name"`
	Host        string            `yaml:"host,omitempty"`
	Port        int               `yaml:"port,omitempty"`
	Async       bool              `yaml:"async,omitempty"`
	ThreadCount int               `yaml:"threadCount,omitempty"`
	Props       map[string]string `yaml:"props,omitempty"`
}
