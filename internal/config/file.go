package config

// YAML keys of the defaults section. The CLI uses them to report which
// options were set explicitly so the file does not override a flag.
const (
	KeyPerSourceLimit    = "per_source_limit"
	KeyMaxTotal          = "max_total"
	KeyUseNewsData       = "use_newsdata"
	KeyUseAliasDiscovery = "use_alias_discovery"
	KeyUseGoogleNews     = "use_google_news"
	KeyDomainPriority    = "domain_priority"
)

// Defaults holds optional scan defaults from the configuration file.
// Pointer fields distinguish "not set" from a zero value.
type Defaults struct {
	PerSourceLimit    *int  `yaml:"per_source_limit,omitempty"`
	MaxTotal          *int  `yaml:"max_total,omitempty"`
	UseNewsData       *bool `yaml:"use_newsdata,omitempty"`
	UseAliasDiscovery *bool `yaml:"use_alias_discovery,omitempty"`
	UseGoogleNews     *bool `yaml:"use_google_news,omitempty"`
}

// File represents the structure of the .samradar configuration file.
// The file is only ever read by a scan.
type File struct {
	// Aliases maps an entity name to extra aliases to search for.
	// Keys are matched case-insensitively. An entry replaces the built-in
	// seed for the same name.
	Aliases map[string][]string `yaml:"aliases,omitempty"`

	// DomainPriority is the ordered list of preferred news domains.
	DomainPriority []string `yaml:"domain_priority,omitempty"`

	// Defaults contains scan defaults applied when no flag overrides them.
	Defaults Defaults `yaml:"defaults,omitempty"`
}
