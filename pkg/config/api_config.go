package config

// APIConfig contains daemon RPC endpoint configuration
type APIConfig struct {
	// URL is the daemon RPC endpoint. Accepts an http(s) URL or a TCP
	// multiaddr such as "/ip4/127.0.0.1/tcp/5001".
	// If empty, defaults to "http://127.0.0.1:5001"
	URL string `yaml:"url"`

	// Timeout for RPC operations. Streaming subscriptions are exempt.
	// If zero, defaults to 60 seconds
	Timeout Duration `yaml:"timeout"`
}
