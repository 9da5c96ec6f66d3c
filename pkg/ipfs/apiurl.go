package ipfs

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	multiaddr "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
)

// resolveAPIURL normalises the configured endpoint into the base URL every
// request path is appended to. Accepts a plain http(s) URL or a TCP
// multiaddr ("/ip4/127.0.0.1/tcp/5001"), since daemon configs usually state
// the API address in multiaddr form. The result always carries the RPC path
// prefix and a trailing slash.
func resolveAPIURL(raw string) (string, error) {
	if strings.HasPrefix(raw, "/") {
		addr, err := multiaddr.NewMultiaddr(raw)
		if err != nil {
			return "", fmt.Errorf("invalid API multiaddr %q: %w", raw, err)
		}
		netAddr, err := manet.ToNetAddr(addr)
		if err != nil {
			return "", fmt.Errorf("unsupported API multiaddr %q: %w", raw, err)
		}
		tcpAddr, ok := netAddr.(*net.TCPAddr)
		if !ok {
			return "", fmt.Errorf("API multiaddr %q is not a TCP endpoint", raw)
		}
		return "http://" + tcpAddr.String() + "/api/v0/", nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("API URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("API URL %q has no host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/api/v0/"
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String(), nil
}
