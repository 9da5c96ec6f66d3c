package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "api.url"
	Message string // e.g., "invalid multiaddr"
	Hint    string // e.g., "expected /ip{4,6}/.../tcp/<port>"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate performs comprehensive validation of the entire config.
// It aggregates all errors and returns them, allowing the caller to print all issues at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateAPI()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateAPI() []error {
	var errs []error
	ac := c.API

	switch {
	case ac.URL == "":
		errs = append(errs, ValidationError{
			Path:    "api.url",
			Message: "must not be empty",
			Hint:    "e.g., http://127.0.0.1:5001 or /ip4/127.0.0.1/tcp/5001",
		})

	case strings.HasPrefix(ac.URL, "/"):
		ma, err := multiaddr.NewMultiaddr(ac.URL)
		if err != nil {
			errs = append(errs, ValidationError{
				Path:    "api.url",
				Message: fmt.Sprintf("invalid multiaddr: %v", err),
				Hint:    "expected /ip{4,6}/.../tcp/<port>",
			})
			break
		}

		netAddr, err := manet.ToNetAddr(ma)
		if err != nil {
			errs = append(errs, ValidationError{
				Path:    "api.url",
				Message: fmt.Sprintf("cannot convert multiaddr to network address: %v", err),
				Hint:    "ensure multiaddr contains /tcp/<port>",
			})
			break
		}

		if _, ok := netAddr.(*net.TCPAddr); !ok {
			errs = append(errs, ValidationError{
				Path:    "api.url",
				Message: fmt.Sprintf("unsupported transport %q", netAddr.Network()),
				Hint:    "the RPC endpoint must be reachable over TCP",
			})
		}

	default:
		u, err := url.Parse(ac.URL)
		if err != nil {
			errs = append(errs, ValidationError{
				Path:    "api.url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
			break
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{
				Path:    "api.url",
				Message: fmt.Sprintf("unsupported scheme %q", u.Scheme),
				Hint:    "allowed schemes: http, https",
			})
		}
		if u.Host == "" {
			errs = append(errs, ValidationError{
				Path:    "api.url",
				Message: "missing host",
			})
		}
	}

	if ac.Timeout < 0 {
		errs = append(errs, ValidationError{
			Path:    "api.timeout",
			Message: fmt.Sprintf("must be >= 0; got %v", ac.Timeout.Std()),
			Hint:    "0 uses the 60s default",
		})
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error
	log := c.Logging

	// Validate level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[log.Level] {
		errs = append(errs, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("invalid value %q", log.Level),
			Hint:    "allowed values: debug, info, warn, error",
		})
	}

	// Validate format
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[log.Format] {
		errs = append(errs, ValidationError{
			Path:    "logging.format",
			Message: fmt.Sprintf("invalid value %q", log.Format),
			Hint:    "allowed values: json, console",
		})
	}

	// Validate output_file
	if log.OutputFile != "" {
		dir := filepath.Dir(log.OutputFile)
		if dir != "" && dir != "." {
			if err := validateDirWritable(dir); err != nil {
				errs = append(errs, ValidationError{
					Path:    "logging.output_file",
					Message: fmt.Sprintf("parent directory not writable: %v", err),
				})
			}
		}
	}

	return errs
}

func validateDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access directory: %v", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory")
	}

	// Try to write a test file
	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte(""), 0644); err != nil {
		return fmt.Errorf("directory not writable: %v", err)
	}
	os.Remove(testFile)

	return nil
}
