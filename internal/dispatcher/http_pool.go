// Package dispatcher sends the bot's outgoing HTTP calls that do not go
// through discordgo: AI gateway requests and attachment downloads.
package dispatcher

import (
	"crypto/tls"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout     = 60 * time.Second
	DefaultMaxBodySize = 4 * 1024 * 1024
)

type PoolOptions struct {
	// Timeout bounds one request including reading the body.
	Timeout     time.Duration
	MaxBodySize int
	// Dial replaces the network dialer; tests pass an in-memory listener.
	Dial fasthttp.DialFunc
}

// HTTPPool hands out fasthttp clients round-robin.
type HTTPPool struct {
	mu      sync.Mutex
	clients []*fasthttp.Client
	index   int
	timeout time.Duration
}

func NewHTTPPool(size int, opts PoolOptions) *HTTPPool {
	if size < 1 {
		size = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ClientSessionCache: tls.NewLRUClientSessionCache(32),
	}

	clients := make([]*fasthttp.Client, size)
	for i := range clients {
		clients[i] = &fasthttp.Client{
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
			MaxResponseBodySize: opts.MaxBodySize,
			// retries are decided by callers
			MaxIdemponentCallAttempts: 1,
			TLSConfig:                 tlsConfig,
			Dial:                      opts.Dial,
		}
	}

	return &HTTPPool{clients: clients, timeout: opts.Timeout}
}

func (hp *HTTPPool) GetClient() *fasthttp.Client {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	client := hp.clients[hp.index]
	hp.index = (hp.index + 1) % len(hp.clients)
	return client
}

func (hp *HTTPPool) Timeout() time.Duration {
	return hp.timeout
}
