package requestcontext

import (
	"context"
	"log/slog"
	"net/netip"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/drop-offerer/pkg/logger"
	"github.com/gaze-network/drop-offerer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type clientIPKey struct{}

type WithClientIPConfig struct {
	// [Optional] TrustedProxiesIP is a list of all proxies IP ranges between the server and the client.
	//
	// If it's provided, it will walk backwards from the last IP in `X-Forwarded-For` header
	// and use first IP that's not a trusted proxy.
	//
	// This is lowest priority.
	TrustedProxiesIP []string `env:"TRUSTED_PROXIES_IP" mapstructure:"trusted_proxies_ip"`

	// [Optional] TrustedHeader is a header name for getting client IP. (e.g. X-Real-IP, CF-Connecting-IP, etc.)
	//
	// This is highest priority, it will ignore rest of the options if it's provided.
	TrustedHeader string `env:"TRUSTED_HEADER" mapstructure:"trusted_proxies_header"`

	// EnableRejectMalformedRequest return 403 Forbidden if the request is from proxies, but can't extract client IP
	EnableRejectMalformedRequest bool `env:"ENABLE_REJECT_MALFORMED_REQUEST" envDefault:"false" mapstructure:"enable_reject_malformed_request"`
}

// WithClientIP setup client IP context with XFF Spoofing prevention support.
//
// If request is from proxies, it will use first IP from `X-Forwarded-For` header by default.
func WithClientIP(config WithClientIPConfig) Option {
	trustedProxies, err := parsePrefixes(config.TrustedProxiesIP)
	if err != nil {
		logger.Panic("Failed to parse trusted proxies", slogx.Error(err))
	}

	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		if config.TrustedHeader != "" {
			if headerIP, err := netip.ParseAddr(c.Get(config.TrustedHeader)); err == nil {
				return context.WithValue(ctx, clientIPKey{}, headerIP.String()), nil
			}
		}

		rawIPs := c.IPs()
		if len(rawIPs) == 0 {
			// direct request
			return context.WithValue(ctx, clientIPKey{}, c.IP()), nil
		}

		if len(trustedProxies) > 0 {
			for i := len(rawIPs) - 1; i >= 0; i-- {
				ip, err := netip.ParseAddr(rawIPs[i])
				if err != nil {
					continue
				}
				if !isTrusted(trustedProxies, ip) {
					return context.WithValue(ctx, clientIPKey{}, ip.String()), nil
				}
			}
			return context.WithValue(ctx, clientIPKey{}, rawIPs[0]), nil
		}

		if config.EnableRejectMalformedRequest {
			logger.WarnContext(ctx, "IP Spoofing detected, returning 403 Forbidden",
				slog.String("event", "requestcontext/ip_spoofing_detected"),
				slog.String("module", "requestcontext/with_clientip"),
				slog.String("ip", c.IP()),
				slog.Any("ips", rawIPs),
			)
			return nil, fiber.NewError(fiber.StatusForbidden, "not allowed to access")
		}

		return context.WithValue(ctx, clientIPKey{}, rawIPs[0]), nil
	}
}

// GetClientIP get clientIP from context. If not found, return empty string
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

func isTrusted(prefixes []netip.Prefix, ip netip.Addr) bool {
	ip = ip.Unmap()
	return lo.ContainsBy(prefixes, func(p netip.Prefix) bool { return p.Contains(ip) })
}

func parsePrefixes(ranges []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(ranges))
	for _, r := range ranges {
		prefix, err := netip.ParsePrefix(r)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse CIDR for %q", r)
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}
