package network

import "context"

type timezoneContextKey struct{}

type targetIPContextKey struct{}

// WithTimezone sets the IANA timezone local inference should use for this
// resolution instead of the host's.
func WithTimezone(ctx context.Context, timezone string) context.Context {
	return context.WithValue(ctx, timezoneContextKey{}, timezone)
}

// TimezoneFromContext returns the timezone set by WithTimezone, if any.
func TimezoneFromContext(ctx context.Context) string {
	tz, _ := ctx.Value(timezoneContextKey{}).(string)
	return tz
}

// WithTargetIP asks providers that support it to resolve ip instead of the
// caller's own address.
func WithTargetIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, targetIPContextKey{}, ip)
}

// TargetIPFromContext returns the address set by WithTargetIP, if any.
func TargetIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(targetIPContextKey{}).(string)
	return ip
}
