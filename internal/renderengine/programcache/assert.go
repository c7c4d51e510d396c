//go:build !programcache_debug

package programcache

func assertf(bool, string, ...any) {}
