package rules

import "time"

// Context carries per-call derived facts available to rule predicates.
// It is recomputed for every ingestion and never persisted.
type Context struct {
	Now           time.Time
	BusinessHours bool
	SuspiciousIPs map[string]struct{}
}

// DeriveContext builds the evaluation context for a single call.
// Business hours are 08:00-17:59 local time.
func DeriveContext(now time.Time, suspiciousIPs map[string]struct{}) *Context {
	hour := now.Hour()
	return &Context{
		Now:           now,
		BusinessHours: hour >= 8 && hour <= 17,
		SuspiciousIPs: suspiciousIPs,
	}
}

// IsSuspiciousIP reports whether ip is in the known-bad set.
func (c *Context) IsSuspiciousIP(ip string) bool {
	if c == nil || ip == "" {
		return false
	}
	_, ok := c.SuspiciousIPs[ip]
	return ok
}

// BuildIPSet converts a list of addresses into a membership set.
func BuildIPSet(ips []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		if ip != "" {
			set[ip] = struct{}{}
		}
	}
	return set
}
