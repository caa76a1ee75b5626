// Package runtime holds the process-wide-but-injectable state a run shares
// across steps: the shared output map, per-host cookie jars, and the
// system-info mutex. A single Context is created per run (see cmd/lorikeet)
// and passed explicitly into action executors, rather than living behind
// package-level singletons — this is the dependency-injected replacement
// for the original's lazy_static CHashMap globals.
package runtime

import (
	"net/http"
	"sync"
)

// Context is the shared, concurrency-safe state one run's steps publish to
// and read from.
type Context struct {
	outputs sync.Map // string -> string

	cookiesMu sync.Mutex
	cookies   map[string][]*http.Cookie // hostname -> jar

	// SystemMu serialises reads of the non-reentrant system-info facility
	// (load average, memory, disk totals).
	SystemMu sync.Mutex
}

// NewContext creates a fresh, empty runtime context for one run.
func NewContext() *Context {
	return &Context{cookies: make(map[string][]*http.Cookie)}
}

// PutOutput records name's last successful output. Called only on a
// successful, non-empty step result (spec invariant: writes happen only on
// success, and only for non-empty output).
func (c *Context) PutOutput(name, output string) {
	c.outputs.Store(name, output)
}

// Output looks up a step's last successful output.
func (c *Context) Output(name string) (string, bool) {
	v, ok := c.outputs.Load(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// CookiesFor returns a copy of the cookie jar for a host.
func (c *Context) CookiesFor(host string) []*http.Cookie {
	c.cookiesMu.Lock()
	defer c.cookiesMu.Unlock()
	jar := c.cookies[host]
	out := make([]*http.Cookie, len(jar))
	copy(out, jar)
	return out
}

// MergeCookies merges newly received cookies into host's jar, replacing any
// existing cookie with the same name (last-writer-wins for same-name
// cookies, as shared jars may be updated by concurrent steps hitting the
// same host).
func (c *Context) MergeCookies(host string, incoming []*http.Cookie) {
	if len(incoming) == 0 {
		return
	}

	c.cookiesMu.Lock()
	defer c.cookiesMu.Unlock()

	jar := c.cookies[host]
	for _, nc := range incoming {
		replaced := false
		for i, existing := range jar {
			if existing.Name == nc.Name {
				jar[i] = nc
				replaced = true
				break
			}
		}
		if !replaced {
			jar = append(jar, nc)
		}
	}
	c.cookies[host] = jar
}
