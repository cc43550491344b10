package web

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// HandlerFunc handles a request by filling in the response
type HandlerFunc func(w *Response, r *Request)

// Route binds a method and a path pattern to a handler
type Route struct {
	Method  string
	Pattern string
	Handler HandlerFunc
}

// Name returns the fixed identifying name of the type
func (Route) Name() string {
	return RouteName
}

// Param is a single path parameter captured by a route
type Param struct {
	Key   string
	Value string
}

// Params is the ordered list of captured path parameters
type Params []Param

// Get returns the value of the named parameter
func (ps Params) Get(key string) string {
	for _, p := range ps {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Router is a segment tree keyed by path segments.
// Per segment, static children win over a parameter child, which wins over
// a catch-all; the search backtracks when a branch dead-ends.
type Router struct {
	root   *node
	routes []*Route
}

type node struct {
	static    map[string]*node
	param     *node
	catchAll  *node
	paramName string
	routes    map[string]*Route // method -> route
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{root: &node{}}
}

// Add registers a handler for method and pattern.
// It panics on malformed patterns and duplicate registrations.
func (rt *Router) Add(method, pattern string, handler HandlerFunc) {
	rt.Handle(Route{Method: method, Pattern: pattern, Handler: handler})
}

// Handle registers a route
func (rt *Router) Handle(route Route) {
	if route.Handler == nil {
		panic("web: nil handler for " + route.Pattern)
	}
	if route.Method == "" {
		panic("web: empty method for " + route.Pattern)
	}
	if route.Pattern == "" || route.Pattern[0] != '/' {
		panic("web: path must begin with '/': " + route.Pattern)
	}

	n := rt.root
	segments := splitPath(route.Pattern)
	for i, seg := range segments {
		switch {
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			validateWildcard(route.Pattern, name)
			if n.param == nil {
				n.param = &node{paramName: name}
			} else if n.param.paramName != name {
				panic(fmt.Sprintf("web: parameter :%s in %s conflicts with existing :%s", name, route.Pattern, n.param.paramName))
			}
			n = n.param

		case strings.HasPrefix(seg, "*"):
			name := seg[1:]
			validateWildcard(route.Pattern, name)
			if i != len(segments)-1 {
				panic("web: catch-all routes are only allowed at the end of the path: " + route.Pattern)
			}
			if n.catchAll == nil {
				n.catchAll = &node{paramName: name}
			} else if n.catchAll.paramName != name {
				panic(fmt.Sprintf("web: catch-all *%s in %s conflicts with existing *%s", name, route.Pattern, n.catchAll.paramName))
			}
			n = n.catchAll

		default:
			if n.static == nil {
				n.static = make(map[string]*node)
			}
			child, ok := n.static[seg]
			if !ok {
				child = &node{}
				n.static[seg] = child
			}
			n = child
		}
	}

	if n.routes == nil {
		n.routes = make(map[string]*Route)
	}
	if _, exists := n.routes[route.Method]; exists {
		panic(fmt.Sprintf("web: duplicate route %s %s", route.Method, route.Pattern))
	}

	r := route
	n.routes[route.Method] = &r
	rt.routes = append(rt.routes, &r)
}

func validateWildcard(pattern, name string) {
	if name == "" {
		panic("web: wildcards must be named: " + pattern)
	}
	if strings.ContainsAny(name, ":*") {
		panic("web: only one wildcard per path segment is allowed: " + pattern)
	}
}

// Find looks up the route for method and path. When the path matches but
// the method does not, route is nil and allowed lists the registered
// methods. HEAD falls back to GET.
func (rt *Router) Find(method, path string) (route *Route, params Params, allowed []string) {
	if path == "" || path[0] != '/' {
		return nil, nil, nil
	}

	n := rt.root.match(splitPath(path), &params)
	if n == nil {
		return nil, nil, nil
	}

	if route = n.routes[method]; route != nil {
		return route, params, nil
	}
	if method == http.MethodHead {
		if route = n.routes[http.MethodGet]; route != nil {
			return route, params, nil
		}
	}

	allowed = make([]string, 0, len(n.routes)+1)
	for m := range n.routes {
		allowed = append(allowed, m)
	}
	if _, ok := n.routes[http.MethodGet]; ok {
		if _, ok := n.routes[http.MethodHead]; !ok {
			allowed = append(allowed, http.MethodHead)
		}
	}
	sort.Strings(allowed)
	return nil, nil, allowed
}

func (n *node) match(segments []string, params *Params) *node {
	if len(segments) == 0 {
		if len(n.routes) > 0 {
			return n
		}
		return nil
	}

	seg := segments[0]

	if child := n.static[seg]; child != nil {
		if found := child.match(segments[1:], params); found != nil {
			return found
		}
	}

	if n.param != nil && seg != "" {
		mark := len(*params)
		*params = append(*params, Param{Key: n.param.paramName, Value: seg})
		if found := n.param.match(segments[1:], params); found != nil {
			return found
		}
		*params = (*params)[:mark]
	}

	if n.catchAll != nil && len(n.catchAll.routes) > 0 {
		*params = append(*params, Param{Key: n.catchAll.paramName, Value: strings.Join(segments, "/")})
		return n.catchAll
	}

	return nil
}

// Routes returns the registered routes sorted by pattern, then method
func (rt *Router) Routes() []Route {
	out := make([]Route, 0, len(rt.routes))
	for _, r := range rt.routes {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// splitPath splits "/a/b" into ["a", "b"]; "/" yields [""]
func splitPath(path string) []string {
	return strings.Split(path[1:], "/")
}
