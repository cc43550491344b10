package web

import (
	"strings"

	"github.com/veeox/veeox/api"
	"github.com/veeox/veeox/str"
)

// Identifying names of the web types
const (
	RequestName    = "veeox::Request"
	ResponseName   = "veeox::Response"
	RouteName      = "veeox::Route"
	MiddlewareName = "veeox::Middleware"
	ServerName     = "veeox::Server"
)

// Api is re-exported from the api package
type Api = api.Api

// Str is re-exported from the str package
type Str = str.Str

// Namer is implemented by every type that reports an identifying name
type Namer interface {
	Name() string
}

// Names returns the identifying names of all exported types, facade types
// first.
func Names() []string {
	return []string{
		api.Name,
		str.Name,
		RequestName,
		ResponseName,
		RouteName,
		MiddlewareName,
		ServerName,
	}
}

// NameOf returns the identifying name of the type called typeName
// ("request", "Server", ...), ignoring case.
func NameOf(typeName string) (string, bool) {
	switch strings.ToLower(typeName) {
	case "api":
		return api.Name, true
	case "str":
		return str.Name, true
	case "request":
		return RequestName, true
	case "response":
		return ResponseName, true
	case "route":
		return RouteName, true
	case "middleware":
		return MiddlewareName, true
	case "server":
		return ServerName, true
	default:
		return "", false
	}
}
