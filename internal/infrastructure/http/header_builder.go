package httpinfra

import (
	"net/http"

	"aigrants.co/cli/internal/core/domain"
)

const userAgent = "grantgen/1.0"

func MergeHeaders(base map[string]string, extra map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// IdentificationHeader builds the connection-level headers as an http.Header,
// for the session request and the websocket handshake alike.
func IdentificationHeader(cfg domain.ConnectionConfig, extra map[string]string) http.Header {
	h := http.Header{}
	for k, v := range MergeHeaders(cfg.IdentificationHeaders(), extra) {
		h.Set(k, v)
	}
	return h
}
