package sio

import "strings"

// normalizeNamespace strips one leading slash.
func normalizeNamespace(namespace string) string {
	return strings.TrimPrefix(namespace, "/")
}

// matchNamespace reports whether namespace addresses the engine's
// current namespace, verbatim or after normalization.
func (e *Engine) matchNamespace(namespace string) bool {
	return namespace == e.namespace || normalizeNamespace(namespace) == e.namespace
}

// concatNamespace builds the "namespace,payload" addressing of
// Socket.IO message frames. With prefix the slash is re-added. The
// comma separator only appears when data is non-empty.
func concatNamespace(namespace, data string, prefix bool) string {
	if namespace == "" {
		return data
	}
	if prefix {
		namespace = "/" + namespace
	}
	if data == "" {
		return namespace
	}
	return namespace + "," + data
}
