package logging

import (
	"unicode/utf8"

	"go.uber.org/zap"
)

const previewLimit = 256

// RequestID tags a log line with the inbound request id
func RequestID(id string) zap.Field {
	return zap.String("request_id", id)
}

// Model tags a log line with the upstream model name
func Model(model string) zap.Field {
	return zap.String("model", model)
}

// Preview logs at most the first 256 bytes of an upstream body, cut on a
// rune boundary.
func Preview(key, body string) zap.Field {
	if len(body) <= previewLimit {
		return zap.String(key, body)
	}
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return zap.String(key, body[:cut]+"...")
}

// Secret records only whether a credential was present, never its value.
func Secret(key, value string) zap.Field {
	return zap.Bool(key+"_set", value != "")
}
