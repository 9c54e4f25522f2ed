// Header redaction for access logs.
//
// Requests to this service carry bearer credentials and, occasionally,
// user-identifying headers. RedactingLogger wraps the standard access log and
// masks the configured headers before anything reaches the log sink, so a
// leaked log never contains a usable token.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures which headers are masked in access logs.
// Authorization is always masked; MaskHeaders adds more (case-insensitive).
type RedactOptions struct {
	MaskHeaders []string
}

// maskValue hides all but a short prefix so operators can still correlate
// credentials ("Bearer sk-a…" style) without logging the secret.
func maskValue(v string) string {
	if v == "" {
		return ""
	}
	const keep = 8
	if len(v) <= keep {
		return "[redacted]"
	}
	return v[:keep] + "…[redacted]"
}

// RedactingLogger behaves like RequestLogger but additionally records the
// masked values of sensitive headers, which is useful when debugging auth
// issues without exposing credentials.
func RedactingLogger(opt RedactOptions) gin.HandlerFunc {
	masked := make(map[string]struct{}, len(opt.MaskHeaders)+1)
	masked["authorization"] = struct{}{}
	for _, h := range opt.MaskHeaders {
		masked[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}

	inner := RequestLogger()
	return func(c *gin.Context) {
		inner(c)

		// Emit masked header values at debug level only; the access log
		// itself never includes headers.
		if log.Logger.GetLevel() <= zerolog.DebugLevel {
			ev := LoggerFrom(c).Debug()
			for name := range masked {
				if v := c.GetHeader(name); v != "" {
					ev = ev.Str("hdr_"+strings.ReplaceAll(name, "-", "_"), maskValue(v))
				}
			}
			ev.Msg("request headers")
		}
	}
}
