package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL prepares the audit-store DSN for lib/pq. Some managed
// Postgres proxies reject binary result encoding on prepared statements;
// when the config asks for it, the driver flag is appended unless the
// DSN already carries one.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") != "" {
		return raw
	}
	query.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// dbNameFromURL extracts the database name for the audit store's span
// attributes. Both the URL form and the keyword/value DSN form are
// accepted; anything unparseable yields the empty string.
func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if parsed, err := url.Parse(trimmed); err == nil && parsed.Scheme != "" {
		if name := strings.Trim(parsed.Path, "/ "); name != "" {
			return name
		}
	}

	// Keyword/value form: "host=... dbname=crew sslmode=disable".
	for _, field := range strings.Fields(trimmed) {
		if value, ok := strings.CutPrefix(field, "dbname="); ok {
			if name := strings.Trim(value, `"' `); name != "" {
				return name
			}
		}
	}
	return ""
}
