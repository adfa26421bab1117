package middleware

// identity.go provides the identity lookup shared by the cache and rate
// limit key builders. It reads the value JWTAuth stored in the context;
// anonymous requests key as "guest".

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated moviegoer ID
// for use in Redis keys, or "guest" when the request is anonymous.
func currentUserID(c echo.Context) string {
	v := c.Get("moviegoer_id")
	if v == nil {
		return "guest"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return fmt.Sprintf("%.0f", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	}
	return "guest"
}
