package handler // handler defines HTTP handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/moviegoer/rottenpotatoes/internal/gate"
)

// getMoviegoerID extracts the authenticated moviegoer ID stored in the
// context by the JWT middleware. JWT numeric claims decode as float64;
// other representations are tolerated for robustness.
func getMoviegoerID(c echo.Context) (uint64, error) {
	v := c.Get("moviegoer_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid moviegoer_id in context")
}

// getMoviegoerName returns the display name claim, or "" when absent.
func getMoviegoerName(c echo.Context) string {
	if s, ok := c.Get("moviegoer_name").(string); ok {
		return s
	}
	return ""
}

// denied translates an access gate denial into an HTTP response. The
// warning strings mirror the flash messages users see; the first failed
// check decides the response and later checks never run.
func denied(c echo.Context, err error) error {
	switch {
	case errors.Is(err, gate.ErrLoginRequired):
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error":   "must be logged in",
			"warning": "You must be logged in to create a review.",
		})
	case errors.Is(err, gate.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error":   "movie not found",
			"warning": "Review must be for an existing movie.",
		})
	case errors.Is(err, gate.ErrReviewNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
	case errors.Is(err, gate.ErrNotReviewOwner):
		return c.JSON(http.StatusForbidden, echo.Map{
			"error":   "forbidden",
			"warning": "You are not authorized to edit this review.",
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
