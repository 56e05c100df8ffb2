package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/validation"
	"activity-signup/internal/models"
	"activity-signup/internal/registry"

	"github.com/labstack/echo/v4"
)

const maxHistoryLimit = 500

func (s *Server) handleListActivities(c echo.Context) error {
	return c.JSON(http.StatusOK, s.app.ListActivities(c.Request().Context()))
}

func (s *Server) handleSignup(c echo.Context) error {
	activity, email, err := rosterRequest(c)
	if err != nil {
		return err
	}

	msg, err := s.app.Signup(c.Request().Context(), activity, email)
	if err != nil {
		return s.toStandardError(c, err, activity, email)
	}
	return c.JSON(http.StatusOK, models.MessageResponse{Message: msg})
}

func (s *Server) handleUnregister(c echo.Context) error {
	activity, email, err := rosterRequest(c)
	if err != nil {
		return err
	}

	msg, err := s.app.Unregister(c.Request().Context(), activity, email)
	if err != nil {
		return s.toStandardError(c, err, activity, email)
	}
	return c.JSON(http.StatusOK, models.MessageResponse{Message: msg})
}

func (s *Server) handleHistory(c echo.Context) error {
	activity, err := activityName(c)
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxHistoryLimit {
			return apperrors.NewInvalidRequestError("limit must be an integer between 1 and 500")
		}
	}

	ctx := c.Request().Context()
	if _, err := s.app.GetActivity(ctx, activity); err != nil {
		return s.toStandardError(c, err, activity, "")
	}

	entries, err := s.history.History(ctx, activity, limit)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

// activityName returns the decoded :name segment. Echo leaves parameters
// escaped when the request path needed a distinct raw form.
func activityName(c echo.Context) (string, error) {
	name := c.Param("name")
	if c.Request().URL.RawPath == "" {
		return name, nil
	}
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return "", apperrors.NewInvalidRequestError("activity name is not a valid path segment")
	}
	return decoded, nil
}

func rosterRequest(c echo.Context) (string, string, error) {
	activity, err := activityName(c)
	if err != nil {
		return "", "", err
	}
	query := c.QueryParams()
	if result := validation.ValidateRosterRequest(query); !result.Valid {
		return "", "", apperrors.NewInvalidRequestError(result.Error())
	}
	return activity, query.Get("email"), nil
}

// toStandardError maps registry rejections onto client errors.
func (s *Server) toStandardError(c echo.Context, err error, activity, email string) error {
	switch {
	case errors.Is(err, registry.ErrActivityNotFound):
		return apperrors.NewActivityNotFoundError(activity)
	case errors.Is(err, registry.ErrDuplicateSignup):
		return apperrors.NewDuplicateSignupError(activity, email)
	case errors.Is(err, registry.ErrNotRegistered):
		return apperrors.NewNotRegisteredError(activity, email)
	case errors.Is(err, registry.ErrCapacityExceeded):
		maxParticipants := 0
		if a, getErr := s.app.GetActivity(c.Request().Context(), activity); getErr == nil {
			maxParticipants = a.MaxParticipants
		}
		return apperrors.NewCapacityExceededError(activity, maxParticipants)
	default:
		return apperrors.NewInternalError(err)
	}
}
