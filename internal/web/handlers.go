package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/userdesk/userdesk/internal/backend"
	"github.com/userdesk/userdesk/internal/users"
)

// observeStoreOp counts a store call by its outcome
func (as *AppState) observeStoreOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = string(users.Classify(err))
	}
	as.Metrics.ObserveStoreOp(op, result)
}

func notConfiguredMessage(s *backend.Degraded, action string) string {
	return fmt.Sprintf("%s is not configured; cannot %s.", backendName(s.Backend), action)
}

// listUsers renders every user. The page always renders, errors become a banner.
func listUsers(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := gin.H{
			"title":              "Users",
			"flashes":            consumeFlashes(as, c),
			"users":              []*users.User{},
			"firebase_available": false,
		}

		switch s := as.Backend.(type) {
		case *backend.Degraded:
			data["backend"] = backendName(s.Backend)
			data["message"] = fmt.Sprintf("%s not configured. Running in demo mode.", backendName(s.Backend))
			data["reason"] = string(s.Reason)
		case *backend.Ready:
			data["backend"] = backendName(s.Backend)
			data["firebase_available"] = true

			list, err := s.Service.ListUsers(c.Request.Context())
			as.observeStoreOp(users.OpList, err)
			if err != nil {
				as.Logger.Error("Failed to list users",
					zap.String("kind", string(users.Classify(err))),
					zap.Error(err))
				data["error"] = users.UserMessage(err)
			} else {
				data["users"] = list
			}
		}

		c.HTML(http.StatusOK, "index.html", data)
	}
}

func addUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Redirect(http.StatusFound, "/")

		var req users.CreateUserRequest
		if err := c.ShouldBind(&req); err != nil {
			as.Logger.Warn("Failed to bind add user form", zap.Error(err))
		}

		switch s := as.Backend.(type) {
		case *backend.Degraded:
			addFlash(as, c, FlashError, notConfiguredMessage(s, "add user"))
		case *backend.Ready:
			user, err := s.Service.CreateUser(c.Request.Context(), &req)
			if users.IsValidationError(err) {
				addFlash(as, c, FlashWarning, users.MessageMissingField)
				return
			}

			as.observeStoreOp(users.OpCreate, err)
			if err != nil {
				as.Logger.Error("Failed to create user",
					zap.String("kind", string(users.Classify(err))),
					zap.Error(err))
				addFlash(as, c, FlashError, users.UserMessage(err))
				return
			}

			as.Logger.Info("User created", zap.String("id", user.ID))
			addFlash(as, c, FlashSuccess, fmt.Sprintf("User %s added successfully!", user.Name))
		}
	}
}

func deleteUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Redirect(http.StatusFound, "/")

		userID := c.Param("id")

		switch s := as.Backend.(type) {
		case *backend.Degraded:
			addFlash(as, c, FlashError, notConfiguredMessage(s, "delete user"))
		case *backend.Ready:
			err := s.Service.DeleteUser(c.Request.Context(), userID)
			if users.IsValidationError(err) {
				addFlash(as, c, FlashWarning, "No user selected.")
				return
			}

			as.observeStoreOp(users.OpDelete, err)
			if err != nil {
				as.Logger.Error("Failed to delete user",
					zap.String("id", userID),
					zap.String("kind", string(users.Classify(err))),
					zap.Error(err))
				addFlash(as, c, FlashError, users.UserMessage(err))
				return
			}

			as.Logger.Info("User deleted", zap.String("id", userID))
			addFlash(as, c, FlashSuccess, "User deleted successfully!")
		}
	}
}

// staticPage renders a template that has no data dependency
func staticPage(as *AppState, name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, gin.H{
			"title":   title,
			"flashes": consumeFlashes(as, c),
		})
	}
}

func health(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"mode":      as.Backend.Mode(),
			"timestamp": time.Now().Format(time.RFC3339),
		}

		switch s := as.Backend.(type) {
		case *backend.Degraded:
			body["backend"] = s.Backend
			body["reason"] = string(s.Reason)
		case *backend.Ready:
			body["backend"] = s.Backend
		}

		if err := as.Backend.HealthCheck(c.Request.Context()); err != nil {
			body["status"] = "unhealthy"
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}

		body["status"] = "healthy"
		c.JSON(http.StatusOK, body)
	}
}
