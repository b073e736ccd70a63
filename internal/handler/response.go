package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"go-stock-tracker/internal/middleware"
	"go-stock-tracker/internal/query"
	"go-stock-tracker/internal/service"
	"go-stock-tracker/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type errorBody struct {
	Kind   apperror.Kind     `json:"kind"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondError writes the error envelope. Internal causes are logged and
// never sent to the client.
func respondError(c *fiber.Ctx, err error) error {
	appErr := apperror.As(err)
	if appErr.Kind == apperror.KindInternal {
		log.Printf("Error: %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(appErr.Status()).JSON(fiber.Map{
		"success": false,
		"error":   errorBody{Kind: appErr.Kind, Fields: appErr.Fields},
		"message": appErr.Message,
	})
}

// ErrorHandler renders errors returned by middleware, handlers and fiber itself.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := apperror.KindInternal
		switch {
		case fe.Code == fiber.StatusNotFound:
			kind = apperror.KindNotFound
		case fe.Code == fiber.StatusUnauthorized:
			kind = apperror.KindAuth
		case fe.Code == fiber.StatusForbidden:
			kind = apperror.KindForbidden
		case fe.Code >= 400 && fe.Code < 500:
			kind = apperror.KindValidation
		}
		return c.Status(fe.Code).JSON(fiber.Map{
			"success": false,
			"error":   errorBody{Kind: kind},
			"message": fe.Message,
		})
	}
	return respondError(c, err)
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func okMessage(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// decodeStrict parses a JSON body, rejecting unknown fields and trailing data.
func decodeStrict(c *fiber.Ctx, dest any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return apperror.Validation("Request body is required", nil)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return apperror.Validation(fmt.Sprintf("Invalid JSON: %v", err), nil)
	}
	if dec.More() {
		return apperror.Validation("Invalid JSON: unexpected data after the body", nil)
	}
	return nil
}

// paramUUID parses a path parameter; malformed ids are a 400.
func paramUUID(c *fiber.Ctx, name, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.InvalidID(what)
	}
	return id, nil
}

func queryParams(c *fiber.Ctx) query.Params {
	return query.Params(c.Queries())
}

// actor reads the caller set by RequireAuth.
func actor(c *fiber.Ctx) service.Actor {
	id, _ := c.Locals(middleware.LocalUserID).(string)
	name, _ := c.Locals(middleware.LocalUsername).(string)
	return service.Actor{ID: id, Username: name}
}
