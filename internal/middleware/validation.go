package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// MaxChannelIDLen bounds channel IDs to their storage shape.
const MaxChannelIDLen = 32

// channelIDRe matches YouTube channel IDs: alphanumeric, dash, underscore.
var channelIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateChannelID checks that a channel ID is well-formed. Returns the
// cleaned ID and an empty string, or an error message.
func ValidateChannelID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "channelId is required"
	}
	if len(id) > MaxChannelIDLen {
		return "", "channelId must be at most 32 characters"
	}
	if !channelIDRe.MatchString(id) {
		return "", "channelId contains invalid characters"
	}
	return id, ""
}
