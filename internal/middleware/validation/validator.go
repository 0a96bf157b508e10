package validation

import (
	"path"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LocalsKey is where the cleaned document path is stored for handlers.
const LocalsKey = "document_path"

var drivePattern = regexp.MustCompile(`^[a-zA-Z]:`)

type Config struct {
	// Param is the query parameter holding the corpus-relative path.
	Param         string
	MaxPathLength int
	Logger        *zap.Logger
}

// DocumentPath rejects document paths that could escape the corpus root:
// absolute paths, drive letters, ".." segments and NUL bytes. A path with
// the wrong extension is let through, since the graph service answers it
// with an empty graph.
func DocumentPath(cfg Config) fiber.Handler {
	if cfg.Param == "" {
		cfg.Param = "path"
	}
	if cfg.MaxPathLength == 0 {
		cfg.MaxPathLength = 1024
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		raw := c.Query(cfg.Param)
		if raw == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": cfg.Param + " is required",
			})
		}

		if len(raw) > cfg.MaxPathLength {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Path exceeds maximum length",
			})
		}

		cleaned, ok := CleanDocumentPath(raw)
		if !ok {
			cfg.Logger.Warn("Rejected document path",
				zap.String("ip", c.IP()),
				zap.String("path", raw),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid document path",
			})
		}

		c.Locals(LocalsKey, cleaned)
		return c.Next()
	}
}

// CleanDocumentPath normalizes a corpus-relative, slash-separated path and
// reports whether it stays inside the corpus.
func CleanDocumentPath(raw string) (string, bool) {
	if strings.ContainsRune(raw, '\x00') {
		return "", false
	}

	p := strings.ReplaceAll(raw, `\`, "/")
	if strings.HasPrefix(p, "/") || drivePattern.MatchString(p) {
		return "", false
	}

	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return "", false
		}
	}

	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", false
	}
	return cleaned, true
}
