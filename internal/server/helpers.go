package server

import (
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"courtside/internal/middleware"
	"courtside/internal/models"
	"courtside/internal/observability"
	"courtside/internal/projection"
	"courtside/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "teamId" -> "Invalid team ID", "commentId" -> "Invalid comment ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "Id"); ok {
		return strings.ToLower(strings.Join(splitCamel(prefix), " ")) + " ID"
	}
	return strings.ToLower(strings.Join(splitCamel(param), " "))
}

// splitCamel splits "postComment" into ["post", "Comment"].
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		words = append(words, s[start:])
	}
	return words
}

// fail writes err as a JSON error response with the status its code maps to.
func fail(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()), slog.Any("error", err))
	}
	return models.RespondWithError(c, status, err)
}

// queryBool reads a boolean query flag; anything but a true-ish value is false.
func queryBool(c *fiber.Ctx, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

// parsePage reads page and page_size. A malformed page number writes a 404
// and returns errResponseWritten.
func parsePage(c *fiber.Ctx) (repository.Page, error) {
	number := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			_ = models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Page", raw))
			return repository.Page{}, errResponseWritten
		}
		number = n
	}

	size := c.QueryInt("page_size", defaultPageSize)
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return repository.Page{Number: number, Size: size}, nil
}

// pageResponse is the paginated envelope returned by every list endpoint.
type pageResponse struct {
	Count    int64                `json:"count"`
	Next     *string              `json:"next"`
	Previous *string              `json:"previous"`
	Results  []*projection.Record `json:"results"`
}

// publicBaseKey holds the configured external origin for building absolute links.
const publicBaseKey = "publicBaseURL"

// pageURL rebuilds the request URL pointing at page n. Page 1 drops the parameter.
func pageURL(c *fiber.Ctx, n int) *string {
	base := c.BaseURL()
	if configured, ok := c.Locals(publicBaseKey).(string); ok && configured != "" {
		base = strings.TrimRight(configured, "/")
	}
	// OriginalURL carries scheme and host when the request line uses the absolute form.
	raw := base + c.Path()
	if qs := c.Request().URI().QueryString(); len(qs) > 0 {
		raw += "?" + string(qs)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	q := u.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	out := u.String()
	return &out
}

func newPageResponse(c *fiber.Ctx, page repository.Page, total int64, results []*projection.Record) pageResponse {
	resp := pageResponse{Count: total, Results: results}
	if int64(page.Offset()+len(results)) < total {
		resp.Next = pageURL(c, page.Number+1)
	}
	if page.Number > 1 {
		resp.Previous = pageURL(c, page.Number-1)
	}
	return resp
}

// view is a server-side projection preset. Clients may narrow the top-level
// selection with ?fields= or ?fields_exclude=; nested relations always use the preset context.
type view struct {
	fields  projection.Selection
	context projection.Context
}

func (v view) selection(c *fiber.Ctx) projection.Selection {
	include := projection.ParseList(c.Query("fields"))
	exclude := projection.ParseList(c.Query("fields_exclude"))
	if include == nil && exclude == nil {
		return v.fields
	}
	return projection.Resolve(include, exclude)
}

func projectionFailure(err error) error {
	var cfgErr *projection.ConfigurationError
	if errors.As(err, &cfgErr) {
		observability.ProjectionErrors.WithLabelValues(cfgErr.Schema).Inc()
	}
	return models.NewConfigurationError(err)
}

// renderOne projects a single entity and writes it with status.
func renderOne(c *fiber.Ctx, status int, e projection.Entity, v view) error {
	rec, err := projection.Project(e, v.selection(c), v.context)
	if err != nil {
		return fail(c, projectionFailure(err))
	}
	return c.Status(status).JSON(rec)
}

// renderList projects a collection and writes it as a bare JSON array.
func renderList[T any, P interface {
	*T
	projection.Entity
}](c *fiber.Ctx, status int, items []T, v view) error {
	recs, err := projection.ProjectAll[T, P](items, v.selection(c), v.context)
	if err != nil {
		return fail(c, projectionFailure(err))
	}
	return c.Status(status).JSON(recs)
}

// renderPage projects one page of a collection into the paginated envelope.
// Asking for a page past the end is a 404.
func renderPage[T any, P interface {
	*T
	projection.Entity
}](c *fiber.Ctx, page repository.Page, total int64, items []T, v view) error {
	if page.Number > 1 && len(items) == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Page", page.Number))
	}
	recs, err := projection.ProjectAll[T, P](items, v.selection(c), v.context)
	if err != nil {
		return fail(c, projectionFailure(err))
	}
	return c.Status(fiber.StatusOK).JSON(newPageResponse(c, page, total, recs))
}
