package handler

import (
	"embed"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/dto"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/service"
	ctxutil "github.com/looking-sharp/User-Authentication-Microservice/pkg/context"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/render"
)

//go:embed templates/*.html
var templateFS embed.FS

type AdminHandler struct {
	authService *service.AuthService
	pages       *render.Pages
	now         func() time.Time
}

type adminPage struct {
	Title   string
	Code    string
	Version string
	Now     time.Time
}

type usersPage struct {
	adminPage
	Users   []dto.AdminUserRow
	Total   int64
	Page    int
	Limit   int
	Search  string
	HasPrev bool
	HasNext bool
}

func NewAdminHandler(authService *service.AuthService) (*AdminHandler, error) {
	pages, err := render.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &AdminHandler{
		authService: authService,
		pages:       pages,
		now:         time.Now,
	}, nil
}

func (h *AdminHandler) page(c *gin.Context, title string) adminPage {
	code := c.GetHeader(constants.HeaderXAdminCode)
	if code == "" {
		code = c.Query("code")
	}

	return adminPage{
		Title:   title,
		Code:    code,
		Version: constants.AppVersion,
		Now:     h.now().UTC(),
	}
}

// Users renders the paginated user table
func (h *AdminHandler) Users(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "AdminUsers")
	params := constants.ParsePaginationParams(c)

	users, total, err := h.authService.ListUsers(ctx, params.Limit, params.Offset, params.Search)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to list users").Err(err).Log()
		c.String(http.StatusInternalServerError, constants.MsgInternalError)
		return
	}

	h.render(c, "users", usersPage{
		adminPage: h.page(c, "Users"),
		Users:     users,
		Total:     total,
		Page:      params.Page,
		Limit:     params.Limit,
		Search:    params.Search,
		HasPrev:   params.Page > 1,
		HasNext:   int64(params.Offset+len(users)) < total,
	})
}

// Tester renders forms that drive the JSON API from a browser
func (h *AdminHandler) Tester(c *gin.Context) {
	h.render(c, "tester", h.page(c, "API tester"))
}

func (h *AdminHandler) render(c *gin.Context, name string, data interface{}) {
	body, err := h.pages.Render(name, data)
	if err != nil {
		logger.ErrorWithContext(c.Request.Context(), "Failed to render page").
			String("template", name).
			Err(err).
			Log()
		c.String(http.StatusInternalServerError, constants.MsgInternalError)
		return
	}

	c.Data(http.StatusOK, constants.ContentTypeHTML, body)
}
