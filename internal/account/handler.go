package account

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/apierr/server"
)

// Handler exposes Service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the account routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/users", h.createUser)
	r.POST("/login", h.login)
	r.GET("/users", h.listUsers)
	r.GET("/me", server.Auth(func(token string) (any, error) {
		return h.svc.Authenticate(token)
	}), h.me)
}

func (h *Handler) createUser(c *gin.Context) {
	var in RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	u, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, err)
		return
	}
	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, loginResponse{Token: token})
}

func (h *Handler) listUsers(c *gin.Context) {
	var first int
	if v := c.Query("first"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			server.RespondWithError(c, fmt.Errorf("invalid first %q: %w", v, err))
			return
		}
		first = n
	}
	page, err := h.svc.List(c.Request.Context(), c.Query("after"), first)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOKWithMeta(c, page.Users, &server.Meta{
		EndCursor:   page.EndCursor,
		HasNextPage: page.HasNextPage,
	})
}

func (h *Handler) me(c *gin.Context) {
	server.RespondOK(c, c.MustGet(server.ContextClaims))
}
