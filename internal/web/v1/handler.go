// Package v1 exposes the web client's HTTP surface: the OAuth redirect
// routes the browser lands on, the session operations the view layer calls,
// and the product browse/submit proxy.
package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/campusmart/webclient/internal/apiclient"
	"github.com/campusmart/webclient/internal/core/domain"
	"github.com/campusmart/webclient/internal/logger"
	logicv1 "github.com/campusmart/webclient/internal/logic/v1"
	"github.com/campusmart/webclient/internal/profile"
	"github.com/campusmart/webclient/middleware"
)

// Handler groups the HTTP handlers of the web client.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	sessions   *logicv1.Registry
	api        *apiclient.Client
	cookieName string
}

// NewHandler creates a Handler over the session registry and API client.
func NewHandler(sessions *logicv1.Registry, api *apiclient.Client, cookieName string) *Handler {
	return &Handler{sessions: sessions, api: api, cookieName: cookieName}
}

// RegisterRoutes registers the browser navigation routes on root and the
// JSON operations on the API group.
func (h *Handler) RegisterRoutes(root gin.IRoutes, api *gin.RouterGroup) {
	root.GET("/auth/google/callback", h.GoogleCallback)
	root.GET("/auth/success", h.AuthSuccess)
	root.GET("/auth/error", h.AuthError)

	api.GET("/session", h.GetSession)
	api.POST("/session/login", h.Login)
	api.POST("/session/logout", h.Logout)
	api.PATCH("/session/profile", h.UpdateProfile)
	api.GET("/profile/hostels", h.Hostels)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.POST("/products", h.CreateProduct)
}

// manager resolves the session manager for the requesting browser, minting
// the sid cookie on first contact, and ensures the manager is initialized.
// The returned context carries the sid for the unauthorized interceptor.
func (h *Handler) manager(c *gin.Context) (*logicv1.Manager, *gin.Context) {
	sid, err := c.Cookie(h.cookieName)
	if err != nil || sid == "" {
		sid = logicv1.NewSID()
		c.SetCookie(h.cookieName, sid, 0, "/", "", false, true)
	}

	ctx := logicv1.WithBrowserSession(c.Request.Context(), sid)
	c.Request = c.Request.WithContext(ctx)

	mgr := h.sessions.Manager(sid)
	mgr.Initialize(ctx)
	return mgr, c
}

// GoogleCallback is the first hop of the two-step OAuth forwarding: the
// provider redirects here with an authorization code, and the browser is
// forwarded to the backend callback carrying the code as-is. Application
// state is never touched; the code only passes through the location bar.
func (h *Handler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing authorization code",
			"home":  "/",
		})
		return
	}
	c.Redirect(http.StatusFound, h.api.CallbackURL(code))
}

// AuthSuccess consumes the finished handshake: token and identity arrive as
// query parameters, all required. Success stores the session and sends the
// browser home; a missing parameter is a dead-end error screen with no
// state mutation.
func (h *Handler) AuthSuccess(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	mgr, c := h.manager(c)

	err := mgr.CompleteAuth(c.Request.Context(), logicv1.CallbackParams{
		Token:  c.Query("token"),
		UserID: c.Query("user_id"),
		Email:  c.Query("email"),
		Name:   c.Query("name"),
	})
	if err != nil {
		span.RecordError(err)
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("OAuth success handling failed")

		switch {
		case errors.Is(err, logicv1.ErrMissingCallbackParam):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Missing authentication data",
				"home":  "/",
			})
		default:
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Failed to complete authentication",
				"home":  "/",
			})
		}
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// AuthError is the dead-end surface for provider-reported failures. The
// only way out is the manual return-home link.
func (h *Handler) AuthError(c *gin.Context) {
	msg := c.Query("error")
	if msg == "" {
		msg = "Authentication failed"
	}
	c.JSON(http.StatusOK, gin.H{
		"error": msg,
		"home":  "/",
	})
}

// GetSession returns the Auth View-State for the requesting browser. The
// bearer token is never part of the response.
func (h *Handler) GetSession(c *gin.Context) {
	mgr, c := h.manager(c)
	c.JSON(http.StatusOK, mgr.ViewState())
}

// Login starts the OAuth handshake: fetches the provider authorization URL
// and redirects the browser to it. The navigation is irreversible for this
// page instance.
func (h *Handler) Login(c *gin.Context) {
	mgr, c := h.manager(c)

	authURL, err := mgr.Login(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Login dispatch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Unable to start sign-in, please try again"})
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// Logout ends the session. It always succeeds from the browser's
// perspective, whatever the remote logout call did.
func (h *Handler) Logout(c *gin.Context) {
	mgr, c := h.manager(c)
	mgr.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// UpdateProfile applies a gender/hostel patch to the session.
func (h *Handler) UpdateProfile(c *gin.Context) {
	mgr, c := h.manager(c)

	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := mgr.UpdateUser(c.Request.Context(), patch)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn().Err(err).Msg("Profile update rejected")

		switch {
		case errors.Is(err, logicv1.ErrNotAuthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in to update your profile"})
		case errors.Is(err, logicv1.ErrInvalidProfile):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// Hostels returns the fixed hostel catalog for a gender.
func (h *Handler) Hostels(c *gin.Context) {
	gender := domain.Gender(c.Query("gender"))
	if !gender.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gender must be male or female"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hostels": profile.Hostels(gender)})
}

// productView decorates a listing with whether it sits in the viewer's
// hostel.
type productView struct {
	domain.Product
	InYourHostel bool `json:"in_your_hostel"`
}

// ListProducts proxies the home feed, annotated against the viewer's hostel.
func (h *Handler) ListProducts(c *gin.Context) {
	mgr, c := h.manager(c)

	products, err := h.api.ListProducts(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Product feed unavailable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Product feed unavailable"})
		return
	}

	hostel := ""
	if state := mgr.ViewState(); state.User != nil {
		hostel = state.User.Hostel
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{
			Product:      p,
			InYourHostel: hostel != "" && p.Location == hostel,
		})
	}
	c.JSON(http.StatusOK, views)
}

// GetProduct proxies a single listing.
func (h *Handler) GetProduct(c *gin.Context) {
	_, c = h.manager(c)

	product, err := h.api.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Product fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Product unavailable"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct submits a new listing. Requires an authenticated session
// and a complete profile; the listing location defaults to the seller's
// hostel.
func (h *Handler) CreateProduct(c *gin.Context) {
	mgr, c := h.manager(c)

	token, ok := mgr.Token()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in to add products"})
		return
	}
	state := mgr.ViewState()
	if !state.User.ProfileComplete() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Set your gender and hostel before adding products"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a positive number"})
		return
	}

	newProduct := domain.NewProduct{
		Name:        c.PostForm("name"),
		Price:       price,
		Location:    c.PostForm("location"),
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
	}
	if newProduct.Name == "" || newProduct.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and category are required"})
		return
	}
	if newProduct.Location == "" {
		newProduct.Location = state.User.Hostel
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one image is required"})
		return
	}

	images := make([]apiclient.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image upload"})
			return
		}
		defer f.Close()
		images = append(images, apiclient.ImageUpload{Filename: fh.Filename, Content: f})
	}

	created, err := h.api.CreateProduct(c.Request.Context(), token, newProduct, images)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Product submission failed")

		switch {
		case errors.Is(err, apiclient.ErrUnauthorized):
			// The interceptor has already cleared the session.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired", "home": "/"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create product"})
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}
