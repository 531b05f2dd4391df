package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"luxe-storefront/internal/domain"
	"luxe-storefront/internal/service/identity"
	"luxe-storefront/internal/session"
)

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	IDToken string `json:"idToken"`
}

type authResponse struct {
	User         domain.Principal `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	ExpiresIn    int              `json:"expiresIn"`
	State        string           `json:"state"`
	Redirect     string           `json:"redirect"`
}

func (h *handlers) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	sess := currentSession(c)
	res, err := h.deps.IdentitySvc.SignUp(c.Request.Context(), sess.ID, req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, h.authenticated(c, sess, res))
}

func (h *handlers) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	sess := currentSession(c)
	res, err := h.deps.IdentitySvc.SignIn(c.Request.Context(), sess.ID, req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.authenticated(c, sess, res))
}

func (h *handlers) signInGoogle(c *gin.Context) {
	var req googleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	sess := currentSession(c)
	res, err := h.deps.IdentitySvc.SignInFederated(c.Request.Context(), sess.ID, req.IDToken)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.authenticated(c, sess, res))
}

func (h *handlers) signOut(c *gin.Context) {
	sess := currentSession(c)
	if err := h.deps.IdentitySvc.SignOut(c.Request.Context(), sess.ID, bearerToken(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": sess.State().String(), "redirect": h.deps.Sessions.Routes().Default})
}

func (h *handlers) sessionView(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).View())
}

// authenticated builds the sign-in response. The redirect is the client's
// next parameter when it is a local path, otherwise the destination the
// guard captured before sending the visitor to login.
func (h *handlers) authenticated(c *gin.Context, sess *session.Session, res *identity.Result) authResponse {
	dest := sess.ResumeDestination()
	if next := c.Query("next"); isLocalPath(next) {
		dest = next
	}
	return authResponse{
		User:         res.Principal,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
		State:        sess.State().String(),
		Redirect:     dest,
	}
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}
