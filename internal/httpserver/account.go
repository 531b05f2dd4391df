package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"luxe-storefront/internal/domain"
)

type addressRequest struct {
	Address string `json:"address"`
}

type avatarRequest struct {
	AvatarURL string `json:"avatarUrl"`
}

// principal returns the signed-in principal or writes 401.
func (h *handlers) principal(c *gin.Context) (*domain.Principal, bool) {
	p := currentSession(c).Principal()
	if p == nil {
		c.JSON(http.StatusUnauthorized, errorBody("sign in required"))
		return nil, false
	}
	return p, true
}

func (h *handlers) me(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	sess := currentSession(c)
	profile := sess.Profile()
	if profile == nil {
		var err error
		profile, err = h.deps.ProfileSvc.Get(c.Request.Context(), p.CustomerID)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		sess.SetProfile(*profile)
	}
	c.JSON(http.StatusOK, gin.H{"user": p, "profile": profile})
}

func (h *handlers) updateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}
	profile, err := h.deps.ProfileSvc.UpdateAddress(c.Request.Context(), p.CustomerID, req.Address)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	currentSession(c).SetProfile(*profile)
	c.JSON(http.StatusOK, profile)
}

func (h *handlers) updateAvatar(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}
	profile, err := h.deps.ProfileSvc.UpdateAvatar(c.Request.Context(), p.CustomerID, req.AvatarURL)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	currentSession(c).SetProfile(*profile)
	c.JSON(http.StatusOK, profile)
}

func (h *handlers) myOrders(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	orders, err := h.deps.OrderSvc.ListByCustomer(c.Request.Context(), p.CustomerID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "results": orders})
}

func (h *handlers) checkout(c *gin.Context) {
	var ship domain.Shipping
	if err := c.ShouldBindJSON(&ship); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}
	sess := currentSession(c)
	order, err := h.deps.OrderSvc.Place(c.Request.Context(), *p, sess.Cart().Lines(), ship)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	sess.AddOrder(*order)
	if err := h.deps.CartSvc.Clear(c.Request.Context(), sess); err != nil {
		h.logger.Warn().Err(err).Str("session", sess.ID).Msg("clear cart after checkout")
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *handlers) adminOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "results": orders})
}
