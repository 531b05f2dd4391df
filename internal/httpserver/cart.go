package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"luxe-storefront/internal/domain"
	cartsvc "luxe-storefront/internal/service/cart"
	"luxe-storefront/internal/session"
)

type cartResponse struct {
	Lines []domain.CartLine `json:"lines"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
}

func cartView(sess *session.Session) cartResponse {
	store := sess.Cart()
	return cartResponse{Lines: store.Lines(), Total: store.Total(), Count: store.Count()}
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartView(currentSession(c)))
}

func (h *handlers) addLine(c *gin.Context) {
	var in cartsvc.LineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	sess := currentSession(c)
	line, err := h.deps.CartSvc.Add(c.Request.Context(), sess, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	resp := cartView(sess)
	c.JSON(http.StatusCreated, gin.H{"line": line, "cart": resp})
}

func (h *handlers) setQuantity(c *gin.Context) {
	var in cartsvc.LineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	sess := currentSession(c)
	if err := h.deps.CartSvc.SetQuantity(c.Request.Context(), sess, in); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cartView(sess))
}

func (h *handlers) removeLine(c *gin.Context) {
	sess := currentSession(c)
	if err := h.deps.CartSvc.Remove(c.Request.Context(), sess, c.Param("productId"), c.Param("size")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cartView(sess))
}

func (h *handlers) clearCart(c *gin.Context) {
	sess := currentSession(c)
	if err := h.deps.CartSvc.Clear(c.Request.Context(), sess); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cartView(sess))
}
