package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pgstay/api/pkg/model"
)

func (r *Router) getMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

type setRoleReq struct {
	Role string `json:"role"`
}

func (r *Router) setRole(c *gin.Context) {
	var req setRoleReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	role := model.Role(req.Role)
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be student or owner"})
		return
	}

	user, err := r.sessions.SetRole(c.Request.Context(), currentUser(c), role)
	if err != nil {
		r.fail(c, err)
		return
	}
	r.registry.Observe(user)
	c.JSON(http.StatusOK, user)
}

func (r *Router) logout(c *gin.Context) {
	user := currentUser(c)
	if r.signOut != nil {
		if err := r.signOut.SignOut(c.Request.Context(), user.UID); err != nil {
			r.fail(c, err)
			return
		}
	}
	r.registry.End(user.UID)
	c.Status(http.StatusNoContent)
}
