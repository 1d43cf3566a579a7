package filepond

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the FilePond endpoints under an authenticated group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, processURL, revertURL string) {
	processURL = "/" + strings.Trim(processURL, "/")
	revertURL = "/" + strings.Trim(revertURL, "/")

	r.POST(processURL, h.Process)
	r.DELETE(revertURL, h.Revert)
	r.GET(strings.TrimSuffix(processURL, "/")+"/restore/:serverId", h.Restore)
}
