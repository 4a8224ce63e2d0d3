package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServeLocalFile 以 /<文件名> 的形式提供本地存储目录中的输出图片
func (h *HTTPHandler) ServeLocalFile(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		NotFound(c, ErrCodeNotFound, "route not found")
		return
	}

	name := path.Base(c.Request.URL.Path)
	if name == "/" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		NotFound(c, ErrCodeNotFound, "route not found")
		return
	}
	// 只允许直接位于根路径下的文件
	if strings.Trim(c.Request.URL.Path, "/") != name {
		NotFound(c, ErrCodeNotFound, "route not found")
		return
	}

	full := filepath.Join(h.localDir, name)
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		NotFound(c, ErrCodeFileNotFound, "file not found")
		return
	}
	c.File(full)
}
