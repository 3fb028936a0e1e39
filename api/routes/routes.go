package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/feichai0017/text-extractor/api/handlers"
	"github.com/feichai0017/text-extractor/api/middleware"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, allowOrigins []string) {
	// 全局中间件
	r.Use(middleware.CORS(allowOrigins))
	r.SetHTMLTemplate(handlers.Templates())

	// 浏览器页面
	r.GET("/", h.Page.Index)
	r.POST("/process", h.Page.Process)
	r.GET("/download", h.Document.DownloadResult)

	// 健康检查
	r.GET("/health", handlers.Health)

	// API 版本组
	v1 := r.Group("/api/v1")

	// 文档处理路由组
	docs := v1.Group("/documents")
	{
		docs.POST("/process", h.Document.ProcessBatch)
		docs.GET("/records", h.Document.ListRecords)
		docs.GET("/download", h.Document.DownloadResult)
		docs.POST("/export", h.Document.ExportResult)
		docs.GET("/exports/*key", h.Document.GetExport)
	}
}
