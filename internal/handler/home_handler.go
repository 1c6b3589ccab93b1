package handler

import (
	"html/template"
	"net/http"

	"github.com/eidos-exchange/eidos-nft/internal/dto"
	"github.com/eidos-exchange/eidos-nft/pkg/crypto"
	"github.com/gin-gonic/gin"
)

// Endpoints 对外接口列表
var Endpoints = []dto.Endpoint{
	{Method: http.MethodGet, Path: "/health", Description: "service health and current block number"},
	{Method: http.MethodGet, Path: "/api/listings", Description: "all active listings"},
	{Method: http.MethodPost, Path: "/api/listings", Description: "submit a signed listing"},
	{Method: http.MethodGet, Path: "/api/listings/:nftContract/:tokenId/bids", Description: "bids for a listing"},
	{Method: http.MethodPost, Path: "/api/listings/:nftContract/:tokenId/bids", Description: "submit a signed bid"},
}

// HomeTemplateName 首页模板名
const HomeTemplateName = "home"

// HomeTemplate 首页模板，由 router 通过 gin.Engine.SetHTMLTemplate 注册
var HomeTemplate = template.Must(template.New(HomeTemplateName).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Name}}</title></head>
<body>
<h1>{{.Name}}</h1>
<p>Status: {{.Status}}. Signatures: {{.SignatureScheme}}.</p>
<ul>
{{range .Endpoints}}<li><code>{{.Method}} {{.Path}}</code> {{.Description}}</li>
{{end}}</ul>
</body>
</html>
`))

// HomeHandler 首页处理器
type HomeHandler struct {
	name string
}

// NewHomeHandler 创建首页处理器
func NewHomeHandler(name string) *HomeHandler {
	return &HomeHandler{name: name}
}

// Home 首页，默认 JSON，客户端偏好 HTML 时返回页面
// GET /
func (h *HomeHandler) Home(c *gin.Context) {
	resp := &dto.HomeResponse{
		Name:            h.name,
		Status:          "running",
		SignatureScheme: crypto.SignatureScheme,
		Endpoints:       Endpoints,
	}

	switch c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) {
	case gin.MIMEHTML:
		c.HTML(http.StatusOK, HomeTemplateName, resp)
	default:
		c.JSON(http.StatusOK, resp)
	}
}
