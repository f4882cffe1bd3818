package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/icebreaker/internal/icebreaker"
)

const (
	emptyNameMessage = "Error: Please enter a name."
	failurePrefix    = "An error occurred: "
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Name    string
	Company string
	Output  string
	Summary string
}

// IcebreakerRequest is the JSON body of POST /api/icebreaker.
type IcebreakerRequest struct {
	Name    string `json:"name" form:"name"`
	Company string `json:"company" form:"company"`
}

// IcebreakerResponse is the JSON reply of POST /api/icebreaker.
type IcebreakerResponse struct {
	Message string `json:"message,omitempty"`
	Summary string `json:"summary,omitempty"`
	Query   string `json:"query,omitempty"`
	RunID   string `json:"run_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

func registerFormRoutes(server *gin.Engine, gen Generator) {
	server.SetHTMLTemplate(indexTemplate)

	server.GET("/", func(ctx *gin.Context) {
		ctx.HTML(http.StatusOK, "index.html", pageData{})
	})

	server.POST("/", func(ctx *gin.Context) {
		var req IcebreakerRequest
		if err := ctx.ShouldBind(&req); err != nil {
			ctx.HTML(http.StatusBadRequest, "index.html", pageData{Output: failurePrefix + err.Error()})
			return
		}

		page := pageData{Name: req.Name, Company: req.Company}
		result, err := gen.GenerateDetailed(ctx, req.Name, req.Company)
		switch {
		case errors.Is(err, icebreaker.ErrEmptyName):
			page.Output = emptyNameMessage
		case err != nil:
			gmw.GetLogger(ctx).Error("generate icebreaker", zap.Error(err))
			page.Output = failurePrefix + err.Error()
		default:
			page.Output = result.Message
			page.Summary = result.Summary
		}

		ctx.HTML(http.StatusOK, "index.html", page)
	})
}

func registerAPIRoutes(server *gin.Engine, gen Generator) {
	server.POST("/api/icebreaker", func(ctx *gin.Context) {
		var req IcebreakerRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, IcebreakerResponse{Error: "invalid request body: " + err.Error()})
			return
		}

		result, err := gen.GenerateDetailed(ctx, req.Name, req.Company)
		if err != nil {
			if errors.Is(err, icebreaker.ErrEmptyName) {
				ctx.JSON(http.StatusBadRequest, IcebreakerResponse{Error: emptyNameMessage})
				return
			}

			gmw.GetLogger(ctx).Error("generate icebreaker", zap.Error(err))
			ctx.JSON(http.StatusBadGateway, IcebreakerResponse{Error: failurePrefix + err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, IcebreakerResponse{
			Message: result.Message,
			Summary: result.Summary,
			Query:   result.Query,
			RunID:   result.RunID,
		})
	})
}
