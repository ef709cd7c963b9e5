package router

import (
	"net/http"
	"path/filepath"

	"newsboard/internal/api"
	"newsboard/internal/handlers"
	"newsboard/internal/middleware"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// New assembles the whole UI app: sessions, templates, static assets,
// the user-loading middleware and the routes. Everything that varies is
// injected, so tests run the real thing against a fake news service.
func New(client *api.Client, templatesDir, staticDir string, store sessions.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(sessions.Sessions("newsboard_session", store))
	r.HTMLRender = LoadTemplates(templatesDir)
	r.Static("/static", staticDir)
	r.Use(middleware.LoadUser())
	RegisterRoutes(r, client)
	return r
}

// LoadTemplates assembles each view from layouts + includes + the view
// file, using multitemplate to keep handler-facing names stable.
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	// Manual registration to ensure keys match handler expectation
	r.AddFromFiles("auth/login.html", assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFiles("news/list.html", assemble(templatesDir+"/views/news/list.html")...)
	r.AddFromFiles("news/detail.html", assemble(templatesDir+"/views/news/detail.html")...)
	r.AddFromFiles("news/create.html", assemble(templatesDir+"/views/news/create.html")...)
	r.AddFromFiles("news/edit.html", assemble(templatesDir+"/views/news/edit.html")...)
	r.AddFromFiles("error.html", assemble(templatesDir+"/views/error.html")...)

	return r
}

// RegisterRoutes wires the five views and their form endpoints. The news
// API client is injected here so tests can point the whole app at a fake
// service.
func RegisterRoutes(r *gin.Engine, client *api.Client) {
	authHandler := handlers.NewAuthHandler(client)
	newsHandler := handlers.NewNewsHandler(client)

	// Public Routes
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/news") })
	r.GET("/news", newsHandler.List)          // list view
	r.GET("/detail/:id", newsHandler.Detail)  // detail view
	r.GET("/login", authHandler.ShowLogin)    // login view
	r.POST("/login", authHandler.Login)       // pick an identity
	r.GET("/logout", authHandler.Logout)      // clear session

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create", newsHandler.ShowCreate)               // create view
		authorized.POST("/create", newsHandler.Create)                  // submit new item
		authorized.POST("/detail/:id/comment", newsHandler.CreateComment) // add comment
		authorized.GET("/edit/:id", newsHandler.ShowEdit)               // edit view
		authorized.POST("/edit/:id", newsHandler.Update)                // submit edit
		authorized.DELETE("/news/:id", newsHandler.Delete)              // delete from list
	}

	// Anything unrecognized lands on the list view.
	r.NoRoute(func(c *gin.Context) { c.Redirect(http.StatusFound, "/news") })
}
