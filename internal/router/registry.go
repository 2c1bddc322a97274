package router

import "github.com/gin-gonic/gin"

// Module is a feature area (users, auth, stream, points) that mounts its own
// routes on the shared API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry mounts feature modules under a common base path with a shared
// middleware chain. Modules register in the order they are added.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup

	chain   []gin.HandlerFunc
	modules []Module
}

func NewRegistry(engine *gin.Engine, basePath string) *Registry {
	if basePath == "" {
		basePath = "/api"
	}
	return &Registry{Engine: engine, API: engine.Group(basePath)}
}

// Use appends middleware applied to every module's routes.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.chain = append(r.chain, mw...)
}

func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

// RegisterAll installs the middleware chain and mounts every module.
func (r *Registry) RegisterAll() {
	r.API.Use(r.chain...)
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
