package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts its routes on a gin group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts every registered group under /api/<version> and under each
// alias, behind a shared middleware chain.
type Router struct {
	engine  *gin.Engine
	version string
	aliases []string
	chain   []gin.HandlerFunc
	groups  []RouteRegistrar
}

type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the primary prefix. Default v1.
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.version = version }
}

// WithAliases mounts the same routes under extra base paths, such as the
// unversioned /api older clients call.
func WithAliases(basePaths ...string) RouterOption {
	return func(r *Router) { r.aliases = append(r.aliases, basePaths...) }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use appends to the chain in front of every API group. Routes added to the
// engine directly, like /health, are outside it.
func (r *Router) Use(mw ...gin.HandlerFunc) *Router {
	r.chain = append(r.chain, mw...)
	return r
}

func (r *Router) Register(g RouteRegistrar) *Router {
	r.groups = append(r.groups, g)
	return r
}

// BasePaths lists the versioned prefix first, then the aliases.
func (r *Router) BasePaths() []string {
	paths := make([]string, 0, 1+len(r.aliases))
	paths = append(paths, "/api/"+r.version)
	return append(paths, r.aliases...)
}

// Setup mounts the registered groups. Call it once, after all Register calls.
func (r *Router) Setup() {
	for _, base := range r.BasePaths() {
		api := r.engine.Group(base, r.chain...)
		for _, g := range r.groups {
			g.RegisterRoutes(api)
		}
	}
}

// DomainGroup collects the routes of one resource under a shared prefix.
type DomainGroup struct {
	name     string
	prefix   string
	chain    []gin.HandlerFunc
	routes   []route
	children []*DomainGroup
}

type route struct {
	method string
	path   string
	chain  []gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (dg *DomainGroup) Name() string   { return dg.name }
func (dg *DomainGroup) Prefix() string { return dg.prefix }

// Use adds middleware that runs only for this group and its children.
func (dg *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	dg.chain = append(dg.chain, mw...)
	return dg
}

func (dg *DomainGroup) add(method, path string, chain []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: path, chain: chain})
	return dg
}

func (dg *DomainGroup) GET(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodGet, path, h)
}

func (dg *DomainGroup) POST(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPost, path, h)
}

func (dg *DomainGroup) PUT(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPut, path, h)
}

func (dg *DomainGroup) DELETE(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodDelete, path, h)
}

// CRUDHandlers are the five handlers of a resource addressed by /:id.
type CRUDHandlers struct {
	List, Create, Get, Update, Delete gin.HandlerFunc
}

// CRUD registers the collection and /:id routes of h.
func (dg *DomainGroup) CRUD(h CRUDHandlers) *DomainGroup {
	return dg.
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}

// Group nests a child group under this group's prefix.
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	dg.children = append(dg.children, child)
	return child
}

func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.chain...)
	for _, rt := range dg.routes {
		group.Handle(rt.method, rt.path, rt.chain...)
	}
	for _, child := range dg.children {
		child.RegisterRoutes(group)
	}
}
