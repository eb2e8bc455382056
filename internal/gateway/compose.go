// Package gateway composes route collections exported by sub-services
// under one router, rebinding each collection's identity dependency to
// the gateway's own resolver before mounting.
package gateway

import (
	"log"

	"github.com/fullon/master-api/internal/model"
	"github.com/gin-gonic/gin"
)

// IdentityResolver yields the authenticated identity for a request, or
// an error when none is present. The gateway injects its resolver into
// every sub-service collection at composition time.
type IdentityResolver func(c *gin.Context) (*model.AuthUser, error)

// Route is one path entry of a collection.
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// Collection is a mountable bundle of routes exported by a sub-service.
// Routes must be side-effect-free and stable across calls so discovery
// can run repeatedly without double-registering. SetIdentityResolver
// rebinds the identity dependency for every route in the collection at
// once; partial application is not possible by construction.
type Collection interface {
	Name() string
	Routes() []Route
	SetIdentityResolver(IdentityResolver) error
}

// SubService is one composed API: a stable mount prefix plus its
// exported collections.
type SubService interface {
	Name() string
	Prefix() string
	Collections() []Collection
}

// Composer discovers, overrides, and mounts sub-service collections.
type Composer struct {
	resolver IdentityResolver
}

func NewComposer(resolver IdentityResolver) *Composer {
	return &Composer{resolver: resolver}
}

// Mount composes every sub-service onto the router. Prefixes are
// disjoint, so mounting order does not affect route resolution.
func (c *Composer) Mount(router gin.IRouter, services ...SubService) {
	for _, svc := range services {
		c.mountService(router, svc)
	}
}

func (c *Composer) mountService(router gin.IRouter, svc SubService) {
	collections := svc.Collections()
	log.Printf("Discovered router collections: service=%s count=%d", svc.Name(), len(collections))

	if len(collections) == 0 {
		log.Printf("No router collections to mount: service=%s", svc.Name())
		return
	}

	group := router.Group(svc.Prefix())
	mounted := 0
	for _, col := range collections {
		// An override failure leaves the collection on its original
		// resolver, which rejects rather than grants. Never skip the
		// mount: the asymmetry must fail closed, not open.
		if err := col.SetIdentityResolver(c.resolver); err != nil {
			log.Printf("Identity override failed, mounting without override: service=%s collection=%s error=%v",
				svc.Name(), col.Name(), err)
		} else {
			log.Printf("Identity resolver overridden: service=%s collection=%s", svc.Name(), col.Name())
		}

		routes := col.Routes()
		for _, rt := range routes {
			group.Handle(rt.Method, rt.Path, rt.Handler)
		}
		mounted++
		log.Printf("Mounted router collection: service=%s collection=%s prefix=%s routes=%d",
			svc.Name(), col.Name(), svc.Prefix(), len(routes))
	}

	log.Printf("Sub-service mounted: service=%s prefix=%s collections=%d", svc.Name(), svc.Prefix(), mounted)
}
