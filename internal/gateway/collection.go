package gateway

import (
	"errors"
	"net/http"

	"github.com/fullon/master-api/internal/model"
	"github.com/gin-gonic/gin"
)

var errResolverUnbound = errors.New("identity resolver not configured")

// BaseCollection is the identity-dependency contract sub-service
// collections embed. Until composition rebinds it, the resolver rejects
// every request, so an unmounted or un-overridden collection can never
// grant access.
type BaseCollection struct {
	name     string
	resolver IdentityResolver
	routes   []Route
}

func NewBaseCollection(name string) *BaseCollection {
	return &BaseCollection{
		name: name,
		resolver: func(*gin.Context) (*model.AuthUser, error) {
			return nil, errResolverUnbound
		},
	}
}

func (c *BaseCollection) Name() string {
	return c.name
}

func (c *BaseCollection) Routes() []Route {
	return c.routes
}

func (c *BaseCollection) SetRoutes(routes []Route) {
	c.routes = routes
}

func (c *BaseCollection) SetIdentityResolver(resolver IdentityResolver) error {
	if resolver == nil {
		return errors.New("nil identity resolver")
	}
	c.resolver = resolver
	return nil
}

// CurrentUser resolves the request identity through whatever resolver
// is currently bound. Any resolver failure becomes the uniform 401
// response; handlers must stop when ok is false.
func (c *BaseCollection) CurrentUser(gc *gin.Context) (*model.AuthUser, bool) {
	user, err := c.resolver(gc)
	if err != nil {
		gc.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Detail: "Not authenticated"})
		return nil, false
	}
	return user, true
}
