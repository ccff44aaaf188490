// bundlefx/bundlefx.go
package bundlefx

import (
	"github.com/henryktews/vue-storefront/pkg/middleware/auth"
	"github.com/henryktews/vue-storefront/pkg/middleware/logger"
	"github.com/henryktews/vue-storefront/pkg/middleware/metrics"
	"go.uber.org/fx"
)

// Module provided to fx
var Module = fx.Options(
	auth.Module,
	logger.Module,
	metrics.Module,
)
