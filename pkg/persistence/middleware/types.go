// Package middleware wraps an ExportCache with extra behavior, such as
// encrypting cached graph exports at rest.
package middleware

import "github.com/aretw0/espalier/pkg/ports"

// Middleware allows wrapping an ExportCache to add behavior.
type Middleware func(ports.ExportCache) ports.ExportCache
