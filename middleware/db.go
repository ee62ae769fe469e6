package middleware

import (
	"form-builder/config"
	"form-builder/controllers/helpers"
	"form-builder/logger"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	localDB     = "db"
	localTenant = "tenant"
)

// DBResolver hands out the connection of a tenant database.
type DBResolver interface {
	GetDBConnection(name string) (*gorm.DB, error)
}

// InjectDBMiddleware resolves the tenant from the tenant header and
// stores its database handle on the request. Requests without the header
// use the default database.
func InjectDBMiddleware(resolver DBResolver, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenant := strings.TrimSpace(c.Get(config.TenantHeader))
		if tenant == "" {
			tenant = config.DBName
		}
		if !config.TenantAllowed(tenant) {
			return helpers.BadRequest(c, "unknown tenant "+tenant)
		}

		db, err := resolver.GetDBConnection(tenant)
		if err != nil {
			log.Error("tenant connection failed", "tenant", tenant, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(helpers.Envelope{
				Success: false,
				Error:   "database unavailable",
				Message: "database unavailable",
			})
		}

		c.Locals(localTenant, tenant)
		c.Locals(localDB, db)
		return c.Next()
	}
}

// DB returns the handle stored by InjectDBMiddleware.
func DB(c *fiber.Ctx) *gorm.DB {
	db, _ := c.Locals(localDB).(*gorm.DB)
	return db
}

func Tenant(c *fiber.Ctx) string {
	tenant, _ := c.Locals(localTenant).(string)
	return tenant
}
